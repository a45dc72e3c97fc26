package cache

import (
	"errors"
	"io"
	"reflect"

	"github.com/ugorji/go/codec"
)

var msgpackHandle = &codec.MsgpackHandle{}

func init() {
	msgpackHandle.MapType = reflect.TypeOf(map[string]interface{}(nil))
}

// MsgPackEncodeBytes encode data to bytes use msgpack
func MsgPackEncodeBytes(data interface{}) (bytes []byte, err error) {
	enc := codec.NewEncoderBytes(&bytes, msgpackHandle)
	err = enc.Encode(data)
	return
}

// MsgPackDecodeBytes decode bytes to dest use msgpack
func MsgPackDecodeBytes(bytes []byte, dest interface{}) (err error) {
	if len(bytes) == 0 {
		return errors.New("nil bytes to decode")
	}
	dec := codec.NewDecoderBytes(bytes, msgpackHandle)
	return dec.Decode(dest)
}

// MsgPackEncode encode data to w
func MsgPackEncode(w io.Writer, data interface{}) error {
	return codec.NewEncoder(w, msgpackHandle).Encode(data)
}

// MsgPackDecode decode from r to dest
func MsgPackDecode(r io.Reader, dest interface{}) error {
	return codec.NewDecoder(r, msgpackHandle).Decode(dest)
}
