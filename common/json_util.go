package common

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
)

// JSON 与标准库兼容的json实现
var JSON = jsoniter.ConfigCompatibleWithStandardLibrary

// UnmarshalUseNumber 使用UseNumber进行解析,避免int64被错误地转为float64
func UnmarshalUseNumber(data []byte, v interface{}) error {
	dec := JSON.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
