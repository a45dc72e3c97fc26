package views

import (
	"bytes"
	"strconv"
)

var null = []byte("null")

// Total 浏览总数,Valid为false表示从未被浏览过,JSON中表示为null
type Total struct {
	Value int64
	Valid bool
}

// NewTotal create a valid Total
func NewTotal(v int64) Total {
	return Total{Value: v, Valid: true}
}

// MarshalJSON implements json.Marshaler
func (t Total) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return null, nil
	}
	return strconv.AppendInt(nil, t.Value, 10), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Total) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, null) {
		*t = Total{}
		return nil
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*t = NewTotal(v)
	return nil
}

func (t Total) String() string {
	if !t.Valid {
		return "null"
	}
	return strconv.FormatInt(t.Value, 10)
}

// Resp the body of both the increment and the read response
type Resp struct {
	Total Total `json:"total"`
}

// ErrorResp the body of an error response
type ErrorResp struct {
	Error string `json:"error"`
}
