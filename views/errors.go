package views

import (
	"fmt"
)

// Kind 错误的分类
type Kind int

// Error kinds
const (
	KindBadRequest Kind = iota + 1
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad request"
	case KindStoreUnavailable:
		return "store unavailable"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error 浏览计数服务的错误
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

var (
	// ErrBadRequest the post id is missing or invalid,the store is not accessed
	ErrBadRequest = &Error{Kind: KindBadRequest}
	// ErrStoreUnavailable the counter store failed
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func badRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Msg: msg}
}

func storeUnavailable(err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Err: err}
}
