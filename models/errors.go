package models

import "errors"

type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindUnavailable
	KindNotFound
	KindPersistence
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindNotFound:
		return "not found"
	case KindPersistence:
		return "persistence"
	case KindNetwork:
		return "network"
	}
	return "unknown"
}

// Error carries a machine readable kind next to the user facing message
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

var (
	ErrUnavailable = &Error{Kind: KindUnavailable, Message: "source unavailable"}
	ErrNotFound    = &Error{Kind: KindNotFound, Message: "not found"}
	ErrPersistence = &Error{Kind: KindPersistence, Message: "write failed"}
	ErrNetwork     = &Error{Kind: KindNetwork, Message: "network failure"}
)

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works for wrapped errors too
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Unavailable(message string, err error) *Error {
	return NewError(KindUnavailable, message, err)
}

func NotFound(message string) *Error {
	return NewError(KindNotFound, message, nil)
}

func Persistence(message string, err error) *Error {
	return NewError(KindPersistence, message, err)
}

func Network(message string, err error) *Error {
	return NewError(KindNetwork, message, err)
}

// KindOf returns the kind of the outermost *Error in the chain
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the user facing message, without the wrapped cause
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
