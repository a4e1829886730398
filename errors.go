package castore

import (
	"errors"
	"fmt"
)

var (
	ErrBadRequest = errors.New("castore: bad request")
	ErrNotFound   = errors.New("castore: not found")
	ErrConflict   = errors.New("castore: conflict")
	ErrInternal   = errors.New("castore: internal error")
)

// Kind classifies a failed operation. The values double as the status
// codes network front ends map them to.
type Kind int

const (
	KindNone       Kind = 0
	KindBadRequest Kind = 400
	KindNotFound   Kind = 404
	KindConflict   Kind = 405
	KindInternal   Kind = 500
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBadRequest:
		return "bad request"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindInternal:
		return "internal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindBadRequest:
		return ErrBadRequest
	case KindNotFound:
		return ErrNotFound
	case KindConflict:
		return ErrConflict
	case KindInternal:
		return ErrInternal
	}
	return nil
}

// Error is the single failure type returned by Store operations.
//
// errors.Is matches it against the sentinel for its Kind as well as
// against anything in the wrapped chain, so both
// errors.Is(err, ErrNotFound) and errors.Is(err, fs.ErrPermission) work.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := e.Op
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf reports the Kind of err. A nil error is KindNone and an error that
// did not originate from this package is KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func badRequest(op, format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func notFound(op string, digest Digest) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: "no entry for " + string(digest)}
}

func conflict(op string, digest Digest) *Error {
	return &Error{Kind: KindConflict, Op: op, Msg: "entry " + string(digest) + " already exists"}
}

func internal(op, msg string, err error) *Error {
	return &Error{Kind: KindInternal, Op: op, Msg: msg, Err: err}
}
