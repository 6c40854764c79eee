// Package apperror defines the error kinds surfaced by the storefront services
// and the helpers the HTTP layer uses to map them onto responses.
package apperror

import (
	"github.com/go-faster/errors"
)

// Kind is a stable error category.
type Kind string

const (
	KindInvalidArgument    Kind = "invalid_argument"
	KindNotFound           Kind = "not_found"
	KindFailedPrecondition Kind = "failed_precondition"
	KindUnauthenticated    Kind = "unauthenticated"
	KindPermissionDenied   Kind = "permission_denied"
	KindConflict           Kind = "conflict"
	KindInternal           Kind = "internal"
)

// Error is a categorised error with a message safe to show to callers.
type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind and reason.
// Errors without a reason only match themselves.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e == t {
		return true
	}
	return e.Reason != "" && e.Kind == t.Kind && e.Reason == t.Reason
}

// WithMessage returns a copy of e carrying a different display message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// Wrap returns a copy of e with err attached as its cause.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

func New(kind Kind, reason, msg string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: msg}
}

func InvalidArgument(msg string) *Error { return New(KindInvalidArgument, "", msg) }

func NotFound(msg string) *Error { return New(KindNotFound, "", msg) }

func FailedPrecondition(reason, msg string) *Error {
	return New(KindFailedPrecondition, reason, msg)
}

func Unauthenticated(msg string) *Error { return New(KindUnauthenticated, "", msg) }

func PermissionDenied(msg string) *Error { return New(KindPermissionDenied, "", msg) }

func Conflict(msg string) *Error { return New(KindConflict, "", msg) }

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// As extracts the outermost *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for uncategorised errors.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
