package entity

import (
	"errors"
	"fmt"
)

// MutationErrorKind classifies a failed backend exchange.
type MutationErrorKind string

const (
	ErrorKindAuthRequired     MutationErrorKind = "auth_required"
	ErrorKindNotFound         MutationErrorKind = "not_found"
	ErrorKindPermissionDenied MutationErrorKind = "permission_denied"
	ErrorKindNetwork          MutationErrorKind = "network_error"
)

// MutationError is the normalized failure returned by every backend call.
type MutationError struct {
	Kind MutationErrorKind
	Op   string
	Err  error
}

// Sentinels for errors.Is checks. They match any MutationError of the same kind.
var (
	ErrAuthRequired     = &MutationError{Kind: ErrorKindAuthRequired}
	ErrNotFound         = &MutationError{Kind: ErrorKindNotFound}
	ErrPermissionDenied = &MutationError{Kind: ErrorKindPermissionDenied}
	ErrNetwork          = &MutationError{Kind: ErrorKindNetwork}
)

// NewMutationError builds a MutationError for op.
func NewMutationError(kind MutationErrorKind, op string, err error) *MutationError {
	return &MutationError{Kind: kind, Op: op, Err: err}
}

func (e *MutationError) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// Is matches on kind so wrapped errors compare equal to the package sentinels.
func (e *MutationError) Is(target error) bool {
	t, ok := target.(*MutationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// AsMutationError normalizes err into a MutationError. Anything unknown is a network error.
func AsMutationError(op string, err error) *MutationError {
	if err == nil {
		return nil
	}
	var me *MutationError
	if errors.As(err, &me) {
		return me
	}
	return NewMutationError(ErrorKindNetwork, op, err)
}

// ErrorKindOf returns the kind of a MutationError in err's chain, or "" if there is none.
func ErrorKindOf(err error) MutationErrorKind {
	var me *MutationError
	if errors.As(err, &me) {
		return me.Kind
	}
	return ""
}
