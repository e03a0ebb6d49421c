package core

import "github.com/pkg/errors"

// ErrRecordStore is matched (errors.Is) by every StoreError.
var ErrRecordStore = errors.New("record store failure")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return "invalid input"
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error { return err.Err }

// StoreError reports a failed read or write on the record store.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

func (err *StoreError) Error() string {
	return err.Op + ": " + ErrRecordStore.Error() + ": " + err.Err.Error()
}

func (err *StoreError) Unwrap() error { return err.Err }

func (err *StoreError) Is(target error) bool { return target == ErrRecordStore }

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
