package directory

import "fmt"

// ValidationError reports a missing or malformed required field. Handlers
// map it to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown patientId. Handlers map it to 404.
type NotFoundError struct {
	PatientID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("patient %s not found", e.PatientID)
}

// PersistenceError wraps an underlying storage failure. Handlers map it to
// 500; this layer does not retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
