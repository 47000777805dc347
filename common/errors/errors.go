package errors

// ExitCodeError pairs an error with the process exit code it should produce.
type ExitCodeError struct {
	code ExitCode
	error
}

func NewError(err error, exitCode ExitCode) *ExitCodeError {
	if err == nil {
		return nil
	}
	return &ExitCodeError{exitCode, err}
}

func (e *ExitCodeError) GetExitCode() ExitCode {
	if e == nil {
		return 0
	}
	return e.code
}

// ExitCodeOf returns the exit code carried by err, GenericFailureExitCode for any other
// error and 0 for nil.
func ExitCodeOf(err error) ExitCode {
	if err == nil {
		return 0
	}
	if e, ok := err.(*ExitCodeError); ok && e != nil {
		return e.code
	}
	return GenericFailureExitCode
}
