package recorder

import "fmt"

// CaptureError reports an exchange that could not be documented.
type CaptureError struct {
	Method string
	Route  string
	Err    error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("failed to document %s %s: %v", e.Method, e.Route, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}
