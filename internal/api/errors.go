package api

import "fmt"

// TransportError reports a failure to send a request or to read its response.
// It is fatal to the round that hit it.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is an error reported by the completion service itself.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("API error (%s): %s", e.Type, e.Message)
	case e.Type == "":
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("API error (%d, %s): %s", e.StatusCode, e.Type, e.Message)
	}
}
