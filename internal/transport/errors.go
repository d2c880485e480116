package transport

import (
	"encoding/json"
	"fmt"
)

// TransportError is returned for both network failures and non-success
// replies. HasResponse tells them apart.
type TransportError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	if e.HasResponse() {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HasResponse reports whether the server answered at all.
func (e *TransportError) HasResponse() bool { return e.StatusCode != 0 }

// Message returns the "message" field of a JSON error body, falling back to
// the error text.
func (e *TransportError) Message() string {
	if len(e.Body) > 0 {
		var body struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(e.Body, &body); err == nil && body.Message != "" {
			return body.Message
		}
	}
	return e.Error()
}
