package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// NetworkError means no usable response came back: the request could not be
// sent, the connection failed, or the body could not be read.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: cannot reach reorder API: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a non-2xx response. Message is the server's error text, or
// "API Error: <status>" when the body carries none.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// DecodeError is a 2xx response whose body does not match the expected shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: unexpected response from reorder API: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// errorBody is the backend's error envelope.
type errorBody struct {
	Error string `json:"error"`
}

func parseAPIError(op string, status int, body []byte) *APIError {
	apiErr := &APIError{
		Op:         op,
		StatusCode: status,
		Message:    fmt.Sprintf("API Error: %d", status),
	}

	var payload errorBody
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	}
	return apiErr
}

func missingField(op, field string) *DecodeError {
	return &DecodeError{Op: op, Err: fmt.Errorf("missing field %q", field)}
}

// IsNetworkError reports whether err came from a request that got no response.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// StatusCode returns the HTTP status carried by an APIError in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
