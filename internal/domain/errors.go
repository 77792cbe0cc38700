package domain

import "fmt"

// ValidationError is a client-side input failure caught before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func emptyFieldError(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("Field '%s' cannot be empty.", humanizeField(field)),
	}
}

func invalidFieldError(field, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
