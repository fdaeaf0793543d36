package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies a chat transport failure.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeProvider
	ErrorTypeRequest
	ErrorTypeResponse
	ErrorTypeAPI
	ErrorTypeRateLimit
	ErrorTypeAuthentication
	ErrorTypeInvalidInput
)

var errorTypeNames = [...]string{
	ErrorTypeUnknown:        "UnknownError",
	ErrorTypeProvider:       "ProviderError",
	ErrorTypeRequest:        "RequestError",
	ErrorTypeResponse:       "ResponseError",
	ErrorTypeAPI:            "APIError",
	ErrorTypeRateLimit:      "RateLimitError",
	ErrorTypeAuthentication: "AuthenticationError",
	ErrorTypeInvalidInput:   "InvalidInputError",
}

func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return errorTypeNames[ErrorTypeUnknown]
	}
	return errorTypeNames[t]
}

// LLMError is a failed chat call. The agent treats every LLMError as a
// transport fault; Type only decides whether a retry is worthwhile.
type LLMError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *LLMError) Error() string {
	if e.Err == nil {
		return e.Type.String() + ": " + e.Message
	}
	return fmt.Sprintf("%s (%s): %v", e.Type, e.Message, e.Err)
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

// LoggableFields returns the error as key/value pairs for a Logger call.
func (e *LLMError) LoggableFields() []any {
	return []any{
		"error_type", e.Type.String(),
		"message", e.Message,
		"cause", e.Err,
	}
}

func NewLLMError(errType ErrorType, message string, err error) *LLMError {
	return &LLMError{Type: errType, Message: message, Err: err}
}

// errorTypeForStatus maps a non-200 HTTP status to an ErrorType.
func errorTypeForStatus(status int) ErrorType {
	switch status {
	case http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrorTypeAuthentication
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		return ErrorTypeInvalidInput
	default:
		return ErrorTypeAPI
	}
}

// retryable reports whether another attempt could succeed. Cancellation,
// bad credentials and malformed input never improve on retry.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		switch llmErr.Type {
		case ErrorTypeAuthentication, ErrorTypeInvalidInput:
			return false
		}
	}
	return true
}
