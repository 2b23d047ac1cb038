package network

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	MessageUnknownError = "Unknown error"
	MessageNetworkError = "Network error"

	maxErrorBodyLen = 200
)

// APIError is returned by Client for any non-2xx response.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, ParseErrorMessage(e.Body))
}

// ParseErrorMessage extracts a human readable message from an error body.
// A JSON envelope yields its message field, anything else is cut to the
// first 200 characters.
func ParseErrorMessage(body []byte) string {
	if len(body) == 0 {
		return MessageUnknownError
	}
	if gjson.ValidBytes(body) {
		msg := gjson.GetBytes(body, "message")
		if msg.Type == gjson.String {
			return msg.String()
		}
	}
	return truncate(string(body), maxErrorBodyLen)
}

// FailureFrom converts a Client error into an Error result.
func FailureFrom[T any](err error) Result[T] {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return Failure[T](ParseErrorMessage(apiErr.Body), apiErr.StatusCode)
	}
	if err == nil || strings.TrimSpace(err.Error()) == "" {
		return Failure[T](MessageNetworkError, 0)
	}
	return Failure[T](err.Error(), 0)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
