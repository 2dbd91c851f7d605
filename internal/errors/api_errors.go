package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// APIError represents a non-2xx response from the ammonit backend.
type APIError struct {
	StatusCode int
	Path       string
	Detail     string
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error (status %d) on %s", e.StatusCode, e.Path)
	}
	return fmt.Sprintf("api error (status %d) on %s: %s", e.StatusCode, e.Path, e.Detail)
}

// Retryable reports whether the request may succeed if repeated unchanged.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || (e.StatusCode >= 500 && e.StatusCode < 600)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, path, detail string, retryAfter time.Duration) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Path:       path,
		Detail:     detail,
		RetryAfter: retryAfter,
	}
}

// FromResponse builds an APIError from a failed response and its body.
func FromResponse(resp *http.Response, body []byte) *APIError {
	var retryAfter time.Duration
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil {
			retryAfter = time.Duration(secs) * time.Second
		}
	}
	path := ""
	if resp.Request != nil && resp.Request.URL != nil {
		path = resp.Request.URL.Path
	}
	return NewAPIError(resp.StatusCode, path, ParseDetail(body), retryAfter)
}

// ParseDetail extracts the human readable message from a FastAPI error body.
// The backend sends either {"detail": "msg"} or a validation list
// {"detail": [{"msg": "..."}]}. Anything else is returned trimmed as-is.
func ParseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}

	var msg string
	if err := json.Unmarshal(payload.Detail, &msg); err == nil {
		return msg
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return strings.TrimSpace(string(payload.Detail))
}

// IsRetryable classifies err the same way the page view decides whether to
// offer a retry: API throttling/server errors and network timeouts.
func IsRetryable(err error) bool {
	var apiErr *APIError
	var netErr interface{ Timeout() bool }

	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is an API 401 or 403.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}
