package errors

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", NewAPIError(429, "/api/v1/users/", "Too many requests", 5*time.Second), true},
		{"server error", NewAPIError(500, "/api/v1/users/", "boom", 0), true},
		{"client error", NewAPIError(404, "/api/v1/users/", "Not found", 0), false},
		{"wrapped server error", fmt.Errorf("fetch users: %w", NewAPIError(503, "/x", "", 0)), true},
		{"network timeout", &net.OpError{Op: "dial", Err: timeoutErr{}}, true},
		{"generic", errors.New("nope"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsNotFoundAndUnauthorized(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("wrap: %w", NewAPIError(404, "/a", "", 0))))
	assert.False(t, IsNotFound(NewAPIError(500, "/a", "", 0)))
	assert.True(t, IsUnauthorized(NewAPIError(401, "/a", "", 0)))
	assert.True(t, IsUnauthorized(NewAPIError(403, "/a", "", 0)))
	assert.False(t, IsUnauthorized(errors.New("x")))
}

func TestParseDetail(t *testing.T) {
	assert.Equal(t, "Usuario no encontrado", ParseDetail([]byte(`{"detail":"Usuario no encontrado"}`)))
	assert.Equal(t, "field required; value is not a valid integer",
		ParseDetail([]byte(`{"detail":[{"msg":"field required"},{"msg":"value is not a valid integer"}]}`)))
	assert.Equal(t, "Bad Gateway", ParseDetail([]byte("  Bad Gateway\n")))
	assert.Equal(t, `{"other":1}`, ParseDetail([]byte(`{"other":1}`)))
}

func TestFromResponse(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Header:     http.Header{"Retry-After": []string{"3"}},
		Request:    &http.Request{URL: &url.URL{Path: "/api/v1/orders/"}},
	}

	err := FromResponse(resp, []byte(`{"detail":"slow down"}`))

	assert.Equal(t, 429, err.StatusCode)
	assert.Equal(t, "/api/v1/orders/", err.Path)
	assert.Equal(t, "slow down", err.Detail)
	assert.Equal(t, 3*time.Second, err.RetryAfter)
	assert.Equal(t, "api error (status 429) on /api/v1/orders/: slow down", err.Error())
}
