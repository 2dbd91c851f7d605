package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	apierrors "ammonit/internal/errors"
	"ammonit/internal/metrics"
	"ammonit/internal/model"
	"ammonit/internal/paging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// usersBackend serves count users named u1..uN with FastAPI skip/limit semantics.
func usersBackend(t *testing.T, count int, seen *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = append(*seen, r.URL.RequestURI())
		}
		if r.URL.Path != "/api/v1/users/" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"detail":"Not Found"}`)
			return
		}
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		data := []model.User{}
		for i := skip + 1; i <= count && len(data) < limit; i++ {
			data = append(data, model.User{ID: fmt.Sprintf("u%d", i), Email: fmt.Sprintf("u%d@example.com", i)})
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data, "count": count})
	}))
}

func TestFetchPage_Users(t *testing.T) {
	var seen []string
	srv := usersBackend(t, 23, &seen)
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	res, err := c.Users(context.Background(), paging.Request{Page: 1}, 10)
	require.NoError(t, err)
	assert.Equal(t, 23, res.Count)
	require.Len(t, res.Items, 10)
	assert.Equal(t, "u1", res.Items[0].ID)

	res, err = c.Users(context.Background(), paging.Request{Page: 3}, 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 3)
	assert.Equal(t, "u21", res.Items[0].ID)

	assert.Equal(t, []string{
		"/api/v1/users/?limit=10&skip=0",
		"/api/v1/users/?limit=10&skip=20",
	}, seen)
}

func TestFetchPage_IsIdempotent(t *testing.T) {
	srv := usersBackend(t, 23, nil)
	defer srv.Close()
	c, _ := New(srv.URL)

	a, err := c.Users(context.Background(), paging.Request{Page: 2}, 10)
	require.NoError(t, err)
	b, err := c.Users(context.Background(), paging.Request{Page: 2}, 10)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestFetchPage_NormalizesArguments(t *testing.T) {
	var seen []string
	srv := usersBackend(t, 5, &seen)
	defer srv.Close()
	c, _ := New(srv.URL)

	_, err := c.Users(context.Background(), paging.Request{Page: 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/v1/users/?limit=10&skip=0"}, seen)
}

func TestFetchPage_EmptyCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":null,"count":0}`)
	}))
	defer srv.Close()
	c, _ := New(srv.URL)

	res, err := c.Clients(context.Background(), paging.Request{Page: 1}, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}

func TestFetchPage_TruncatesOversizedPages(t *testing.T) {
	// Ignores limit and always returns every row.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := make([]model.User, 50)
		for i := range data {
			data[i] = model.User{ID: fmt.Sprintf("u%d", i+1)}
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data, "count": 50})
	}))
	defer srv.Close()

	c, _ := New(srv.URL)
	res, err := c.Users(context.Background(), paging.Request{Page: 1}, 10)
	require.NoError(t, err)
	assert.Len(t, res.Items, 10)
	assert.Equal(t, 50, res.Count)
}

func TestFetchPage_ErrorsAreNeverEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"detail":"database down"}`)
	}))
	defer srv.Close()
	c, _ := New(srv.URL)

	res, err := c.Orders(context.Background(), paging.Request{Page: 1}, 10)
	require.Error(t, err)
	assert.Nil(t, res.Items)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.StatusCode)
	assert.Equal(t, "database down", apiErr.Detail)
	assert.True(t, apierrors.IsRetryable(err))
	assert.Contains(t, err.Error(), "fetch orders page 1")
}

func TestFetchPage_NegativeCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[],"count":-1}`)
	}))
	defer srv.Close()
	c, _ := New(srv.URL)

	_, err := c.Emails(context.Background(), paging.Request{Page: 1}, 10)
	assert.ErrorContains(t, err, "negative count")
}

func TestFetchPage_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>`)
	}))
	defer srv.Close()
	c, _ := New(srv.URL)

	_, err := c.Prompts(context.Background(), paging.Request{Page: 1}, 10)
	assert.ErrorContains(t, err, "decode response")
}

func TestClient_SendsToken(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"id":"me","email":"me@example.com","is_active":true}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/", WithToken("secret"))
	require.NoError(t, err)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "me", me.ID)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, WithTimeout(20*time.Millisecond))
	_, err := c.Users(context.Background(), paging.Request{Page: 1}, 10)
	require.Error(t, err)
	assert.True(t, apierrors.IsRetryable(err))
}

func TestClient_RecordsMetrics(t *testing.T) {
	srv := usersBackend(t, 3, nil)
	defer srv.Close()

	m := metrics.New(prometheus.NewRegistry())
	c, _ := New(srv.URL, WithMetrics(m))

	_, err := c.Users(context.Background(), paging.Request{Page: 1}, 10)
	require.NoError(t, err)
	_, err = FetchPage[model.Client](context.Background(), c, "unknown", paging.Request{Page: 1}, 10)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageFetches.WithLabelValues("users", metrics.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageFetches.WithLabelValues("unknown", metrics.OutcomeError)))
}

func TestNew_RejectsBadURLs(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)

	_, err = New("://nope")
	assert.Error(t, err)
}
