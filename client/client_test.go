package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issue-blog-cms/cache"
	"issue-blog-cms/config"
	"issue-blog-cms/models"
)

type seen struct {
	method, path, query, auth, contentType, accept string
}

func newServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]seen) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []seen
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, seen{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			auth:        r.Header.Get("Authorization"),
			contentType: r.Header.Get("Content-Type"),
			accept:      r.Header.Get("Accept"),
		})
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func directClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	tr, err := NewDirectTransport(config.APIConfig{
		APIBaseURL: baseURL,
		APIToken:   "secret-token",
		RepoName:   "blog",
		Context:    config.ServerContext,
	}, nil)
	require.NoError(t, err)
	return New(tr, opts...)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestDirectTransportSendsBearerAndJSONHeaders(t *testing.T) {
	srv, reqs := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Issue{Number: "7", Title: "hello"})
	})
	c := directClient(t, srv.URL+"/")

	issue, err := Get[models.Issue](context.Background(), c, "/-/issues/7", NoCache)
	require.NoError(t, err)
	assert.Equal(t, models.IssueNumber("7"), issue.Number)

	require.Len(t, *reqs, 1)
	r := (*reqs)[0]
	assert.Equal(t, "/blog/-/issues/7", r.path)
	assert.Equal(t, "Bearer secret-token", r.auth)
	assert.Equal(t, "application/json", r.contentType)
	assert.Equal(t, "application/json", r.accept)
	assert.True(t, c.IsServerSide())
}

func TestDirectTransportRequiresToken(t *testing.T) {
	_, err := NewDirectTransport(config.APIConfig{APIBaseURL: "http://x", Context: config.ServerContext}, nil)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = NewTransport(config.APIConfig{APIBaseURL: "http://x", APIToken: "t", Context: config.ProxyContext}, "http://local", nil)
	assert.NoError(t, err)
}

func TestProxyTransportCarriesNoToken(t *testing.T) {
	srv, reqs := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Issue{})
	})
	tr, err := NewTransport(config.APIConfig{APIBaseURL: "http://upstream", Context: config.ProxyContext}, srv.URL, nil)
	require.NoError(t, err)
	c := New(tr)

	_, err = GetList[models.Issue](context.Background(), c, "/api/articles/list?page=1", NoCache)
	require.NoError(t, err)

	require.Len(t, *reqs, 1)
	assert.Equal(t, "/api/articles/list", (*reqs)[0].path)
	assert.Equal(t, "page=1", (*reqs)[0].query)
	assert.Empty(t, (*reqs)[0].auth)
	assert.False(t, c.IsServerSide())
	assert.Equal(t, config.ProxyContext, c.Context())
}

func TestGetNotFoundMatchesErrNotFound(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "missing"})
	})
	c := directClient(t, srv.URL)

	_, err := Get[models.Issue](context.Background(), c, "/-/issues/99", NoCache)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestWriteNotFoundIsPlainStatusError(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c := directClient(t, srv.URL)

	_, err := Patch[models.Issue](context.Background(), c, "/-/issues/99", map[string]string{"state": "open"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
}

func TestServerErrorCarriesStatusAndBody(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})
	c := directClient(t, srv.URL)

	_, err := Post[models.Issue](context.Background(), c, "/-/issues", map[string]string{"title": "t"})
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	assert.Equal(t, http.MethodPost, se.Method)
	assert.Equal(t, "boom", se.Message())
	assert.Contains(t, err.Error(), "API Error: 500")
}

func TestTimeout(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	c := directClient(t, srv.URL, WithTimeout(50*time.Millisecond))

	_, err := Get[models.Issue](context.Background(), c, "/-/issues/1", NoCache)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestGetListNonArrayIsEmpty(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "not a list"})
	})
	c := directClient(t, srv.URL)

	list, err := GetList[models.Issue](context.Background(), c, "/-/issues", NoCache)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGetMalformedJSON(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[{"number": `))
	})
	c := directClient(t, srv.URL)

	_, err := GetList[models.Issue](context.Background(), c, "/-/issues", NoCache)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestResponseCacheHonoursHintAndInvalidatesOnWrite(t *testing.T) {
	var gets int32
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			atomic.AddInt32(&gets, 1)
			writeJSON(w, http.StatusOK, []models.Issue{{Number: "1"}})
			return
		}
		writeJSON(w, http.StatusCreated, models.Issue{Number: "2"})
	})

	var hints []CacheHint
	revalidate := func(_ context.Context, hint CacheHint) time.Duration {
		hints = append(hints, hint)
		return time.Minute
	}
	c := directClient(t, srv.URL, WithResponseCache(cache.NewMemoryStore(), revalidate))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		list, err := GetList[models.Issue](ctx, c, "/-/issues", CacheArticles)
		require.NoError(t, err)
		require.Len(t, list, 1)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&gets))
	assert.Equal(t, CacheArticles, hints[0])

	// unhinted reads bypass the cache
	_, err := GetList[models.Issue](ctx, c, "/-/issues", NoCache)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&gets))

	_, err = Post[models.Issue](ctx, c, "/-/issues", map[string]string{"title": "t"})
	require.NoError(t, err)

	_, err = GetList[models.Issue](ctx, c, "/-/issues", CacheArticles)
	require.NoError(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&gets))
}

func TestResponseCacheIgnoredInProxyContext(t *testing.T) {
	var gets int32
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&gets, 1)
		writeJSON(w, http.StatusOK, []models.Issue{})
	})
	revalidate := func(context.Context, CacheHint) time.Duration { return time.Minute }
	c := New(NewProxyTransport(srv.URL, nil), WithResponseCache(cache.NewMemoryStore(), revalidate))

	for i := 0; i < 2; i++ {
		_, err := GetList[models.Issue](context.Background(), c, "/api/articles/list", CacheArticles)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(&gets))
}

func TestUnavailableTransportFailsWithConfigurationError(t *testing.T) {
	_, err := NewDirectTransport(config.APIConfig{Context: config.ServerContext}, nil)
	require.Error(t, err)

	c := New(NewUnavailableTransport(config.ServerContext, err))
	_, err = GetList[models.Issue](context.Background(), c, "/-/issues", NoCache)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}
