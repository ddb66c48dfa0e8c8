package services

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"issue-blog-cms/client"
	"issue-blog-cms/config"
	"issue-blog-cms/logger"
	"issue-blog-cms/testutil"
)

func newUpstream(t *testing.T) (*testutil.FakeUpstream, *client.Client) {
	t.Helper()
	f := testutil.NewFakeUpstream("blog")
	t.Cleanup(f.Close)

	tr, err := client.NewDirectTransport(config.APIConfig{
		APIBaseURL: f.URL(),
		APIToken:   "test-token",
		RepoName:   f.Repo,
		Context:    config.ServerContext,
	}, nil)
	require.NoError(t, err)
	return f, client.New(tr)
}

type proxyCall struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// newProxyRecorder answers every call with status and body and records it.
func newProxyRecorder(t *testing.T, status int, body string) (*client.Client, func() []proxyCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []proxyCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, proxyCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(buf)})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return client.New(client.NewProxyTransport(srv.URL, nil)), func() []proxyCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]proxyCall(nil), calls...)
	}
}

func nopLogger() logger.Logger { return logger.Nop() }
