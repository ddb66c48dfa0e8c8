package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issue-blog-cms/config"
	"issue-blog-cms/models"
)

type fakeServer struct {
	*httptest.Server
	mu    sync.Mutex
	hits  map[string]int
	query map[string]string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	f := &fakeServer{hits: map[string]int{}, query: map[string]string{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/articles/list", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, []models.Issue{{Number: "1", Title: "hello", State: models.StateOpen, Labels: []models.Label{}}})
	})
	mux.HandleFunc("/api/articles/1", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, models.Issue{Number: "1", Title: "hello", State: models.StateOpen,
			Labels: []models.Label{{Name: "go"}, {Name: "P3"}}})
	})
	mux.HandleFunc("/api/articles/1/labels", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		var req models.LabelsRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.query[r.URL.Path] = strings.Join(req.Labels, ",")
		f.mu.Unlock()
		labels := make([]models.Label, 0, len(req.Labels))
		for _, l := range req.Labels {
			labels = append(labels, models.Label{Name: l})
		}
		writeJSON(w, labels)
	})
	mux.HandleFunc("/api/settings/file", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		writeJSON(w, map[string]string{"siteName": "Remote"})
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		http.SetCookie(w, &http.Cookie{Name: config.AuthCookieName, Value: "tok", Path: "/"})
		writeJSON(w, models.SuccessResponse{Success: true})
	})
	mux.HandleFunc("/api/auth/status", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		if c, err := r.Cookie(config.AuthCookieName); err == nil && c.Value == "tok" {
			writeJSON(w, models.AuthStatusResponse{Authenticated: true, User: &models.AuthUser{Username: "admin", Role: models.RoleAdmin}})
			return
		}
		writeJSON(w, models.AuthStatusResponse{})
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeServer) record(r *http.Request) {
	f.mu.Lock()
	f.hits[r.URL.Path]++
	f.query[r.URL.Path] = r.URL.RawQuery
	f.mu.Unlock()
}

func (f *fakeServer) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeServer) lastQuery(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query[path]
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), append([]string{"-log-level", "error"}, args...), &out)
	return out.String(), err
}

func TestArticlesUsesProxyRoutes(t *testing.T) {
	srv := newFakeServer(t)

	out, err := runCLI(t, "-server", srv.URL, "-cache", "", "articles", "-state", "all", "-keyword", "go")
	require.NoError(t, err)

	var articles []models.Issue
	require.NoError(t, json.Unmarshal([]byte(out), &articles))
	require.Len(t, articles, 1)
	assert.Equal(t, "hello", articles[0].Title)

	q := srv.lastQuery("/api/articles/list")
	assert.Contains(t, q, "state=all")
	assert.Contains(t, q, "keyword=go")
	assert.Contains(t, q, "pageSize=10")
}

func TestSettingsFallBackToFileCacheWhenServerIsDown(t *testing.T) {
	srv := newFakeServer(t)
	cachePath := filepath.Join(t.TempDir(), "cache.json")

	readSettings := func() models.SiteSettings {
		out, err := runCLI(t, "-server", srv.URL, "-cache", cachePath, "settings")
		require.NoError(t, err)
		var got models.SiteSettings
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		return got
	}

	got := readSettings()
	assert.Equal(t, "Remote", got.SiteName)
	assert.Equal(t, models.DefaultSettings().SiteDescription, got.SiteDescription)

	readSettings()
	assert.Equal(t, 2, srv.count("/api/settings/file"))

	srv.Close()
	assert.Equal(t, "Remote", readSettings().SiteName)
}

func TestLoginCarriesSessionCookie(t *testing.T) {
	srv := newFakeServer(t)

	out, err := runCLI(t, "-server", srv.URL, "-cache", "", "status")
	require.NoError(t, err)
	assert.JSONEq(t, `{"authenticated":false,"user":null}`, out)

	out, err = runCLI(t, "-server", srv.URL, "-cache", "", "-user", "admin", "-password", "pw", "status")
	require.NoError(t, err)
	assert.JSONEq(t, `{"authenticated":true,"user":{"username":"admin","role":"admin"}}`, out)
	assert.Equal(t, 1, srv.count("/api/auth/login"))
}

func TestPrioritySkipsUnchangedLabels(t *testing.T) {
	srv := newFakeServer(t)

	_, err := runCLI(t, "-server", srv.URL, "-cache", "", "priority", "1", "P3")
	require.NoError(t, err)
	assert.Equal(t, 0, srv.count("/api/articles/1/labels"))

	out, err := runCLI(t, "-server", srv.URL, "-cache", "", "priority", "1", "P1")
	require.NoError(t, err)
	assert.Equal(t, 1, srv.count("/api/articles/1/labels"))
	assert.Equal(t, "go,P1", srv.lastQuery("/api/articles/1/labels"))

	var labels []models.Label
	require.NoError(t, json.Unmarshal([]byte(out), &labels))
	assert.Len(t, labels, 2)
}

func TestCommandErrors(t *testing.T) {
	srv := newFakeServer(t)

	_, err := runCLI(t, "-server", srv.URL, "-cache", "", "frobnicate")
	assert.EqualError(t, err, `unknown command "frobnicate"`)

	_, err = runCLI(t, "-server", srv.URL, "-cache", "", "publish", "abc")
	assert.EqualError(t, err, `invalid article number "abc"`)

	_, err = runCLI(t, "-server", srv.URL, "-cache", "")
	assert.EqualError(t, err, "missing command")

	_, err = runCLI(t, "-server", srv.URL, "-cache", "", "priority", "1", "urgent")
	assert.ErrorIs(t, err, models.ErrValidation)
}
