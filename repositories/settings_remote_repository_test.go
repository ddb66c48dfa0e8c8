package repositories

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issue-blog-cms/client"
)

func TestSettingsRemoteRepository(t *testing.T) {
	var posted map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/settings/file", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"siteName":"Remote"}`))
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			posted = nil
			_ = json.Unmarshal(body, &posted)
			if posted["siteDescription"] == "" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"Invalid settings format"}`))
				return
			}
			_, _ = w.Write([]byte(`{"success":true}`))
		}
	}))
	defer srv.Close()

	repo := NewSettingsRemoteRepository(client.New(client.NewProxyTransport(srv.URL, nil)))
	ctx := context.Background()

	data, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"siteName":"Remote"}`, string(data))

	require.NoError(t, repo.Save(ctx, json.RawMessage(`{"siteName":"Partial"}`)))
	assert.Equal(t, map[string]interface{}{"siteName": "Partial"}, posted)

	err = repo.Save(ctx, json.RawMessage(`{"siteName":"x","siteDescription":""}`))
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, client.StatusCode(err))
}
