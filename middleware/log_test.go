package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"issue-blog-cms/logger"
)

func TestLogWritesOneLinePerRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(Log(logger.Wrap(zap.New(core))))
	r.GET("/api/tags", func(c *gin.Context) { c.String(http.StatusTeapot, "tea") })

	req := httptest.NewRequest(http.MethodGet, "/api/tags?x=1", nil)
	req.Header.Set("User-Agent", "blogctl")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/tags", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.EqualValues(t, 3, fields["bytes"])
	assert.Equal(t, "blogctl", fields["user_agent"])
}
