package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issue-blog-cms/config"
	"issue-blog-cms/helper"
	"issue-blog-cms/models"
)

type stubAuth struct {
	valid map[string]*models.AuthUser
}

func (s stubAuth) Login(models.LoginRequest) (string, *models.AuthUser, error) {
	return "", nil, models.ErrorUnauthorized{Message: "Invalid credentials"}
}

func (s stubAuth) VerifyToken(token string) (*models.AuthUser, error) {
	if u, ok := s.valid[token]; ok {
		return u, nil
	}
	return nil, models.ErrorUnauthorized{Message: "Token is not valid"}
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h, err := helper.NewHTTPHelper()
	require.NoError(t, err)

	auth := stubAuth{valid: map[string]*models.AuthUser{
		"admin-token":  {Username: "admin", Role: models.RoleAdmin},
		"reader-token": {Username: "reader", Role: "reader"},
	}}

	r := gin.New()
	r.Use(CORS())
	r.GET("/open", func(c *gin.Context) {
		c.String(http.StatusOK, TokenFromRequest(c))
	})
	r.POST("/admin", AuthMiddleware(auth, h), RequireRole(h, models.RoleAdmin), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		require.True(t, ok)
		c.String(http.StatusOK, user.Username)
	})
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTokenFromRequest(t *testing.T) {
	r := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.AddCookie(&http.Cookie{Name: config.AuthCookieName, Value: "from-cookie"})
	req.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-cookie", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, serve(r, req).Body.String())
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name   string
		cookie string
		status int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"invalid token", "forged", http.StatusUnauthorized},
		{"wrong role", "reader-token", http.StatusUnauthorized},
		{"admin", "admin-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: config.AuthCookieName, Value: tt.cookie})
			}
			w := serve(r, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"Admin authentication required"}`, w.Body.String())
			} else {
				assert.Equal(t, "admin", w.Body.String())
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter(t)

	w := serve(r, httptest.NewRequest(http.MethodOptions, "/admin", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}
