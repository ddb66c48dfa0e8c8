package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"issue-blog-cms/config"
	"issue-blog-cms/helper"
	"issue-blog-cms/models"
	"issue-blog-cms/services"
)

// UserKey is the gin context key holding the *models.AuthUser of the session.
const UserKey = "auth_user"

// TokenFromRequest reads the session token from the auth cookie, falling back
// to an Authorization bearer header for non-browser callers.
func TokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(config.AuthCookieName); err == nil && token != "" {
		return token
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// CurrentUser returns the user a previous auth middleware stored, if any.
func CurrentUser(c *gin.Context) (*models.AuthUser, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.AuthUser)
	return user, ok && user != nil
}

// AuthMiddleware rejects requests without a valid session token.
func AuthMiddleware(auth services.AuthService, h *helper.HTTPHelper) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			h.SendUnauthorizedError(c, "Admin authentication required")
			c.Abort()
			return
		}

		user, err := auth.VerifyToken(token)
		if err != nil {
			h.SendUnauthorizedError(c, "Admin authentication required")
			c.Abort()
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// RequireRole allows only the given roles; use after AuthMiddleware.
func RequireRole(h *helper.HTTPHelper, roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			h.SendUnauthorizedError(c, "User role not found")
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		h.SendUnauthorizedError(c, "Admin authentication required")
		c.Abort()
	}
}
