package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"issue-blog-cms/config"
	"issue-blog-cms/helper"
	"issue-blog-cms/middleware"
	"issue-blog-cms/models"
	"issue-blog-cms/services"
)

type AuthHandler struct {
	authService services.AuthService
	cfg         config.AuthConfig
	Helper      *helper.HTTPHelper
}

func NewAuthHandler(authService services.AuthService, cfg config.AuthConfig, h *helper.HTTPHelper) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg, Helper: h}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Username and password are required")
		return
	}

	token, _, err := h.authService.Login(req)
	if err != nil {
		h.Helper.SendUnauthorizedError(c, "Invalid credentials")
		return
	}

	h.setCookie(c, token, int(h.expiration().Seconds()))
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
}

// Logout clears the session cookie. It is registered for GET and POST.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	h.Helper.SendSuccess(c, "Logged out successfully")
}

// Status reports the session state; it never fails.
func (h *AuthHandler) Status(c *gin.Context) {
	resp := models.AuthStatusResponse{}
	if token := middleware.TokenFromRequest(c); token != "" {
		if user, err := h.authService.VerifyToken(token); err == nil {
			resp.Authenticated = true
			resp.User = user
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(config.AuthCookieName, value, maxAge, "/", "", h.cfg.SecureCookie, true)
}

func (h *AuthHandler) expiration() time.Duration {
	if h.cfg.JWTExpiration > 0 {
		return h.cfg.JWTExpiration
	}
	return config.JWTExpiration
}
