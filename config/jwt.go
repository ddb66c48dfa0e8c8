package config

import (
	"os"
	"time"
)

const (
	AuthCookieName = "auth-token"
	JWTExpiration  = 24 * time.Hour
)

type AuthConfig struct {
	JWTSecret     []byte
	JWTExpiration time.Duration

	AdminUsername string
	// AdminPassword is the plain configured password; AdminPasswordHash, when
	// set, takes precedence and must be a bcrypt hash.
	AdminPassword     string
	AdminPasswordHash string

	// SecureCookie marks the session cookie Secure (production only).
	SecureCookie bool
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "your-secret-key-change-this-in-production"
	}
	return AuthConfig{
		JWTSecret:         []byte(secret),
		JWTExpiration:     JWTExpiration,
		AdminUsername:     getenv("ADMIN_USERNAME", "admin"),
		AdminPassword:     getenv("ADMIN_PASSWORD", "admin123"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		SecureCookie:      getenv("APP_ENV", "development") == "production",
	}
}
