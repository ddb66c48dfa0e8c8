package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"issue-blog-cms/config"
	"issue-blog-cms/models"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:     []byte("test-secret"),
		JWTExpiration: config.JWTExpiration,
		AdminUsername: "admin",
		AdminPassword: "admin123",
	}
}

func TestLoginAndVerify(t *testing.T) {
	svc, err := NewAuthService(testAuthConfig())
	require.NoError(t, err)

	token, user, err := svc.Login(models.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, models.RoleAdmin, user.Role)

	verified, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", verified.Username)
	assert.Equal(t, models.RoleAdmin, verified.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, err := NewAuthService(testAuthConfig())
	require.NoError(t, err)

	for _, req := range []models.LoginRequest{
		{Username: "admin", Password: "wrong"},
		{Username: "root", Password: "admin123"},
	} {
		_, _, err := svc.Login(req)
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	}
}

func TestLoginWithPasswordHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := testAuthConfig()
	cfg.AdminPassword = ""
	cfg.AdminPasswordHash = string(hash)
	svc, err := NewAuthService(cfg)
	require.NoError(t, err)

	_, _, err = svc.Login(models.LoginRequest{Username: "admin", Password: "hunter2"})
	assert.NoError(t, err)
}

func TestTokenExpiresAfter24Hours(t *testing.T) {
	svc, err := NewAuthService(testAuthConfig())
	require.NoError(t, err)
	impl := svc.(*authService)

	impl.now = func() time.Time { return time.Now().Add(-24*time.Hour - time.Minute) }
	token, _, err := svc.Login(models.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestVerifyRejectsForeignTokens(t *testing.T) {
	svc, err := NewAuthService(testAuthConfig())
	require.NoError(t, err)

	claims := Claims{
		Username: "admin",
		Role:     models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.VerifyToken(otherKey)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.VerifyToken(unsigned)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	claims.Role = "editor"
	editor, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.VerifyToken(editor)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = svc.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}
