package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"issue-blog-cms/config"
	"issue-blog-cms/models"
)

type AuthService interface {
	// Login checks the admin credentials and returns a signed session token.
	Login(req models.LoginRequest) (string, *models.AuthUser, error)
	// VerifyToken checks signature and expiry and returns the session user.
	VerifyToken(token string) (*models.AuthUser, error)
}

// Claims is the session token payload.
type Claims struct {
	Username string          `json:"username"`
	Role     models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	cfg          config.AuthConfig
	passwordHash []byte
	now          func() time.Time
}

// NewAuthService hashes a plain ADMIN_PASSWORD once so logins always compare
// against a bcrypt hash.
func NewAuthService(cfg config.AuthConfig) (AuthService, error) {
	hash := []byte(cfg.AdminPasswordHash)
	if len(hash) == 0 {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
	}
	return &authService{cfg: cfg, passwordHash: hash, now: time.Now}, nil
}

func (s *authService) Login(req models.LoginRequest) (string, *models.AuthUser, error) {
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.cfg.AdminUsername)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password))
	if !userOK || passErr != nil {
		return "", nil, models.ErrorUnauthorized{Message: "Invalid credentials"}
	}

	user := &models.AuthUser{Username: req.Username, Role: models.RoleAdmin}
	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *authService) VerifyToken(tokenString string) (*models.AuthUser, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.cfg.JWTSecret, nil
	})
	if err != nil {
		return nil, models.ErrorUnauthorized{Message: "Invalid token: " + err.Error()}
	}
	if !token.Valid || claims.Role != models.RoleAdmin {
		return nil, models.ErrorUnauthorized{Message: "Token is not valid"}
	}

	return &models.AuthUser{Username: claims.Username, Role: claims.Role}, nil
}

func (s *authService) generateToken(user *models.AuthUser) (string, error) {
	now := s.now()
	expiration := s.cfg.JWTExpiration
	if expiration <= 0 {
		expiration = config.JWTExpiration
	}

	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.JWTSecret)
	if err != nil {
		return "", errors.New("failed to sign token")
	}
	return signed, nil
}
