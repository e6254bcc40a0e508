package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gosovereign-backend/internal/config"
	apperrors "gosovereign-backend/internal/errors"
)

const tokenTTL = 24 * time.Hour

// AuthClaims represents JWT token claims
type AuthClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthService issues and validates platform session tokens and decides
// platform admin membership from the configured allow-list.
type AuthService struct {
	secret      string
	adminEmails map[string]bool
}

// NewAuthService creates a new authentication service
func NewAuthService(cfg *config.Config) *AuthService {
	admins := make(map[string]bool)
	for _, email := range cfg.AdminEmailList() {
		admins[strings.ToLower(email)] = true
	}
	return &AuthService{
		secret:      cfg.JWTSecret,
		adminEmails: admins,
	}
}

// GenerateToken issues a signed session token for a user
func (s *AuthService) GenerateToken(userID uuid.UUID, email string) (string, error) {
	now := time.Now()
	claims := AuthClaims{
		UserID: userID.String(),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    "gosovereign-backend",
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateJWT validates a session token and returns its claims
func (s *AuthService) ValidateJWT(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, apperrors.NewAuthenticationError(fmt.Sprintf("invalid token: %v", err))
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, apperrors.NewAuthenticationError("invalid token claims")
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, apperrors.NewAuthenticationError("invalid user id in token")
	}
	return claims, nil
}

// IsPlatformAdmin reports whether the email is on the admin allow-list
func (s *AuthService) IsPlatformAdmin(email string) bool {
	return s.adminEmails[strings.ToLower(email)]
}
