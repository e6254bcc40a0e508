package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const adminPasswordSuffix = "-admin"

// resetTokenTTL bounds how long the post-deploy password reset link is valid
const resetTokenTTL = 24 * time.Hour

// DerivedAdminPassword computes the per-store admin credential from the store
// id: the first 8 characters of the id plus a fixed suffix. The same value is
// handed to the store owner, injected as a secret env var, and compared by
// the domain-management bearer auth, so it must be computed in exactly one
// place.
func DerivedAdminPassword(storeID uuid.UUID) string {
	return storeID.String()[:8] + adminPasswordSuffix
}

// GenerateResetToken issues a time-boxed token the store owner uses to set
// their admin password after the first successful deploy.
func GenerateResetToken(storeID uuid.UUID, secret string) (token string, expiresAt time.Time, err error) {
	expiresAt = time.Now().Add(resetTokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   storeID.String(),
		Issuer:    "gosovereign-backend",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign reset token: %w", err)
	}
	return token, expiresAt, nil
}
