package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vendoria/commerce-service/internal/domain"
)

// RoleSuperAdmin bypasses all permission checks
const RoleSuperAdmin = "SUPERADMIN"

// Permission grants access to one route path. Wildcard grants every path
// under the prefix.
type Permission struct {
	Path     string `json:"path"`
	Wildcard bool   `json:"wildcard"`
}

// Claims is the token payload carried on every authenticated request
type Claims struct {
	Role        string       `json:"role"`
	Permissions []Permission `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 session tokens. The signing key comes
// from the secret manager at startup.
type TokenManager struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

// NewTokenManager creates a token manager
func NewTokenManager(signingKey []byte, issuer string, ttl time.Duration) *TokenManager {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{
		signingKey: signingKey,
		issuer:     issuer,
		ttl:        ttl,
	}
}

// Issue creates a signed token for a subject
func (m *TokenManager) Issue(subject, role string, permissions []Permission) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:        role,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns its claims
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.signingKey, nil
		},
		jwt.WithIssuer(m.issuer),
	)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeAuthInvalid, "invalid token", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrAuthInvalid
	}
	return claims, nil
}
