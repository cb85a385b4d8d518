// Package auth issues and verifies the bearer tokens used by protected
// routes, and provides the fiber middleware that enforces them.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fgmcolas/ShakeItUp/internal/apperr"
)

// TokenService signs and verifies HS256 tokens. The only claim callers should
// rely on is the subject, which carries the user id.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

func (s *TokenService) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})
	return token.SignedString(s.secret)
}

// Verify returns the subject user id, or an auth error for anything wrong
// with the token. The message stays generic on purpose.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperr.Auth("invalid token")
	}
	if claims.Subject == "" {
		return "", apperr.Auth("invalid token")
	}
	return claims.Subject, nil
}
