package session

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims mirrors what the backend puts in its bearer tokens
type TokenClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ReadClaims decodes the token payload without checking the signature. The
// front-end never holds the signing key; it only needs role and expiry.
func ReadClaims(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
