// Package auth mints HS256 tokens accepted by the API when it runs with a shared secret.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenClaims struct {
	Nickname string `json:"nickname,omitempty"`
	jwt.RegisteredClaims
}

type TokenRequest struct {
	Secret   string
	Issuer   string
	Audience string
	Subject  string
	Nickname string
	TTL      time.Duration
}

func CreateToken(req TokenRequest) (string, error) {
	if req.Secret == "" {
		return "", errors.New("jwt secret key not set")
	}
	if req.Subject == "" {
		return "", errors.New("token subject is required")
	}
	ttl := req.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		Nickname: req.Nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    req.Issuer,
			Subject:   req.Subject,
			Audience:  jwt.ClaimStrings{req.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString([]byte(req.Secret))
}

// VerifyToken parses tokenString with the shared secret and returns its claims.
func VerifyToken(tokenString, secret string) (*TokenClaims, error) {
	if secret == "" {
		return nil, errors.New("jwt secret key not set")
	}
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
