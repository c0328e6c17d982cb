package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"natours-api/internal/models"
)

var ErrTokenExpired = errors.New("token expired")

type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) GenerateJWT(id models.Identity) (string, error) {
	now := t.now()
	claims := Claims{
		UserID: id.UserID,
		Role:   string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// ParseJWT verifies the signature and expiry and returns the caller.
func (t *TokenIssuer) ParseJWT(tokenStr string) (models.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return models.Identity{}, ErrTokenExpired
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("invalid token: %w", err)
	}

	if claims.UserID == "" || !models.IsValidRole(claims.Role) {
		return models.Identity{}, errors.New("invalid token: missing identity claims")
	}
	return models.Identity{UserID: claims.UserID, Role: models.Role(claims.Role)}, nil
}
