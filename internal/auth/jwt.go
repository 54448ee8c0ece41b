// Package auth issues and validates session tokens and handles sign-up and login.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/01moynul/storefront-fulfillment/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the session payload. The role is read from here on every request,
// so a client cannot promote itself.
type Claims struct {
	Name string      `json:"name"`
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is how long an issued token stays valid.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Generate creates a signed token for user.
func (m *TokenManager) Generate(user *models.User) (string, error) {
	now := m.now()
	claims := Claims{
		Name: user.DisplayName(),
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Validate parses tokenString and returns the actor it was issued to.
func (m *TokenManager) Validate(tokenString string) (models.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return models.Actor{}, err
	}
	if !token.Valid {
		return models.Actor{}, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return models.Actor{}, ErrInvalidToken
	}
	if !claims.Role.Valid() {
		return models.Actor{}, ErrInvalidToken
	}
	return models.Actor{UserID: userID, Name: claims.Name, Role: claims.Role}, nil
}
