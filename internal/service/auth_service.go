package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidPassword rejects a failed parent-gate attempt.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrInvalidSession rejects a missing or expired parent token.
	ErrInvalidSession = errors.New("invalid session")
)

// AuthService implements the parent gate: a single shared password guarding
// the administrative endpoints. Successful logins get a short-lived signed
// token.
type AuthService struct {
	passwordHash []byte
	secret       []byte
	tokenTTL     time.Duration
}

// NewAuthService hashes the configured parent password once at startup.
func NewAuthService(parentPassword string, secret []byte, tokenTTL time.Duration) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(parentPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash parent password: %w", err)
	}
	return &AuthService{
		passwordHash: hash,
		secret:       secret,
		tokenTTL:     tokenTTL,
	}, nil
}

// Login checks the password and issues a parent session token.
func (s *AuthService) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "parent",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks a parent session token.
func (s *AuthService) ValidateToken(tokenString string) error {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))

	token, err := parser.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidSession
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != "parent" {
		return ErrInvalidSession
	}
	return nil
}
