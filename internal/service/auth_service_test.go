package service

import (
	"errors"
	"testing"
	"time"
)

func TestLoginAndValidate(t *testing.T) {
	svc, err := NewAuthService("1234", []byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatalf("NewAuthService() error = %v", err)
	}

	token, err := svc.Login("1234")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Fatal("Login() returned an empty token")
	}

	if err := svc.ValidateToken(token); err != nil {
		t.Errorf("ValidateToken() error = %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, err := NewAuthService("1234", []byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login("4321"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("Login() error = %v, want ErrInvalidPassword", err)
	}
}

func TestValidateRejectsBadTokens(t *testing.T) {
	svc, err := NewAuthService("1234", []byte("test-secret"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{"garbage", func(t *testing.T) string { return "not-a-token" }},
		{"empty", func(t *testing.T) string { return "" }},
		{"wrong secret", func(t *testing.T) string {
			other, err := NewAuthService("1234", []byte("other-secret"), time.Hour)
			if err != nil {
				t.Fatal(err)
			}
			token, err := other.Login("1234")
			if err != nil {
				t.Fatal(err)
			}
			return token
		}},
		{"expired", func(t *testing.T) string {
			expired, err := NewAuthService("1234", []byte("test-secret"), -time.Minute)
			if err != nil {
				t.Fatal(err)
			}
			token, err := expired.Login("1234")
			if err != nil {
				t.Fatal(err)
			}
			return token
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.ValidateToken(tt.token(t)); !errors.Is(err, ErrInvalidSession) {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidSession", err)
			}
		})
	}
}
