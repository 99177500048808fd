package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zentale/story-system/internal/core/domain"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestJWTVerifier_SubClaim(t *testing.T) {
	v := NewJWTVerifier("secret")
	signed := signToken(t, "secret", jwt.MapClaims{"sub": "u1"})

	userID, err := v.Verify(context.Background(), signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != "u1" {
		t.Errorf("expected u1, got: %q", userID)
	}
}

func TestJWTVerifier_UserIDFallback(t *testing.T) {
	v := NewJWTVerifier("secret")
	signed := signToken(t, "secret", jwt.MapClaims{"user_id": "u2"})

	userID, err := v.Verify(context.Background(), signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != "u2" {
		t.Errorf("expected u2, got: %q", userID)
	}
}

func TestJWTVerifier_WrongSecret(t *testing.T) {
	v := NewJWTVerifier("secret")
	signed := signToken(t, "other", jwt.MapClaims{"sub": "u1"})

	if _, err := v.Verify(context.Background(), signed); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got: %v", err)
	}
}

func TestJWTVerifier_Expired(t *testing.T) {
	v := NewJWTVerifier("secret")
	signed := signToken(t, "secret", jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	if _, err := v.Verify(context.Background(), signed); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got: %v", err)
	}
}

func TestJWTVerifier_MissingSubject(t *testing.T) {
	v := NewJWTVerifier("secret")
	signed := signToken(t, "secret", jwt.MapClaims{"role": "kid"})

	if _, err := v.Verify(context.Background(), signed); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got: %v", err)
	}
}

func TestJWTVerifier_WrongAlgorithm(t *testing.T) {
	v := NewJWTVerifier("secret")
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "u1"})
	signed, err := tok.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := v.Verify(context.Background(), signed); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got: %v", err)
	}
}
