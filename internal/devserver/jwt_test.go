package devserver

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("s3cret")
	token, err := GenerateToken(secret, "wirechat", "user-1", "a@b.c", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateToken(secret, "wirechat", token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Email != "a@b.c" || claims.Subject != "user-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestTokenRejected(t *testing.T) {
	secret := []byte("s3cret")
	expired, _ := GenerateToken(secret, "", "u", "", -time.Minute)
	wrongIssuer, _ := GenerateToken(secret, "other", "u", "", time.Hour)
	otherKey, _ := GenerateToken([]byte("nope"), "", "u", "", time.Hour)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"expired":      expired,
		"wrong issuer": wrongIssuer,
		"wrong key":    otherKey,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			issuer := ""
			if name == "wrong issuer" {
				issuer = "wirechat"
			}
			if _, err := ValidateToken(secret, issuer, token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
