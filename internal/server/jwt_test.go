package server

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	signer := NewTokenSigner("secret", time.Minute)
	token, err := signer.Generate("s7")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	id, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id != "s7" {
		t.Fatalf("session id: got %q", id)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenSigner("one", time.Minute).Generate("s1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewTokenSigner("two", time.Minute).Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	signer := NewTokenSigner("secret", time.Minute)
	issued := time.Now().Add(-2 * time.Minute)
	signer.now = func() time.Time { return issued }
	token, err := signer.Generate("s1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	signer.now = time.Now
	if _, err := signer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token should be rejected, got %v", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	if _, err := NewTokenSigner("secret", time.Minute).Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("want ErrInvalidToken, got %v", err)
	}
}
