package service_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/bearer-auth/internal/auth/service"
	"github.com/AlibekovAA/bearer-auth/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/bearer-auth/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/bearer-auth/internal/common/errors"
	"github.com/AlibekovAA/bearer-auth/internal/common/jwtverify"
)

const testTTL = 99 * time.Hour

func setupIssuer(t *testing.T) (*service.TokenIssuer, *jwtverify.Verifier, *clock.MockClock) {
	t.Helper()
	mockClock := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	issuer := service.NewTokenIssuer(testJWTSecret, commoncrypto.NewUUIDGenerator(), testTTL, mockClock)
	verifier := jwtverify.NewVerifier(testJWTSecret, mockClock)
	return issuer, verifier, mockClock
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer, verifier, _ := setupIssuer(t)

	token, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	userID, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if userID != "user-123" {
		t.Errorf("expected user-123, got %s", userID)
	}
}

func TestTokenIssuer_Claims(t *testing.T) {
	issuer, _, mockClock := setupIssuer(t)

	token, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims := &jwtverify.TokenClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if claims.User.ID != "user-123" {
		t.Errorf("expected user.id claim, got %q", claims.User.ID)
	}
	if !claims.IssuedAt.Time.Equal(mockClock.Now()) {
		t.Errorf("expected iat %v, got %v", mockClock.Now(), claims.IssuedAt.Time)
	}
	if !claims.ExpiresAt.Time.Equal(mockClock.Now().Add(testTTL)) {
		t.Errorf("expected exp now+99h, got %v", claims.ExpiresAt.Time)
	}
	if claims.ID == "" {
		t.Error("expected jti to be set")
	}
}

func TestTokenIssuer_IndependentTokens(t *testing.T) {
	issuer, verifier, _ := setupIssuer(t)

	first, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if first == second {
		t.Error("expected distinct tokens for the same user")
	}
	for _, tok := range []string{first, second} {
		if _, err := verifier.Verify(tok); err != nil {
			t.Errorf("expected both tokens valid, got %v", err)
		}
	}
}

func TestTokenIssuer_ExpiredToken(t *testing.T) {
	issuer, verifier, mockClock := setupIssuer(t)

	token, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	mockClock.Advance(testTTL + time.Second)

	_, err = verifier.Verify(token)
	if !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_DifferentSecret(t *testing.T) {
	issuer, _, mockClock := setupIssuer(t)

	token, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := jwtverify.NewVerifier(strings.Repeat("x", 32), mockClock)
	_, err = other.Verify(token)
	if !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_TamperedPayload(t *testing.T) {
	issuer, verifier, _ := setupIssuer(t)

	token, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	otherToken, err := issuer.Issue("user-456")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(token, ".")
	otherParts := strings.Split(otherToken, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	_, err = verifier.Verify(forged)
	if !errors.Is(err, commonerrors.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_IDGeneratorError(t *testing.T) {
	failing := &mockIDGenerator{newIDFunc: func() (string, error) {
		return "", errors.New("entropy exhausted")
	}}
	issuer := service.NewTokenIssuer(testJWTSecret, failing, testTTL, nil)

	if _, err := issuer.Issue("user-123"); err == nil {
		t.Error("expected error when jti generation fails")
	}
}
