package jwtverify

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/bearer-auth/internal/common/clock"
	commonerrors "github.com/AlibekovAA/bearer-auth/internal/common/errors"
	"github.com/AlibekovAA/bearer-auth/internal/common/logger"
)

const testSecret = "test-secret-key-for-jwt-signing-32b"

type stubVerifier struct {
	userID string
	err    error
	calls  int
}

func (s *stubVerifier) Verify(string) (string, error) {
	s.calls++
	return s.userID, s.err
}

func serveGate(t *testing.T, verifier TokenVerifier, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	log := logger.NewWithWriter(io.Discard, "test", "error")

	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		claims, ok := FromContext(r.Context())
		if !ok || claims.UserID == "" {
			t.Error("expected claims in context")
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/users", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	Middleware(verifier, log)(next).ServeHTTP(rec, req)
	return rec, reached
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body.Message
}

func TestMiddleware_MissingToken(t *testing.T) {
	for _, header := range []string{"", "Basic abc", "Bearer", "Bearer ", "bearer token"} {
		t.Run(header, func(t *testing.T) {
			verifier := &stubVerifier{userID: "user-1"}
			rec, reached := serveGate(t, verifier, header)

			if reached {
				t.Error("handler must not run")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
			if msg := messageOf(t, rec); msg != MessageMissingToken {
				t.Errorf("unexpected message %q", msg)
			}
			if verifier.calls != 0 {
				t.Error("verifier must not be called without a token")
			}
		})
	}
}

func TestMiddleware_InvalidToken(t *testing.T) {
	verifier := &stubVerifier{err: commonerrors.ErrInvalidToken}
	rec, reached := serveGate(t, verifier, "Bearer garbage")

	if reached {
		t.Error("handler must not run")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if msg := messageOf(t, rec); msg != MessageInvalidToken {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestMiddleware_LogsRejectionCause(t *testing.T) {
	testCases := []struct {
		name     string
		header   string
		verifier *stubVerifier
		action   string
		code     string
	}{
		{"missing", "", &stubVerifier{userID: "user-1"}, "action=jwt_missing_token", "error_code=MISSING_TOKEN"},
		{"invalid", "Bearer garbage", &stubVerifier{err: commonerrors.ErrInvalidToken}, "action=jwt_invalid_token", "error_code=INVALID_TOKEN"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.NewWithWriter(&buf, "test", "info")

			req := httptest.NewRequest(http.MethodGet, "/api/auth/users", nil)
			req.Header.Set("X-Real-IP", "203.0.113.7")
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			Middleware(tc.verifier, log)(http.NotFoundHandler()).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
			out := buf.String()
			for _, want := range []string{tc.action, tc.code, "client_ip=203.0.113.7"} {
				if !strings.Contains(out, want) {
					t.Errorf("expected log to contain %q, got %q", want, out)
				}
			}
		})
	}
}

func TestMiddleware_ValidToken(t *testing.T) {
	verifier := &stubVerifier{userID: "user-1"}
	rec, reached := serveGate(t, verifier, "Bearer abc.def.ghi")

	if !reached {
		t.Fatal("expected handler to run")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestVerifier_Rejections(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	verifier := NewVerifier(testSecret, clock.NewMockClock(now))

	valid := TokenClaims{
		User: UserClaim{ID: "user-1"},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	noExpiry := valid
	noExpiry.ExpiresAt = nil
	noUser := valid
	noUser.User = UserClaim{}

	testCases := []struct {
		name  string
		token string
	}{
		{"malformed", "not-a-jwt"},
		{"none algorithm", signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid)},
		{"hs512", signToken(t, jwt.SigningMethodHS512, []byte(testSecret), valid)},
		{"missing exp", signToken(t, SigningMethod, []byte(testSecret), noExpiry)},
		{"missing user", signToken(t, SigningMethod, []byte(testSecret), noUser)},
		{"wrong secret", signToken(t, SigningMethod, []byte("another-secret-another-secret-!!"), valid)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := verifier.Verify(tc.token)
			if !errors.Is(err, commonerrors.ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}

	userID, err := verifier.Verify(signToken(t, SigningMethod, []byte(testSecret), valid))
	if err != nil || userID != "user-1" {
		t.Errorf("expected user-1, got %q, %v", userID, err)
	}
}
