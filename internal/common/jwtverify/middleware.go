package jwtverify

import (
	"context"
	"net/http"
	"strings"

	commonerrors "github.com/AlibekovAA/bearer-auth/internal/common/errors"
	commonhttp "github.com/AlibekovAA/bearer-auth/internal/common/http"
	"github.com/AlibekovAA/bearer-auth/internal/common/logger"
	"github.com/AlibekovAA/bearer-auth/internal/observability/metrics"
)

const (
	MessageMissingToken = "No token , authorization failed"
	MessageInvalidToken = "Token is not valid"

	bearerPrefix = "Bearer "
)

type TokenVerifier interface {
	Verify(tokenString string) (string, error)
}

// Claims is the identity attached to a request that passed the gate.
type Claims struct {
	UserID string
}

type contextKey string

const claimsKey contextKey = "jwt_claims"

// Middleware gates next behind a valid bearer token. It performs no store
// lookups; the token's own claims are trusted once verified.
func Middleware(verifier TokenVerifier, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				metrics.JWTValidationsFailed.WithLabelValues("missing").Inc()
				reject(w, r, log, "jwt_missing_token", commonerrors.ErrMissingToken, MessageMissingToken)
				return
			}

			userID, err := verifier.Verify(tokenString)
			if err != nil {
				reject(w, r, log, "jwt_invalid_token", err, MessageInvalidToken)
				return
			}

			ctx := WithClaims(r.Context(), Claims{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, log *logger.Logger, action string, err error, message string) {
	fields := logger.Fields{
		"path":      r.URL.Path,
		"client_ip": commonhttp.GetClientIP(r),
		"action":    action,
	}
	if de, ok := commonerrors.AsDomainError(err); ok {
		fields["error_code"] = de.Code()
	}
	log.WithFields(r.Context(), fields).Warnf("jwt auth failed: %v", err)
	commonhttp.WriteMessage(w, http.StatusUnauthorized, message)
}

func WithClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func FromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", false
	}
	return token, true
}
