package jwtverify

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/bearer-auth/internal/common/clock"
	commonerrors "github.com/AlibekovAA/bearer-auth/internal/common/errors"
	"github.com/AlibekovAA/bearer-auth/internal/observability/metrics"
)

// SigningMethod is the only algorithm accepted for access tokens.
var SigningMethod = jwt.SigningMethodHS256

type UserClaim struct {
	ID string `json:"id"`
}

// TokenClaims is the signed payload: {"user":{"id":...}} plus the registered
// iat/exp/jti fields.
type TokenClaims struct {
	User UserClaim `json:"user"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	clock  clock.Clock
}

func NewVerifier(secret string, clk clock.Clock) *Verifier {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &Verifier{
		secret: []byte(secret),
		clock:  clk,
	}
}

// Verify checks signature, algorithm and expiry and returns the subject user
// id. Every rejection is reported as ErrInvalidToken; the cause is attached
// for server-side logging only.
func (v *Verifier) Verify(tokenString string) (string, error) {
	metrics.JWTValidationsTotal.Inc()

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (any, error) {
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{SigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.clock.Now),
	)
	if err != nil {
		metrics.JWTValidationsFailed.WithLabelValues(failureReason(err)).Inc()
		return "", commonerrors.ErrInvalidToken.WithCause(err)
	}
	if !parsed.Valid {
		metrics.JWTValidationsFailed.WithLabelValues("invalid").Inc()
		return "", commonerrors.ErrInvalidToken
	}

	if claims.User.ID == "" {
		metrics.JWTValidationsFailed.WithLabelValues("claims").Inc()
		return "", commonerrors.ErrInvalidToken.WithCause(commonerrors.ErrMissingTokenClaims)
	}

	return claims.User.ID, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "signature"
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "signing_method"
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return "expired"
	default:
		return "invalid"
	}
}
