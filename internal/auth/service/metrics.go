package service

import (
	"github.com/AlibekovAA/bearer-auth/internal/observability/metrics"
)

const (
	outcomeSuccess            = "success"
	outcomeValidationFailed   = "validation_failed"
	outcomeDuplicate          = "duplicate"
	outcomeMissingField       = "missing_field"
	outcomeInvalidCredentials = "invalid_credentials"
	outcomeError              = "error"
)

func incrementAccessTokensIssued() {
	metrics.AccessTokensIssued.Inc()
}

func recordSignup(outcome string) {
	metrics.SignupsTotal.WithLabelValues(outcome).Inc()
}

func recordSignin(outcome string) {
	metrics.SigninsTotal.WithLabelValues(outcome).Inc()
}
