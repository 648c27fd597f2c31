package http

import (
	"net/http"
	"strconv"

	commonerrors "github.com/AlibekovAA/bearer-auth/internal/common/errors"
	"github.com/AlibekovAA/bearer-auth/internal/common/httpmetrics"
	"github.com/AlibekovAA/bearer-auth/internal/common/logger"
	"github.com/AlibekovAA/bearer-auth/internal/observability/metrics"
)

type ErrorHandler struct {
	log *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{log: log}
}

// HandleError writes err as a {"message"} response. Client-facing domain
// errors keep their message; anything internal is logged with its cause and
// answered with the opaque server error text.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	ctx := r.Context()

	status := http.StatusInternalServerError
	message := MessageServerError
	fields := logger.Fields{
		"path":   r.URL.Path,
		"method": r.Method,
	}

	if domainErr, ok := commonerrors.AsDomainError(err); ok {
		metrics.DomainErrorsTotal.WithLabelValues(
			string(domainErr.Category()),
			domainErr.Code(),
			strconv.Itoa(domainErr.HTTPStatus()),
		).Inc()

		fields["error_code"] = domainErr.Code()
		fields["category"] = string(domainErr.Category())

		if domainErr.HTTPStatus() < http.StatusInternalServerError {
			status = domainErr.HTTPStatus()
			message = domainErr.Message()
		}
	}

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	if status >= http.StatusInternalServerError {
		fields["action"] = "internal_error"
		h.log.WithFields(ctx, fields).Errorf("request failed: %v", err)
	} else if h.log.ShouldLog(logger.DEBUG) {
		fields["action"] = "domain_error"
		h.log.WithFields(ctx, fields).Debugf("domain error: %v", err)
	}

	WriteMessage(w, status, message)
}
