package http

import (
	"net/http"

	"github.com/AlibekovAA/bearer-auth/internal/common/constants"
	"github.com/AlibekovAA/bearer-auth/internal/common/httpmetrics"
	"github.com/AlibekovAA/bearer-auth/internal/common/logger"
)

type BaseOptions struct {
	AllowedOrigins []string
	MaxRequestSize int64
}

func BuildBaseHandler(appName string, log *logger.Logger, opts BaseOptions, handler http.Handler) http.Handler {
	if opts.MaxRequestSize <= 0 {
		opts.MaxRequestSize = constants.DefaultMaxRequestSize
	}

	metrics := httpmetrics.New(appName)
	recovery := RecoveryMiddleware(log)
	corsMiddleware := CORSMiddleware(opts.AllowedOrigins)
	maxRequestSize := MaxRequestSizeMiddleware(opts.MaxRequestSize)

	return SecurityHeadersMiddleware(corsMiddleware(recovery(TraceIDMiddleware(maxRequestSize(metrics.Wrap(handler))))))
}
