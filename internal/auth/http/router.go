package http

import (
	"errors"
	"net/http"

	"github.com/AlibekovAA/bearer-auth/internal/auth/domain"
	"github.com/AlibekovAA/bearer-auth/internal/auth/service"
	"github.com/AlibekovAA/bearer-auth/internal/common/config"
	commonhttp "github.com/AlibekovAA/bearer-auth/internal/common/http"
	"github.com/AlibekovAA/bearer-auth/internal/common/jwtverify"
	"github.com/AlibekovAA/bearer-auth/internal/common/logger"
)

const (
	MessageSignupSuccess = "User registered successfully"
	MessageServerRunning = "Server is running"
	MessageInvalidBody   = "Invalid request body"
)

type tokenResponse struct {
	Token string `json:"token"`
}

type validationResponse struct {
	Errors service.ValidationErrors `json:"errors"`
}

type Handler struct {
	auth         *service.AuthService
	errorHandler *commonhttp.ErrorHandler
	log          *logger.Logger
}

// NewHandler mounts the auth routes under /api/auth together with the
// liveness banner and health check.
func NewHandler(auth *service.AuthService, cfg config.AuthConfig, verifier jwtverify.TokenVerifier, log *logger.Logger, deps ...commonhttp.Pinger) http.Handler {
	h := &Handler{
		auth:         auth,
		errorHandler: commonhttp.NewErrorHandler(log),
		log:          log,
	}

	withTimeout := commonhttp.WithTimeout(cfg.RequestTimeout)
	gate := jwtverify.Middleware(verifier, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/", commonhttp.BannerHandler(MessageServerRunning))
	mux.HandleFunc("/health", commonhttp.HealthHandler(log, deps...))
	mux.HandleFunc("/api/auth/signup", commonhttp.RequireMethod(http.MethodPost)(withTimeout(h.signup)))
	mux.HandleFunc("/api/auth/signin", commonhttp.RequireMethod(http.MethodPost)(withTimeout(h.signin)))
	// The gate runs before the method check: an unauthenticated request gets
	// 401 whatever its method.
	mux.Handle("/api/auth/users", gate(commonhttp.RequireMethod(http.MethodGet)(withTimeout(h.listUsers))))
	return mux
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.auth.Signup(r.Context(), req); err != nil {
		if ve, ok := service.AsValidationErrors(err); ok {
			commonhttp.WriteJSON(w, http.StatusBadRequest, validationResponse{Errors: ve})
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteMessage(w, http.StatusCreated, MessageSignupSuccess)
}

func (h *Handler) signin(w http.ResponseWriter, r *http.Request) {
	var req domain.SigninRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, err := h.auth.Signin(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, users)
}

// decode treats an empty body as a request with every field missing, so the
// flow reports its usual field errors.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := commonhttp.DecodeJSON(r, v)
	if err == nil || errors.Is(err, commonhttp.ErrEmptyBody) {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		commonhttp.WriteMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}

	h.log.WithFields(r.Context(), logger.Fields{
		"path":   r.URL.Path,
		"action": "invalid_json",
	}).Warnf("request rejected: invalid json: %v", err)
	commonhttp.WriteMessage(w, http.StatusBadRequest, MessageInvalidBody)
	return false
}
