package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/AlibekovAA/bearer-auth/internal/auth/domain"
	"github.com/AlibekovAA/bearer-auth/internal/auth/repository"
	"github.com/AlibekovAA/bearer-auth/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/bearer-auth/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/bearer-auth/internal/common/errors"
	"github.com/AlibekovAA/bearer-auth/internal/common/logger"
	"github.com/AlibekovAA/bearer-auth/internal/common/resilience"
)

type TokenSigner interface {
	Issue(userID domain.UserID) (string, error)
}

type AuthService struct {
	store       repository.CredentialStore
	validator   *CredentialValidator
	hasher      commoncrypto.PasswordHasher
	issuer      TokenSigner
	idGenerator commoncrypto.IDGenerator
	breaker     *resilience.CircuitBreaker
	clock       clock.Clock
	log         *logger.Logger

	decoyOnce sync.Once
	decoyHash string
}

// decoyPassword is hashed once at the configured cost so that a signin for an
// unknown email still pays for one bcrypt comparison.
const decoyPassword = "decoy-password-never-assigned"

type AuthServiceDeps struct {
	Store       repository.CredentialStore
	Hasher      commoncrypto.PasswordHasher
	Issuer      TokenSigner
	IDGenerator commoncrypto.IDGenerator
	Clock       clock.Clock
	Log         *logger.Logger
}

type AuthServiceConfig struct {
	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration
}

func NewAuthService(deps AuthServiceDeps, cfg AuthServiceConfig) *AuthService {
	clk := deps.Clock
	if clk == nil {
		clk = clock.NewRealClock()
	}

	var breaker *resilience.CircuitBreaker
	if cfg.CircuitBreakerThreshold > 0 {
		breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Threshold:  int32(cfg.CircuitBreakerThreshold),
			Timeout:    cfg.CircuitBreakerTimeout,
			ResetAfter: cfg.CircuitBreakerReset,
			Name:       "credential_store",
			ExpectedErrors: []error{
				commonerrors.ErrUserNotFound,
				commonerrors.ErrEmailAlreadyExists,
			},
			Clock:  clk,
			Logger: deps.Log,
		})
	}

	return &AuthService{
		store:       deps.Store,
		validator:   NewCredentialValidator(),
		hasher:      deps.Hasher,
		issuer:      deps.Issuer,
		idGenerator: deps.IDGenerator,
		breaker:     breaker,
		clock:       clk,
		log:         deps.Log,
	}
}

// Signup validates req, rejects a taken email and stores a new credential
// with a bcrypt hash of the password.
func (s *AuthService) Signup(ctx context.Context, req domain.SignupRequest) error {
	input, err := s.validator.Validate(req)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "signup_validation_failed",
		}).Warnf("signup validation failed: %v", err)
		recordSignup(outcomeValidationFailed)
		return err
	}

	s.log.WithFields(ctx, logger.Fields{
		"email":  input.Email,
		"action": "signup_attempt",
	}).Info("signup attempt")

	_, err = s.findByEmail(ctx, input.Email)
	switch {
	case err == nil:
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "signup_email_exists",
		}).Warn("signup failed: already exists")
		recordSignup(outcomeDuplicate)
		return ErrDuplicateAccount
	case !errors.Is(err, commonerrors.ErrUserNotFound):
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "signup_lookup_failed",
		}).Errorf("signup failed: lookup error: %v", err)
		recordSignup(outcomeError)
		return newInternalError(err)
	}

	hash, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "signup_hash_failed",
		}).Errorf("signup failed: password hash error: %v", err)
		recordSignup(outcomeError)
		return newInternalError(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "signup_id_generation_failed",
		}).Errorf("signup failed: id generation error: %v", err)
		recordSignup(outcomeError)
		return newInternalError(err)
	}

	user := domain.User{
		ID:           domain.UserID(id),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now().UTC(),
	}

	err = s.call(ctx, func(ctx context.Context) error {
		return s.store.Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, commonerrors.ErrEmailAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"email":  input.Email,
				"action": "signup_email_exists",
			}).Warn("signup failed: lost race on unique email")
			recordSignup(outcomeDuplicate)
			return ErrDuplicateAccount
		}
		s.log.WithFields(ctx, logger.Fields{
			"email":  input.Email,
			"action": "signup_create_failed",
		}).Errorf("signup failed: %v", err)
		recordSignup(outcomeError)
		return newInternalError(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"email":   user.Email,
		"user_id": string(user.ID),
		"action":  "signup_success",
	}).Info("signup success")
	recordSignup(outcomeSuccess)

	return nil
}

// Signin returns an access token when the password matches the stored hash.
// Unknown email and wrong password produce the same ErrInvalidCredentials.
func (s *AuthService) Signin(ctx context.Context, req domain.SigninRequest) (string, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		s.log.WithFields(ctx, logger.Fields{
			"action": "signin_missing_field",
		}).Warn("signin failed: missing field")
		recordSignin(outcomeMissingField)
		return "", ErrMissingField
	}

	s.log.WithFields(ctx, logger.Fields{
		"email":  email,
		"action": "signin_attempt",
	}).Info("signin attempt")

	user, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"email":  email,
				"action": "signin_user_not_found",
			}).Warn("signin failed: invalid credentials")
			s.compareDecoy(ctx, req.Password)
			recordSignin(outcomeInvalidCredentials)
			return "", ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "signin_lookup_failed",
		}).Errorf("signin failed: lookup error: %v", err)
		recordSignin(outcomeError)
		return "", newInternalError(err)
	}

	ok, err := s.hasher.Compare(ctx, user.PasswordHash, req.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":   email,
			"user_id": string(user.ID),
			"action":  "signin_compare_failed",
		}).Errorf("signin failed: password compare error: %v", err)
		recordSignin(outcomeError)
		return "", newInternalError(err)
	}
	if !ok {
		s.log.WithFields(ctx, logger.Fields{
			"email":   email,
			"user_id": string(user.ID),
			"action":  "signin_invalid_password",
		}).Warn("signin failed: invalid credentials")
		recordSignin(outcomeInvalidCredentials)
		return "", ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "signin_token_issue_failed",
		}).Errorf("signin failed: token issue error: %v", err)
		recordSignin(outcomeError)
		return "", newInternalError(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(user.ID),
		"action":  "signin_success",
	}).Info("signin success")
	recordSignin(outcomeSuccess)

	return token, nil
}

// ListUsers returns the public projection of every stored user.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.Summary, error) {
	var summaries []domain.Summary
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		summaries, err = s.store.ListSummaries(ctx)
		return err
	})
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "list_users_failed",
		}).Errorf("list users failed: %v", err)
		return nil, newInternalError(err)
	}
	if summaries == nil {
		summaries = []domain.Summary{}
	}
	return summaries, nil
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.store.FindByEmail(ctx, strings.ToLower(email))
		return err
	})
	return user, err
}

func (s *AuthService) call(ctx context.Context, fn func(context.Context) error) error {
	if s.breaker == nil {
		return fn(ctx)
	}
	return s.breaker.Call(ctx, fn)
}

func (s *AuthService) compareDecoy(ctx context.Context, password string) {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash(context.WithoutCancel(ctx), decoyPassword)
		if err != nil {
			s.log.WithFields(ctx, logger.Fields{
				"action": "signin_decoy_hash_failed",
			}).Errorf("failed to prepare decoy hash: %v", err)
			return
		}
		s.decoyHash = hash
	})
	if s.decoyHash == "" {
		return
	}
	_, _ = s.hasher.Compare(ctx, s.decoyHash, password)
}
