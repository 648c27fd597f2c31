package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/AlibekovAA/bearer-auth/internal/auth/repository"
	"github.com/AlibekovAA/bearer-auth/internal/auth/service"
	"github.com/AlibekovAA/bearer-auth/internal/common/clock"
	"github.com/AlibekovAA/bearer-auth/internal/common/config"
	commoncrypto "github.com/AlibekovAA/bearer-auth/internal/common/crypto"
	"github.com/AlibekovAA/bearer-auth/internal/common/jwtverify"
	"github.com/AlibekovAA/bearer-auth/internal/common/logger"
)

type App struct {
	Log   *logger.Logger
	Store repository.CredentialStore
}

type AuthApp struct {
	App
	Config      config.AuthConfig
	HashPool    *commoncrypto.WorkerPool
	Verifier    *jwtverify.Verifier
	AuthService *service.AuthService
}

func NewAuthApp(ctx context.Context) (*AuthApp, error) {
	log, err := initializeLogger("auth")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadAuthConfig()
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		_ = log.Close()
		return nil, err
	}
	if cfg.LogLevel != "" {
		log.SetLevel(cfg.LogLevel)
	}
	log.Infof("auth config loaded: %s", cfg)

	return NewAuthAppWithConfig(ctx, log, cfg)
}

// NewAuthAppWithConfig wires the auth process from an already loaded config.
func NewAuthAppWithConfig(ctx context.Context, log *logger.Logger, cfg config.AuthConfig) (*AuthApp, error) {
	store, err := repository.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	clk := clock.NewRealClock()
	idGenerator := commoncrypto.NewUUIDGenerator()
	hashPool := commoncrypto.NewWorkerPool(cfg.HashWorkers)
	hasher := commoncrypto.NewBcryptHasher(cfg.BcryptCost, hashPool)
	issuer := service.NewTokenIssuer(cfg.JWTSecret, idGenerator, cfg.TokenTTL, clk)
	verifier := jwtverify.NewVerifier(cfg.JWTSecret, clk)

	authService := service.NewAuthService(
		service.AuthServiceDeps{
			Store:       store,
			Hasher:      hasher,
			Issuer:      issuer,
			IDGenerator: idGenerator,
			Clock:       clk,
			Log:         log,
		},
		service.AuthServiceConfig{
			CircuitBreakerThreshold: cfg.CircuitBreakerThreshold,
			CircuitBreakerTimeout:   cfg.CircuitBreakerTimeout,
			CircuitBreakerReset:     cfg.CircuitBreakerReset,
		},
	)

	log.Infof("auth app initialized: store=%s bcrypt_cost=%d hash_workers=%d", cfg.StoreDriver, hasher.Cost(), hashPool.Workers())

	return &AuthApp{
		App: App{
			Log:   log,
			Store: store,
		},
		Config:      cfg,
		HashPool:    hashPool,
		Verifier:    verifier,
		AuthService: authService,
	}, nil
}

// Close releases the store and stops the hashing workers.
func (a *AuthApp) Close() error {
	a.HashPool.Close()
	return a.Store.Close()
}

func initializeLogger(serviceName string) (*logger.Logger, error) {
	return logger.New(os.Getenv("LOG_DIR"), serviceName, os.Getenv("LOG_LEVEL"))
}
