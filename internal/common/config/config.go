package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/AlibekovAA/bearer-auth/internal/common/constants"
	commonerrors "github.com/AlibekovAA/bearer-auth/internal/common/errors"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

type AuthConfig struct {
	HTTPPort       string
	StoreDriver    string
	DatabaseURL    string
	SQLitePath     string
	RunMigrations  bool
	JWTSecret      string
	TokenTTL       time.Duration
	RequestTimeout time.Duration
	BcryptCost     int
	HashWorkers    int
	AllowedOrigins []string

	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration

	LogDir   string
	LogLevel string
}

// String omits the signing secret and database credentials.
func (c AuthConfig) String() string {
	return fmt.Sprintf(
		"port=%s store=%s token_ttl=%s request_timeout=%s bcrypt_cost=%d hash_workers=%d origins=%s",
		c.HTTPPort,
		c.StoreDriver,
		c.TokenTTL,
		c.RequestTimeout,
		c.BcryptCost,
		c.HashWorkers,
		strings.Join(c.AllowedOrigins, ","),
	)
}

// LoadEnvFile loads KEY=VALUE pairs from path without overriding variables
// already present in the environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func LoadAuthConfig() (AuthConfig, error) {
	if err := LoadEnvFile(os.Getenv("ENV_FILE")); err != nil {
		return AuthConfig{}, err
	}

	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return AuthConfig{}, err
	}

	if err := validateJWTSecret(jwtSecret); err != nil {
		return AuthConfig{}, err
	}

	cfg := AuthConfig{
		HTTPPort:       getEnv("AUTH_HTTP_PORT", getEnv("PORT", constants.DefaultAuthHTTPPort)),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", constants.DefaultStoreDriver)),
		SQLitePath:     getEnv("SQLITE_PATH", constants.DefaultSQLitePath),
		JWTSecret:      jwtSecret,
		AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		LogDir:         os.Getenv("LOG_DIR"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	var errs []error
	cfg.RunMigrations, err = getBoolEnv("DB_RUN_MIGRATIONS", true)
	errs = append(errs, err)
	cfg.TokenTTL, err = getDurationEnv("TOKEN_TTL", constants.DefaultTokenTTL)
	errs = append(errs, err)
	cfg.RequestTimeout, err = getDurationEnv("AUTH_REQUEST_TIMEOUT", constants.DefaultAuthRequestTimeout)
	errs = append(errs, err)
	cfg.BcryptCost, err = getIntEnv("BCRYPT_COST", constants.DefaultBcryptCost)
	errs = append(errs, err)
	cfg.HashWorkers, err = getIntEnv("HASH_WORKERS", 0)
	errs = append(errs, err)
	cfg.CircuitBreakerThreshold, err = getIntEnv("CIRCUIT_BREAKER_THRESHOLD", constants.DefaultCircuitBreakerThreshold)
	errs = append(errs, err)
	cfg.CircuitBreakerTimeout, err = getDurationEnv("CIRCUIT_BREAKER_TIMEOUT", constants.DefaultCircuitBreakerTimeout)
	errs = append(errs, err)
	cfg.CircuitBreakerReset, err = getDurationEnv("CIRCUIT_BREAKER_RESET", constants.DefaultCircuitBreakerReset)
	errs = append(errs, err)
	if err := errors.Join(errs...); err != nil {
		return AuthConfig{}, err
	}

	if cfg.TokenTTL <= 0 {
		return AuthConfig{}, commonerrors.ErrInvalidConfigValue.WithCause(fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL))
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		cfg.DatabaseURL, err = mustEnv("DATABASE_URL")
		if err != nil {
			return AuthConfig{}, err
		}
	case StoreDriverSQLite, StoreDriverMemory:
	default:
		return AuthConfig{}, commonerrors.ErrInvalidConfigValue.WithCause(fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver))
	}

	return cfg, nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return commonerrors.ErrInvalidJWTSecret.WithCause(fmt.Errorf("got %d bytes", len(secret)))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", commonerrors.ErrMissingRequiredEnv.WithCause(errors.New(key))
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, commonerrors.ErrInvalidConfigValue.WithCause(fmt.Errorf("%s: %w", key, err))
	}
	return d, nil
}

func getIntEnv(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback, commonerrors.ErrInvalidConfigValue.WithCause(fmt.Errorf("%s: %w", key, err))
	}
	return i, nil
}

func getBoolEnv(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, commonerrors.ErrInvalidConfigValue.WithCause(fmt.Errorf("%s: %w", key, err))
	}
	return b, nil
}

func getListEnv(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
