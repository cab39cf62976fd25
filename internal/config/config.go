// Package config resolves node settings from the environment, an optional
// .env file and Secrets Manager.
package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/cyphera/remote-accounts/internal/helpers"
	"github.com/cyphera/remote-accounts/internal/middleware"
	"github.com/joho/godotenv"
)

// SecretResolver fetches a secret by the ARN held in arnEnvVar, falling back
// to the plain value in fallbackEnvVar.
type SecretResolver interface {
	GetSecretString(ctx context.Context, arnEnvVar, fallbackEnvVar string) (string, error)
	GetSecretJSON(ctx context.Context, arnEnvVar, fallbackEnvVar string, target interface{}) error
}

// Config holds the settings of a router node.
type Config struct {
	Stage string
	Port  string

	// DatabaseURL is empty when results are kept in memory.
	DatabaseURL     string
	ResultsQueueURL string
	GenesisFile     string

	// AdminAPIKeyHash is the bcrypt hash guarding the admin routes. Empty
	// disables them.
	AdminAPIKeyHash string

	CORS            middleware.CORSConfig
	RateLimitRPS    int
	RateLimitBurst  int
	ShutdownTimeout time.Duration
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string { return ":" + c.Port }

// LoadDotEnv reads .env when present. A missing file is not an error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// Stage returns the validated STAGE, defaulting to local.
func Stage(getenv func(string) string) (string, error) {
	stage := getenv("STAGE")
	if stage == "" {
		stage = helpers.StageLocal
	}
	if !helpers.IsValidStage(stage) {
		return "", fmt.Errorf("invalid STAGE %q: must be one of %s, %s, %s",
			stage, helpers.StageProd, helpers.StageDev, helpers.StageLocal)
	}
	return stage, nil
}

// Load builds the node configuration. Deployed stages assemble the database
// DSN from the RDS secret; local runs read DATABASE_URL (or its ARN).
func Load(ctx context.Context, getenv func(string) string, secrets SecretResolver) (*Config, error) {
	stage, err := Stage(getenv)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Stage:           stage,
		Port:            envOr(getenv, "PORT", "8000"),
		ResultsQueueURL: getenv("RESULTS_QUEUE_URL"),
		GenesisFile:     getenv("GENESIS_FILE"),
		CORS: middleware.CORSConfig{
			AllowedOrigins: getenv("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: getenv("CORS_ALLOWED_METHODS"),
			AllowedHeaders: getenv("CORS_ALLOWED_HEADERS"),
			ExposedHeaders: getenv("CORS_EXPOSED_HEADERS"),
		},
	}

	if cfg.CORS.AllowCredentials, err = envBool(getenv, "CORS_ALLOW_CREDENTIALS", false); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = envInt(getenv, "RATE_LIMIT_RPS", 50); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = envInt(getenv, "RATE_LIMIT_BURST", 100); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = envDuration(getenv, "SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL, err = databaseURL(ctx, stage, getenv, secrets); err != nil {
		return nil, err
	}
	if hash, err := secrets.GetSecretString(ctx, "ADMIN_API_KEY_HASH_ARN", "ADMIN_API_KEY_HASH"); err == nil {
		cfg.AdminAPIKeyHash = hash
	}
	if !helpers.PolicyFor(stage).BuiltinGenesis && cfg.GenesisFile == "" {
		return nil, fmt.Errorf("GENESIS_FILE is required in stage %s", stage)
	}
	return cfg, nil
}

type rdsSecret struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func databaseURL(ctx context.Context, stage string, getenv func(string) string, secrets SecretResolver) (string, error) {
	if !helpers.PolicyFor(stage).DatabaseFromRDS {
		dsn, err := secrets.GetSecretString(ctx, "DATABASE_URL_ARN", "DATABASE_URL")
		if err != nil {
			return "", nil
		}
		return dsn, nil
	}

	host, name := getenv("DB_HOST"), getenv("DB_NAME")
	if host == "" || name == "" || getenv("RDS_SECRET_ARN") == "" {
		return "", fmt.Errorf("missing DB_HOST, DB_NAME or RDS_SECRET_ARN for stage %s", stage)
	}
	var secret rdsSecret
	if err := secrets.GetSecretJSON(ctx, "RDS_SECRET_ARN", "", &secret); err != nil {
		return "", fmt.Errorf("failed to read RDS secret: %w", err)
	}
	if secret.Username == "" || secret.Password == "" {
		return "", fmt.Errorf("RDS secret has no username or password")
	}
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		url.QueryEscape(secret.Username), url.QueryEscape(secret.Password),
		host, name, envOr(getenv, "DB_SSLMODE", "require")), nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(getenv func(string) string, key string, fallback int) (int, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}

func envBool(getenv func(string) string, key string, fallback bool) (bool, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, v)
	}
	return b, nil
}

func envDuration(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}
