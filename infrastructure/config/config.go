package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the typed runtime configuration, validated once at boot and
// passed by reference to each component's constructor.
type Config struct {
	// Data store (Supabase Postgres).
	DatabaseURL string

	// Secret used to verify Supabase-issued access tokens.
	SupabaseJWTSecret string

	// Ledger payer keypair secret: base58 string or JSON byte array.
	MintAuthorityKey string
	SolanaRPCURL     string
	SolanaCluster    string

	// Optional Redis backend for rate limiting; in-memory windows are
	// used when unset.
	RedisURL string

	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	LogLevel  string
	LogFormat string

	ServerHost  string
	ServerPort  string
	Environment string
}

var (
	ErrMissingDatabaseURL       = errors.New("DATABASE_URL is required")
	ErrMissingSupabaseJWTSecret = errors.New("SUPABASE_JWT_SECRET is required")
	ErrMissingMintAuthorityKey  = errors.New("MINT_AUTHORITY_KEY is required")
	ErrMissingSolanaRPCURL      = errors.New("SOLANA_RPC_URL is required")
)

// Load reads configuration from the environment (and .env when present).
// Missing required values are fatal: the caller is expected to exit.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		SupabaseJWTSecret:    os.Getenv("SUPABASE_JWT_SECRET"),
		MintAuthorityKey:     os.Getenv("MINT_AUTHORITY_KEY"),
		SolanaRPCURL:         os.Getenv("SOLANA_RPC_URL"),
		SolanaCluster:        getEnvOrDefault("SOLANA_CLUSTER", "devnet"),
		RedisURL:             os.Getenv("REDIS_URL"),
		CORSAllowCredentials: getEnvOrDefaultBool("CORS_ALLOW_CREDENTIALS", true),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		ServerHost:           getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
		ServerPort:           getEnvOrDefault("SERVER_PORT", "3001"),
		Environment:          getEnvOrDefault("ENV", "development"),
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.SupabaseJWTSecret == "" {
		return nil, ErrMissingSupabaseJWTSecret
	}
	if cfg.MintAuthorityKey == "" {
		return nil, ErrMissingMintAuthorityKey
	}
	if cfg.SolanaRPCURL == "" {
		return nil, ErrMissingSolanaRPCURL
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
