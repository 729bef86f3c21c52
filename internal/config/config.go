package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// NetworkOffline serves the seed links from an in-process source instead of
// reading the chain.
const NetworkOffline = "offline"

// Storage backends for support progress.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// TLS/mTLS
	TLSEnabled  bool
	TLSCertFile string
	TLSKeyFile  string
	TLSCAFile   string // CA for verifying client certs (mTLS)

	// Session
	SessionSecret string // Used for encrypting the device cookie (min 32 chars)

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Rate limiting
	RateLimitMax int // requests per minute per IP

	// Storage
	StorageBackend string // memory, redis or postgres
	DatabaseURL    string
	RedisURL       string

	// Chain
	NetworksFile string // env: NETWORKS_FILE, default: "networks.yaml"
	Network      string // network name from the networks file, or NetworkOffline
	RPCURL       string // overrides the network's rpc_url
	WSURL        string // overrides the network's ws_url
	ContractAddr string // overrides the network's link contract
	Lookback     uint64 // blocks behind head scanned for recent shares

	// Feed
	BatchSize           int
	FeedRefreshInterval time.Duration
	FeedRefreshTimeout  time.Duration
	LiveRebindDelay     time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load() // optional

	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		TLSEnabled:  getEnv("TLS_ENABLED", "") != "",
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),
		TLSCAFile:   getEnv("TLS_CA_FILE", ""),

		SessionSecret: getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		CORSOrigins:   getEnv("CORS_ORIGINS", ""),
		RateLimitMax:  getEnvInt("RATE_LIMIT_MAX", 100),

		StorageBackend: getEnv("STORAGE_BACKEND", StorageMemory),
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/engagehub?sslmode=disable"),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),

		NetworksFile: getEnv("NETWORKS_FILE", "networks.yaml"),
		Network:      getEnv("NETWORK", "celo"),
		RPCURL:       getEnv("RPC_URL", ""),
		WSURL:        getEnv("WS_URL", ""),
		ContractAddr: getEnv("LINK_CONTRACT", ""),
		Lookback:     uint64(getEnvInt("LOOKBACK_BLOCKS", 50000)),

		BatchSize:           getEnvInt("FEED_BATCH_SIZE", 40),
		FeedRefreshInterval: getEnvDuration("FEED_REFRESH_INTERVAL", 30*time.Second),
		FeedRefreshTimeout:  getEnvDuration("FEED_REFRESH_TIMEOUT", 15*time.Second),
		LiveRebindDelay:     getEnvDuration("LIVE_REBIND_DELAY", 5*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		slog.Warn("ignoring invalid integer setting", "key", key, "value", value)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn("ignoring invalid duration setting", "key", key, "value", value)
		return fallback
	}
	return d
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsOffline reports whether the chain is disabled.
func (c *Config) IsOffline() bool {
	return c.Network == NetworkOffline
}

// IsMTLSEnabled returns true if mTLS is configured with a CA file.
func (c *Config) IsMTLSEnabled() bool {
	return c.TLSEnabled && c.TLSCAFile != ""
}
