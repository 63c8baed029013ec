package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration for the moderation backend.
type Server struct {
	Addr          string
	DatabaseURL   string
	DirectoryMode string // "postgres" or "memory"

	// Storage collaborator (asset deletion on rejection)
	StorageEndpoint string
	StorageKey      string

	// Durable client-side session token slot
	TokenFile string

	// Dashboard origin allowed by CORS
	AllowedOrigin string

	// Rate limit for the auth endpoints (requests per minute per IP)
	AuthRateLimit int

	// Background cache refresh cadence
	PendingRefresh  time.Duration
	StatsRefresh    time.Duration
	ActivityRefresh time.Duration

	// Signing key for the in-memory directory's session tokens (dev only)
	SessionSigningKey string
}

// Default refresh cadence matches the dashboard contract: the pending queue
// refetches every 30 seconds, stats and activity every minute.
var (
	DefaultPendingRefresh  = 30 * time.Second
	DefaultStatsRefresh    = 60 * time.Second
	DefaultActivityRefresh = 60 * time.Second
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("NYUMBA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	mode := os.Getenv("NYUMBA_DIRECTORY_MODE")
	if mode == "" {
		mode = "postgres"
	}

	tokenFile := os.Getenv("NYUMBA_TOKEN_FILE")
	if tokenFile == "" {
		tokenFile = ".nyumba/session_token"
	}

	origin := os.Getenv("NYUMBA_ALLOWED_ORIGIN")
	if origin == "" {
		origin = "http://localhost:3000"
	}

	rate := 30
	if v := os.Getenv("NYUMBA_AUTH_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			rate = n
		}
	}

	signingKey := os.Getenv("NYUMBA_SESSION_SIGNING_KEY")
	if signingKey == "" {
		// Development default; the postgres directory never uses it.
		signingKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:              addr,
		DatabaseURL:       os.Getenv("NYUMBA_DATABASE_URL"),
		DirectoryMode:     mode,
		StorageEndpoint:   os.Getenv("NYUMBA_STORAGE_ENDPOINT"),
		StorageKey:        os.Getenv("NYUMBA_STORAGE_KEY"),
		TokenFile:         tokenFile,
		AllowedOrigin:     origin,
		AuthRateLimit:     rate,
		PendingRefresh:    durationFromEnv("NYUMBA_PENDING_REFRESH", DefaultPendingRefresh),
		StatsRefresh:      durationFromEnv("NYUMBA_STATS_REFRESH", DefaultStatsRefresh),
		ActivityRefresh:   durationFromEnv("NYUMBA_ACTIVITY_REFRESH", DefaultActivityRefresh),
		SessionSigningKey: signingKey,
	}
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
