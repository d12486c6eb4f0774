package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Handle is the BlueSky handle of the account the dashboard serves.
	Handle string

	// AppPassword is the App Password used to authenticate. Never the
	// account password.
	AppPassword string

	// PDS is the personal data server base URL.
	PDS string

	// Port is the HTTP server port.
	Port int

	// FirehoseURL is the Jetstream WebSocket endpoint.
	FirehoseURL string

	// DatabasePath is the SQLite file holding persisted snapshots and the
	// firehose cursor.
	DatabasePath string

	// SchedulePath is the CSV file holding the scheduled-post queue.
	SchedulePath string

	// UploadDir is where uploaded images await publication.
	UploadDir string

	// CacheTTL is the snapshot freshness window.
	CacheTTL time.Duration

	// PublishInterval is how often the publish loop checks for due posts.
	PublishInterval time.Duration

	// ImageBudget is the upload byte budget for prepared images. Zero uses
	// the image pipeline default.
	ImageBudget int
}

// Load reads configuration from the environment, with a .env file loaded
// first when present.
func Load() (*Config, error) {
	// Absent .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	handle := os.Getenv("BLUESKY_HANDLE")
	if handle == "" {
		return nil, fmt.Errorf("BLUESKY_HANDLE is required")
	}
	password := os.Getenv("BLUESKY_APP_PASSWORD")
	if password == "" {
		return nil, fmt.Errorf("BLUESKY_APP_PASSWORD is required")
	}

	port, err := intEnv("PORT", 3000)
	if err != nil {
		return nil, err
	}
	budget, err := intEnv("IMAGE_BUDGET_BYTES", 0)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := durationEnv("SNAPSHOT_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	publishInterval, err := durationEnv("PUBLISH_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}

	return &Config{
		Handle:          handle,
		AppPassword:     password,
		PDS:             envOrDefault("BLUESKY_PDS", "https://bsky.social"),
		Port:            port,
		FirehoseURL:     envOrDefault("FIREHOSE_URL", "wss://jetstream1.us-east.bsky.network/subscribe"),
		DatabasePath:    envOrDefault("DATABASE_PATH", "skydash.db"),
		SchedulePath:    envOrDefault("SCHEDULE_PATH", "schedule/schedule.csv"),
		UploadDir:       envOrDefault("UPLOAD_DIR", "uploads"),
		CacheTTL:        cacheTTL,
		PublishInterval: publishInterval,
		ImageBudget:     budget,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
