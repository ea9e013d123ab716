package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // CUELINE_DATABASE_URL (required)
	HTTPAddr    string // CUELINE_HTTP_ADDR (default ":8080")
	NATSURL     string // CUELINE_NATS_URL (optional, empty = no events)
	AuthToken   string // CUELINE_AUTH_TOKEN (optional, empty = auth disabled)
	ShowFile    string // CUELINE_SHOW_FILE (optional, timeline loaded at startup)

	// Presence settings
	PresenceTTL time.Duration // CUELINE_PRESENCE_TTL (default 30s)

	// Snapshot settings
	SnapshotInterval   time.Duration // CUELINE_SNAPSHOT_INTERVAL (default 3m; 0 = disabled)
	SnapshotFile       string        // CUELINE_SNAPSHOT_FILE (enables file export when set)
	SnapshotS3Bucket   string        // CUELINE_SNAPSHOT_S3_BUCKET (enables S3 when set)
	SnapshotS3Endpoint string        // CUELINE_SNAPSHOT_S3_ENDPOINT (custom endpoint for MinIO)
	SnapshotS3Region   string        // CUELINE_SNAPSHOT_S3_REGION (default "us-east-1")
	SnapshotS3Key      string        // CUELINE_SNAPSHOT_S3_KEY (default "cueline/snapshot.jsonl")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:        os.Getenv("CUELINE_DATABASE_URL"),
		HTTPAddr:           envOrDefault("CUELINE_HTTP_ADDR", ":8080"),
		NATSURL:            os.Getenv("CUELINE_NATS_URL"),
		AuthToken:          os.Getenv("CUELINE_AUTH_TOKEN"),
		ShowFile:           os.Getenv("CUELINE_SHOW_FILE"),
		SnapshotFile:       os.Getenv("CUELINE_SNAPSHOT_FILE"),
		SnapshotS3Bucket:   os.Getenv("CUELINE_SNAPSHOT_S3_BUCKET"),
		SnapshotS3Endpoint: os.Getenv("CUELINE_SNAPSHOT_S3_ENDPOINT"),
		SnapshotS3Region:   envOrDefault("CUELINE_SNAPSHOT_S3_REGION", "us-east-1"),
		SnapshotS3Key:      envOrDefault("CUELINE_SNAPSHOT_S3_KEY", "cueline/snapshot.jsonl"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("CUELINE_DATABASE_URL is required")
	}

	ttl, err := durationEnv("CUELINE_PRESENCE_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	c.PresenceTTL = ttl

	interval, err := durationEnv("CUELINE_SNAPSHOT_INTERVAL", 3*time.Minute)
	if err != nil {
		return nil, err
	}
	c.SnapshotInterval = interval

	return c, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
