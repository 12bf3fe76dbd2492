package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWKSURL     string
	CORSOrigins string

	// Blob storage backend: "s3" or "filesystem"
	StorageDriver string
	StorageDir    string // filesystem driver root
	S3Region      string
	S3Bucket      string
	S3Endpoint    string // empty = AWS default, set for MinIO
	S3AccessKey   string
	S3SecretKey   string

	// Archive job engine
	ArchiveDir string // where finished {jobID}.zip files land

	ArchiveQueueSize int // submit channel buffer

	// ArchiveScanInterval is how often the worker rescans the database
	// for pending jobs whose enqueue was dropped on a full queue.
	ArchiveScanInterval time.Duration

	ArchiveRetention time.Duration // terminal jobs older than this are swept
	SweepInterval    time.Duration

	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWKSURL:     getEnv("JWKS_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),

		StorageDriver: getEnv("STORAGE_DRIVER", "filesystem"),
		StorageDir:    getEnv("STORAGE_DIR", "data/blobs"),
		S3Region:      getEnv("S3_REGION", "us-east-1"),
		S3Bucket:      getEnv("S3_BUCKET", "filevault"),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		S3AccessKey:   getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:   getEnv("S3_SECRET_KEY", ""),

		ArchiveDir:          getEnv("ARCHIVE_DIR", "data/archives"),
		ArchiveQueueSize:    getEnvInt("ARCHIVE_QUEUE_SIZE", 256),
		ArchiveScanInterval: getEnvDuration("ARCHIVE_SCAN_INTERVAL", 30*time.Second),
		ArchiveRetention:    getEnvDuration("ARCHIVE_RETENTION", 7*24*time.Hour),
		SweepInterval:       getEnvDuration("SWEEP_INTERVAL", time.Hour),

		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
