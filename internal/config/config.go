package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full process configuration, loaded once at startup from the
// environment (a .env file is honored when present).
type Config struct {
	Port string

	Gemini   GeminiConfig
	Pipeline PipelineConfig
	Storage  StorageConfig
	Artifact ArtifactConfig
}

type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	RPS         float64
	Burst       int
}

type PipelineConfig struct {
	BatchSize int
	Retries   int
	BaseDelay time.Duration
	CacheSize int
}

type StorageConfig struct {
	// DSN selects the database. Empty means an on-disk SQLite file; a
	// postgres:// DSN switches to Postgres.
	DSN        string
	SQLitePath string
}

type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads the environment. Only the generation API key is mandatory;
// everything else has a working default.
func Load() (*Config, error) {
	_ = godotenv.Load()

	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("config: GEMINI_API_KEY is required")
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = ":8081"
	} else if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	return &Config{
		Port: port,
		Gemini: GeminiConfig{
			APIKey:      apiKey,
			Model:       firstNonEmpty(strings.TrimSpace(os.Getenv("FLEETSCAN_MODEL")), "gemini-1.5-flash-latest"),
			Temperature: envFloat("FLEETSCAN_TEMPERATURE", 0.05),
			Timeout:     envDuration("FLEETSCAN_TIMEOUT", 300*time.Second),
			RPS:         envFloat("FLEETSCAN_RPS", 0),
			Burst:       envInt("FLEETSCAN_BURST", 1),
		},
		Pipeline: PipelineConfig{
			BatchSize: envInt("FLEETSCAN_BATCH_SIZE", 25),
			Retries:   envInt("FLEETSCAN_RETRIES", 2),
			BaseDelay: envDuration("FLEETSCAN_BASE_DELAY", 5*time.Second),
			CacheSize: envInt("FLEETSCAN_CACHE_SIZE", 128),
		},
		Storage: StorageConfig{
			DSN:        strings.TrimSpace(os.Getenv("FLEETSCAN_DSN")),
			SQLitePath: firstNonEmpty(strings.TrimSpace(os.Getenv("FLEETSCAN_SQLITE_PATH")), "fleetscan.db"),
		},
		Artifact: loadArtifactConfig(),
	}, nil
}

func loadArtifactConfig() ArtifactConfig {
	endpoint := strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
	return ArtifactConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), "fleetscan-exports"),
		UseSSL:    envBool("ARTIFACT_S3_USE_SSL", false),
	}
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

// envDuration accepts Go duration syntax ("30s") or a bare number of seconds.
func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
