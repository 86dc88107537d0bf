package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Document analysis service (Azure Document Intelligence compatible).
	// When AnalysisEndpoint is empty the service runs in degraded mode:
	// local text extraction, no figure detection.
	AnalysisEndpoint string
	AnalysisAPIKey   string
	AnalysisModelID  string

	// Blob store connection
	BlobstoreURL    string
	BlobstoreAPIKey string

	// Auth
	DoctransAPIKey string

	// Translation backend (OpenAI-compatible)
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Worker pool
	WorkerCount            int
	MaxQueueSize           int
	MaxConcurrentTranslate int
	MaxConcurrentUpload    int

	// Upload limits
	MaxUploadBytes int64

	// Chunking defaults
	DefaultChunkChars int

	// Target language default
	DefaultTargetLang string

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		AnalysisEndpoint: os.Getenv("ANALYSIS_ENDPOINT"),
		AnalysisAPIKey:   os.Getenv("ANALYSIS_API_KEY"),
		AnalysisModelID:  envOr("ANALYSIS_MODEL_ID", "prebuilt-layout"),

		BlobstoreURL:    envOr("BLOBSTORE_URL", "http://localhost:8080"),
		BlobstoreAPIKey: os.Getenv("BLOBSTORE_API_KEY"),

		DoctransAPIKey: os.Getenv("DOCTRANS_API_KEY"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:   envOr("OPENAI_MODEL", "gpt-4o-mini"),

		WorkerCount:            envInt("WORKER_COUNT", 4),
		MaxQueueSize:           envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentTranslate: envInt("MAX_CONCURRENT_TRANSLATE", 4),
		MaxConcurrentUpload:    envInt("MAX_CONCURRENT_UPLOAD", 8),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		DefaultChunkChars: envInt("DEFAULT_CHUNK_CHARS", 6000),

		DefaultTargetLang: envOr("DEFAULT_TARGET_LANG", "English"),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentTranslate <= 0 {
		cfg.MaxConcurrentTranslate = 4
	}
	if cfg.MaxConcurrentUpload <= 0 {
		cfg.MaxConcurrentUpload = 8
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.DefaultChunkChars <= 0 {
		cfg.DefaultChunkChars = 6000
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.BlobstoreAPIKey == "" {
		return fmt.Errorf("BLOBSTORE_API_KEY is required")
	}
	if c.DoctransAPIKey == "" {
		return fmt.Errorf("DOCTRANS_API_KEY is required")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.AnalysisEndpoint != "" && c.AnalysisAPIKey == "" {
		return fmt.Errorf("ANALYSIS_API_KEY is required when ANALYSIS_ENDPOINT is set")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
