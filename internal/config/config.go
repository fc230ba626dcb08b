package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Structuring providers.
const (
	ProviderGemini = "gemini"
	ProviderClaude = "claude"
)

// PDF export modes.
const (
	ExportSoffice = "soffice"
	ExportNative  = "native"
	ExportOff     = "off"
)

type Config struct {
	// Structuring service
	Provider            string
	GeminiAPIKey        string
	GeminiModel         string
	AnthropicAPIKey     string
	AnthropicModel      string
	StructuringAttempts int
	StructuringTimeout  time.Duration

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Media
	ReplicateAPIToken string
	ReplicateModel    string
	DownloadTimeout   time.Duration
	DotBinary         string

	// Files
	TemplatesDir string
	OutputDir    string
	AssetsDir    string
	SnapshotDir  string

	// Export
	ExportPDF      string
	ConvertTimeout time.Duration

	// Server
	Port           string
	DeckgenAPIKey  string
	WorkerCount    int
	MaxQueueSize   int
	MaxUploadBytes int64
	JobTTL         time.Duration
	DataDir        string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first; variables already set take precedence.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Provider:            strings.ToLower(envOr("STRUCTURING_PROVIDER", ProviderGemini)),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModel:         envOr("GEMINI_MODEL", "gemini-2.5-pro"),
		AnthropicAPIKey:     os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:      envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		StructuringAttempts: envInt("STRUCTURING_MAX_ATTEMPTS", 3),
		StructuringTimeout:  envDuration("STRUCTURING_TIMEOUT", 120*time.Second),

		ChunkSize:    envInt("CHUNK_SIZE", 12000),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 500),

		ReplicateAPIToken: os.Getenv("REPLICATE_API_TOKEN"),
		ReplicateModel:    envOr("REPLICATE_MODEL", "stability-ai/stable-diffusion-3"),
		DownloadTimeout:   envDuration("DOWNLOAD_TIMEOUT", 20*time.Second),
		DotBinary:         envOr("DOT_BINARY", "dot"),

		TemplatesDir: envOr("TEMPLATES_DIR", "templates"),
		OutputDir:    envOr("OUTPUT_DIR", "output"),
		AssetsDir:    envOr("ASSETS_DIR", "assets"),
		SnapshotDir:  os.Getenv("SNAPSHOT_DIR"),

		ExportPDF:      strings.ToLower(envOr("EXPORT_PDF", ExportSoffice)),
		ConvertTimeout: envDuration("CONVERT_TIMEOUT", 60*time.Second),

		Port:           envOr("PORT", "8091"),
		DeckgenAPIKey:  os.Getenv("DECKGEN_API_KEY"),
		WorkerCount:    envInt("WORKER_COUNT", 1),
		MaxQueueSize:   envInt("MAX_QUEUE_SIZE", 20),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
		JobTTL:         envDuration("JOB_TTL", 24*time.Hour),
		DataDir:        envOr("DATA_DIR", "data"),
	}

	if cfg.StructuringAttempts <= 0 {
		cfg.StructuringAttempts = 1
	}
	if cfg.StructuringTimeout <= 0 {
		cfg.StructuringTimeout = 120 * time.Second
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 12000
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = min(500, cfg.ChunkSize/4)
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = 20 * time.Second
	}
	if cfg.ConvertTimeout <= 0 {
		cfg.ConvertTimeout = 60 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 20
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 24 * time.Hour
	}

	return cfg
}

// Validate checks what every binary needs: a usable structuring provider.
func (c Config) Validate() error {
	var errs []error
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, fmt.Errorf("GEMINI_API_KEY is required"))
		}
	case ProviderClaude:
		if c.AnthropicAPIKey == "" {
			errs = append(errs, fmt.Errorf("ANTHROPIC_API_KEY is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("STRUCTURING_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderClaude, c.Provider))
	}
	switch c.ExportPDF {
	case ExportSoffice, ExportNative, ExportOff:
	default:
		errs = append(errs, fmt.Errorf("EXPORT_PDF must be soffice, native or off, got %q", c.ExportPDF))
	}
	return errors.Join(errs...)
}

// ValidateServer additionally requires the server's API key.
func (c Config) ValidateServer() error {
	err := c.Validate()
	if c.DeckgenAPIKey == "" {
		err = errors.Join(err, fmt.Errorf("DECKGEN_API_KEY is required"))
	}
	return err
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

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
