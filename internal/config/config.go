// Package config loads pipeline configuration from the environment with an
// optional YAML overlay file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Model access
	OpenAIAPIKey       string
	YouTubeAPIKey      string
	LLMModel           string
	VisionModel        string
	TranscriptionModel string
	EmbedModel         string
	EmbedDimension     int

	// Pipeline behavior
	WorkDir             string
	SearchQuery         string
	MaxResults          int64
	LikelihoodThreshold int
	FrameRate           int
	MaxFrameEdge        int

	// Defensive timeouts around external calls
	ModelCallTimeout time.Duration
	ProcessTimeout   time.Duration
	DownloadTimeout  time.Duration

	// Requests per second against the model APIs (0 = unlimited)
	ModelRateLimit float64

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileOverlay mirrors the subset of Config settable from a YAML file.
// Secrets stay env-only; tunables from the file win over env defaults.
type fileOverlay struct {
	SearchQuery         *string  `yaml:"search_query"`
	MaxResults          *int64   `yaml:"max_results"`
	LikelihoodThreshold *int     `yaml:"likelihood_threshold"`
	FrameRate           *int     `yaml:"frame_rate"`
	MaxFrameEdge        *int     `yaml:"max_frame_edge"`
	WorkDir             *string  `yaml:"work_dir"`
	LLMModel            *string  `yaml:"llm_model"`
	VisionModel         *string  `yaml:"vision_model"`
	TranscriptionModel  *string  `yaml:"transcription_model"`
	EmbedModel          *string  `yaml:"embed_model"`
	EmbedDimension      *int     `yaml:"embed_dimension"`
	ModelRateLimit      *float64 `yaml:"model_rate_limit"`
}

// Load reads configuration from environment variables, then applies the
// YAML overlay at RELISH_CONFIG (if set and readable).
func Load() Config {
	cfg := Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "relish"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "recipes"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		YouTubeAPIKey:      getEnv("YOUTUBE_API_KEY", ""),
		LLMModel:           getEnv("RELISH_LLM_MODEL", "gpt-4o-mini"),
		VisionModel:        getEnv("RELISH_VISION_MODEL", "gpt-4.1-mini"),
		TranscriptionModel: getEnv("RELISH_TRANSCRIPTION_MODEL", "whisper-1"),
		EmbedModel:         getEnv("RELISH_EMBED_MODEL", "text-embedding-ada-002"),
		EmbedDimension:     getEnvInt("RELISH_EMBED_DIMENSION", 1536),

		WorkDir:             getEnv("RELISH_WORK_DIR", "tmp"),
		SearchQuery:         getEnv("RELISH_SEARCH_QUERY", "food"),
		MaxResults:          int64(getEnvInt("RELISH_MAX_RESULTS", 3)),
		LikelihoodThreshold: getEnvInt("RELISH_LIKELIHOOD_THRESHOLD", 3),
		FrameRate:           getEnvInt("RELISH_FRAME_RATE", 1),
		MaxFrameEdge:        getEnvInt("RELISH_MAX_FRAME_EDGE", 1080),

		ModelCallTimeout: getEnvDuration("RELISH_MODEL_TIMEOUT", 5*time.Minute),
		ProcessTimeout:   getEnvDuration("RELISH_PROCESS_TIMEOUT", 10*time.Minute),
		DownloadTimeout:  getEnvDuration("RELISH_DOWNLOAD_TIMEOUT", 15*time.Minute),

		ModelRateLimit: getEnvFloat("RELISH_MODEL_RATE_LIMIT", 0),

		LogFile:  getEnv("RELISH_LOG_FILE", "/tmp/relish.log"),
		LogLevel: parseLogLevel(getEnv("RELISH_LOG_LEVEL", "INFO")),
	}

	if path := os.Getenv("RELISH_CONFIG"); path != "" {
		if err := cfg.applyOverlayFile(path); err != nil {
			slog.Warn("failed to apply config overlay", "path", path, "error", err)
		}
	}

	return cfg
}

func (c *Config) applyOverlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read overlay: %w", err)
	}
	return c.ApplyOverlay(data)
}

// ApplyOverlay merges YAML overlay bytes into the config.
func (c *Config) ApplyOverlay(data []byte) error {
	var o fileOverlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("parse overlay: %w", err)
	}
	if o.SearchQuery != nil {
		c.SearchQuery = *o.SearchQuery
	}
	if o.MaxResults != nil {
		c.MaxResults = *o.MaxResults
	}
	if o.LikelihoodThreshold != nil {
		c.LikelihoodThreshold = *o.LikelihoodThreshold
	}
	if o.FrameRate != nil {
		c.FrameRate = *o.FrameRate
	}
	if o.MaxFrameEdge != nil {
		c.MaxFrameEdge = *o.MaxFrameEdge
	}
	if o.WorkDir != nil {
		c.WorkDir = *o.WorkDir
	}
	if o.LLMModel != nil {
		c.LLMModel = *o.LLMModel
	}
	if o.VisionModel != nil {
		c.VisionModel = *o.VisionModel
	}
	if o.TranscriptionModel != nil {
		c.TranscriptionModel = *o.TranscriptionModel
	}
	if o.EmbedModel != nil {
		c.EmbedModel = *o.EmbedModel
	}
	if o.EmbedDimension != nil {
		c.EmbedDimension = *o.EmbedDimension
	}
	if o.ModelRateLimit != nil {
		c.ModelRateLimit = *o.ModelRateLimit
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
