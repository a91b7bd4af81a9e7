package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Pipeline PipelineConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Database DatabaseConfig
}

// PipelineConfig holds the hard caps that bound per-document cost.
type PipelineConfig struct {
	MaxFileSizeBytes int64
	MaxOCRPages      int
	RasterScale      int // upscale factor over the 72dpi base
	CallTimeout      time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Languages string // tesseract language set, e.g. "fra+eng"
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	TextModel      string
	VisionModel    string
	Temperature    float32
	Timeout        time.Duration
	MaxRetryRounds int // corrective validation retries; fixed at 1 by design
}

// DatabaseConfig holds the optional usage-log store configuration.
type DatabaseConfig struct {
	DSN        string // postgres DSN; empty disables the pg store
	SQLitePath string // sqlite file path; empty disables the sqlite store
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			MaxFileSizeBytes: int64(getEnvAsInt("MAX_FILE_SIZE_MB", 10)) << 20,
			MaxOCRPages:      getEnvAsInt("MAX_OCR_PAGES", 5),
			RasterScale:      getEnvAsInt("RASTER_SCALE", 2),
			CallTimeout:      getEnvAsDuration("CALL_TIMEOUT", 60*time.Second),
		},
		OCR: OCRConfig{
			Pdftoppm:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract: getEnv("TESSERACT_BIN", "tesseract"),
			Languages: getEnv("OCR_LANGUAGES", "fra+eng"),
		},
		LLM: LLMConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", ""),
			TextModel:      getEnv("OPENAI_TEXT_MODEL", "gpt-4o-mini"),
			VisionModel:    getEnv("OPENAI_VISION_MODEL", "gpt-4o"),
			Temperature:    getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:        getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			MaxRetryRounds: getEnvAsInt("MAX_RETRY_ROUNDS", 1),
		},
		Database: DatabaseConfig{
			DSN:        getEnv("DB_URL", ""),
			SQLitePath: getEnv("USAGE_SQLITE_PATH", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrMalformedInput)
	}
	if c.Pipeline.MaxFileSizeBytes <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_FILE_SIZE_MB must be positive", ErrMalformedInput)
	}
	if c.Pipeline.MaxOCRPages <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_OCR_PAGES must be positive", ErrMalformedInput)
	}
	return nil
}
