package common

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.Pipeline.MaxFileSizeBytes != 10<<20 {
		t.Fatalf("MaxFileSizeBytes = %d", cfg.Pipeline.MaxFileSizeBytes)
	}
	if cfg.Pipeline.MaxOCRPages != 5 {
		t.Fatalf("MaxOCRPages = %d", cfg.Pipeline.MaxOCRPages)
	}
	if cfg.Pipeline.RasterScale != 2 {
		t.Fatalf("RasterScale = %d", cfg.Pipeline.RasterScale)
	}
	if cfg.OCR.Languages != "fra+eng" {
		t.Fatalf("Languages = %q", cfg.OCR.Languages)
	}
	if cfg.LLM.TextModel != "gpt-4o-mini" || cfg.LLM.VisionModel != "gpt-4o" {
		t.Fatalf("models = %q/%q", cfg.LLM.TextModel, cfg.LLM.VisionModel)
	}
	if cfg.LLM.MaxRetryRounds != 1 {
		t.Fatalf("MaxRetryRounds = %d", cfg.LLM.MaxRetryRounds)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("MAX_FILE_SIZE_MB", "20")
	t.Setenv("MAX_OCR_PAGES", "3")
	t.Setenv("OCR_LANGUAGES", "eng")
	t.Setenv("OPENAI_TIMEOUT", "90s")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")

	cfg := LoadConfig()
	if cfg.Pipeline.MaxFileSizeBytes != 20<<20 {
		t.Fatalf("MaxFileSizeBytes = %d", cfg.Pipeline.MaxFileSizeBytes)
	}
	if cfg.Pipeline.MaxOCRPages != 3 {
		t.Fatalf("MaxOCRPages = %d", cfg.Pipeline.MaxOCRPages)
	}
	if cfg.OCR.Languages != "eng" {
		t.Fatalf("Languages = %q", cfg.OCR.Languages)
	}
	if cfg.LLM.Timeout != 90*time.Second {
		t.Fatalf("Timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.LLM.Temperature != 0.2 {
		t.Fatalf("Temperature = %v", cfg.LLM.Temperature)
	}
}

func TestLoadConfigIgnoresBadValues(t *testing.T) {
	t.Setenv("MAX_OCR_PAGES", "lots")
	t.Setenv("OPENAI_TIMEOUT", "soon")

	cfg := LoadConfig()
	if cfg.Pipeline.MaxOCRPages != 5 {
		t.Fatalf("MaxOCRPages = %d, want default", cfg.Pipeline.MaxOCRPages)
	}
	if cfg.LLM.Timeout != 45*time.Second {
		t.Fatalf("Timeout = %v, want default", cfg.LLM.Timeout)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg := LoadConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg.LLM.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing API key must fail validation")
	}

	cfg.LLM.APIKey = "sk-test"
	cfg.Pipeline.MaxOCRPages = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero page cap must fail validation")
	}
}
