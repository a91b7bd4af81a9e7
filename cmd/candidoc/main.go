package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/abreton/candidoc/constants"
	"github.com/abreton/candidoc/internal/common"
	"github.com/abreton/candidoc/internal/document"
	"github.com/abreton/candidoc/internal/extract"
	"github.com/abreton/candidoc/internal/extractor"
	"github.com/abreton/candidoc/internal/llm/openai"
	"github.com/abreton/candidoc/internal/ocr"
	"github.com/abreton/candidoc/internal/pipeline"
	"github.com/abreton/candidoc/internal/schema"
	"github.com/abreton/candidoc/internal/usagelog"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	entity := flag.String("type", "resume", "target schema: resume | offer")
	flag.Parse()
	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "candidoc [-type resume|offer] <file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var sch *schema.Schema
	switch *entity {
	case "resume":
		sch = schema.Resume()
	case "offer":
		sch = schema.JobOffer()
	default:
		logger.Error("unknown type", "type", *entity)
		os.Exit(2)
	}

	mimeType := constants.MapExtToMime(filepath.Ext(path))
	if mimeType == "" {
		logger.Error("unsupported file extension", "path", path)
		os.Exit(2)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	in, err := document.New(data, mimeType, cfg.Pipeline.MaxFileSizeBytes)
	if err != nil {
		logger.Error("rejected before pipeline", "error", err)
		os.Exit(1)
	}

	usage := buildUsageLogger(cfg, logger)
	orch := buildOrchestrator(cfg, usage, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*cfg.Pipeline.CallTimeout)
	defer cancel()

	rec, err := orch.Extract(ctx, in, sch)
	if err != nil {
		logger.Error("extraction failed", "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		logger.Error("encode record", "error", err)
		os.Exit(1)
	}
	os.Stdout.Write(append(out, '\n'))
}

func buildUsageLogger(cfg *common.Config, logger *slog.Logger) usagelog.Logger {
	if cfg.Database.SQLitePath != "" {
		store, err := usagelog.NewSQLiteStore(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("sqlite usage store unavailable, falling back to logs", "error", err)
			return usagelog.NewSlogLogger(logger)
		}
		return store
	}
	if cfg.Database.DSN != "" {
		store, err := usagelog.NewPGStore(context.Background(), cfg.Database.DSN, logger)
		if err != nil {
			logger.Warn("pg usage store unavailable, falling back to logs", "error", err)
			return usagelog.NewSlogLogger(logger)
		}
		return store
	}
	return usagelog.NewSlogLogger(logger)
}

func buildOrchestrator(cfg *common.Config, usage usagelog.Logger, logger *slog.Logger) *pipeline.Orchestrator {
	client := openai.NewClient(openai.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.TextModel,
		Timeout: cfg.LLM.Timeout,
	}, logger)

	native := extract.NewTextExtractor()
	raster := ocr.NewConverter(ocr.ConverterConfig{
		Pdftoppm: cfg.OCR.Pdftoppm,
		Scale:    cfg.Pipeline.RasterScale,
		MaxPages: cfg.Pipeline.MaxOCRPages,
	}, logger)
	engine := ocr.NewEngine(ocr.EngineConfig{
		Tesseract: cfg.OCR.Tesseract,
		Languages: cfg.OCR.Languages,
	}, logger)
	text := extractor.NewSchemaExtractor(client, extractor.TextConfig{
		Model:          cfg.LLM.TextModel,
		Temperature:    cfg.LLM.Temperature,
		MaxRetryRounds: cfg.LLM.MaxRetryRounds,
	}, logger)
	vision := extractor.NewVisionExtractor(client, extractor.VisionConfig{
		Model:       cfg.LLM.VisionModel,
		Temperature: cfg.LLM.Temperature,
	}, usage, logger)

	return pipeline.NewOrchestrator(
		pipeline.Config{StageTimeout: cfg.Pipeline.CallTimeout},
		native, raster, engine, text, vision, usage, logger,
	)
}
