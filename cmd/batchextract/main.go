package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/abreton/candidoc/constants"
	"github.com/abreton/candidoc/internal/common"
	"github.com/abreton/candidoc/internal/document"
	"github.com/abreton/candidoc/internal/export"
	"github.com/abreton/candidoc/internal/extract"
	"github.com/abreton/candidoc/internal/extractor"
	"github.com/abreton/candidoc/internal/llm/openai"
	"github.com/abreton/candidoc/internal/ocr"
	"github.com/abreton/candidoc/internal/pipeline"
	"github.com/abreton/candidoc/internal/schema"
	"github.com/abreton/candidoc/internal/usagelog"
)

const maxWorkers = 4

// batchextract walks a directory, runs the extraction pipeline on every
// accepted file (documents are independent tasks) and writes one XLSX
// workbook of the resulting records.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	entity := flag.String("type", "resume", "target schema: resume | offer")
	out := flag.String("out", "records.xlsx", "output workbook path")
	flag.Parse()
	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "batchextract [-type resume|offer] [-out records.xlsx] <dir>")
		os.Exit(2)
	}
	dir := flag.Arg(0)

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

	paths, err := collectFiles(dir)
	if err != nil {
		logger.Error("walk directory", "dir", dir, "error", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		logger.Error("no accepted files found", "dir", dir)
		os.Exit(1)
	}

	usage := usagelog.NewSlogLogger(logger)
	orch := buildOrchestrator(cfg, usage, logger)

	ctx := context.Background()
	recs := runAll(ctx, orch, sch, cfg, paths, logger)
	if len(recs) == 0 {
		logger.Error("no documents extracted", "files", len(paths))
		os.Exit(1)
	}

	svc := export.NewService(logger)
	book, err := svc.RecordsXLSX(sch, recs)
	if err != nil {
		logger.Error("export workbook", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, book, 0o644); err != nil {
		logger.Error("write workbook", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("batch done", "files", len(paths), "records", len(recs), "out", *out)
}

func collectFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if constants.MapExtToMime(filepath.Ext(path)) != "" {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

// runAll processes files on a small worker pool. The pipeline holds no shared
// mutable state, so documents only need result collection to be synchronized.
func runAll(ctx context.Context, orch *pipeline.Orchestrator, sch *schema.Schema, cfg *common.Config, paths []string, logger *slog.Logger) []*extractor.Record {
	jobs := make(chan string)
	var mu sync.Mutex
	var recs []*extractor.Record

	var wg sync.WaitGroup
	workers := maxWorkers
	if len(paths) < workers {
		workers = len(paths)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				rec, err := runOne(ctx, orch, sch, cfg, path)
				if err != nil {
					logger.Error("file failed", "path", path, "error", err)
					continue
				}
				mu.Lock()
				recs = append(recs, rec)
				mu.Unlock()
			}
		}()
	}
	for _, p := range paths {
		jobs <- p
	}
	close(jobs)
	wg.Wait()
	return recs
}

func runOne(ctx context.Context, orch *pipeline.Orchestrator, sch *schema.Schema, cfg *common.Config, path string) (*extractor.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	in, err := document.New(data, constants.MapExtToMime(filepath.Ext(path)), cfg.Pipeline.MaxFileSizeBytes)
	if err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithTimeout(ctx, 5*cfg.Pipeline.CallTimeout)
	defer cancel()
	return orch.Extract(runCtx, in, sch)
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
