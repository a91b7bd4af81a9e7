package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abreton/candidoc/constants"
	"github.com/abreton/candidoc/internal/common"
	"github.com/abreton/candidoc/internal/document"
	"github.com/abreton/candidoc/internal/extract"
	"github.com/abreton/candidoc/internal/extractor"
	"github.com/abreton/candidoc/internal/ocr"
	"github.com/abreton/candidoc/internal/schema"
	"github.com/abreton/candidoc/internal/usagelog"
)

// NativeExtractor is stage 1: document bytes -> text layer.
type NativeExtractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Rasterizer renders PDF pages; an empty result means the stage is unavailable.
type Rasterizer interface {
	Pages(ctx context.Context, pdfBytes []byte) []ocr.RasterPage
}

// Recognizer OCRs raster pages into concatenated text.
type Recognizer interface {
	Recognize(ctx context.Context, pages []ocr.RasterPage) string
}

// TextStructurer turns meaningful text into a schema-conformant record.
type TextStructurer interface {
	Extract(ctx context.Context, text string, sch *schema.Schema) (*extractor.Record, error)
}

// VisionStructurer structures a single document image directly.
type VisionStructurer interface {
	Extract(ctx context.Context, imageBytes []byte, mimeType string, sch *schema.Schema) (*extractor.Record, error)
}

// Config bounds each stage of a run.
type Config struct {
	StageTimeout time.Duration // per-stage cap for native text, raster and OCR
}

// Orchestrator sequences the extraction cascade for one document:
// native text -> quality gate -> raster+OCR -> quality gate -> vision.
// Stages run strictly sequentially; each failure is absorbed at its own
// boundary and the cascade advances. Holds no per-document state, so
// concurrent documents are independent.
type Orchestrator struct {
	cfg    Config
	native NativeExtractor
	raster Rasterizer
	ocr    Recognizer
	text   TextStructurer
	vision VisionStructurer
	usage  usagelog.Logger
	log    *slog.Logger
}

func NewOrchestrator(
	cfg Config,
	native NativeExtractor,
	raster Rasterizer,
	recognizer Recognizer,
	text TextStructurer,
	vision VisionStructurer,
	usage usagelog.Logger,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if usage == nil {
		usage = usagelog.NewSlogLogger(logger)
	}
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = 60 * time.Second
	}
	return &Orchestrator{
		cfg:    cfg,
		native: native,
		raster: raster,
		ocr:    recognizer,
		text:   text,
		vision: vision,
		usage:  usage,
		log:    logger,
	}
}

// attempt is one stage invocation, recorded for observability and stage
// decisions. Ephemeral; never persisted here.
type attempt struct {
	Stage     constants.Stage
	Status    constants.AttemptStatus
	CharCount int
	Duration  time.Duration
}

// Extract runs the cascade for one validated document against one target
// schema. Only the exhaustion of all applicable stages surfaces an error.
func (o *Orchestrator) Extract(ctx context.Context, in *document.Input, sch *schema.Schema) (*extractor.Record, error) {
	rid := uuid.New().String()
	ctx = common.WithRequestID(ctx, rid)
	start := time.Now()

	o.log.Info("pipeline.start",
		"req_id", rid,
		"schema", sch.Name,
		"format", in.Format,
		"size_bytes", in.Size,
	)

	// Stage 1: native text (PDF/DOCX only; images go straight to raster).
	if in.Format != constants.IMAGE {
		text, att := o.runNativeText(ctx, in)
		o.logAttempt(rid, att)
		if extract.IsMeaningful(text) {
			return o.structureText(ctx, rid, in, sch, text, nativeInputType(in.Format), start)
		}
	}

	// Stage 2: rasterize (PDF) or use the image itself as the sole page.
	var pages []ocr.RasterPage
	pageMime := constants.MimePNG
	switch in.Format {
	case constants.PDF:
		stageCtx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeout)
		pages = o.raster.Pages(stageCtx, in.Bytes)
		cancel()
	case constants.IMAGE:
		pages = []ocr.RasterPage{{Index: 0, PNG: in.Bytes}}
		pageMime = in.MimeType
	}

	if len(pages) > 0 {
		// Stage 3: OCR, then the gate again.
		ocrText, att := o.runOCR(ctx, pages)
		o.logAttempt(rid, att)
		if extract.IsMeaningful(ocrText) {
			return o.structureText(ctx, rid, in, sch, ocrText, constants.InputImage, start)
		}

		// Stage 4: vision on the first page, best-effort accepted.
		rec, err := o.vision.Extract(ctx, pages[0].PNG, pageMime, sch)
		if err != nil {
			o.logAttempt(rid, attempt{Stage: constants.StageVision, Status: constants.AttemptError})
			o.emit(ctx, sch, constants.InputVision, len(pages[0].PNG), nil, start, err)
			return nil, fmt.Errorf("vision stage: %w", err)
		}
		o.logAttempt(rid, attempt{Stage: constants.StageVision, Status: constants.AttemptSuccess})
		o.emit(ctx, sch, constants.InputVision, len(pages[0].PNG), rec, start, nil)
		o.log.Info("pipeline.done", "req_id", rid, "stage", constants.StageVision,
			"best_effort", rec.BestEffort, "elapsed_ms", time.Since(start).Milliseconds())
		return rec, nil
	}

	// All strategies exhausted: no text layer, no raster pages.
	err := fmt.Errorf("%w: all extraction strategies exhausted", common.ErrUnprocessable)
	o.emit(ctx, sch, nativeInputType(in.Format), 0, nil, start, err)
	return nil, err
}

// runNativeText invokes the text extractor, converting any failure into an
// empty result so the cascade continues.
func (o *Orchestrator) runNativeText(ctx context.Context, in *document.Input) (string, attempt) {
	stageCtx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeout)
	defer cancel()

	stageStart := time.Now()
	text, err := o.native.Extract(stageCtx, in.Bytes, in.MimeType)
	att := attempt{
		Stage:     constants.StageNativeText,
		Status:    constants.AttemptSuccess,
		CharCount: len(text),
		Duration:  time.Since(stageStart),
	}
	switch {
	case err != nil:
		att.Status = constants.AttemptError
		return "", att
	case len(text) == 0:
		att.Status = constants.AttemptEmpty
	}
	return text, att
}

func (o *Orchestrator) runOCR(ctx context.Context, pages []ocr.RasterPage) (string, attempt) {
	stageCtx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeout)
	defer cancel()

	stageStart := time.Now()
	text := o.ocr.Recognize(stageCtx, pages)
	att := attempt{
		Stage:     constants.StageOCR,
		Status:    constants.AttemptSuccess,
		CharCount: len(text),
		Duration:  time.Since(stageStart),
	}
	if len(text) == 0 {
		att.Status = constants.AttemptEmpty
	}
	return text, att
}

// structureText hands meaningful text to the schema-validating extractor and
// terminates the run. A validation failure here is terminal by design: the
// corrective retry already happened inside the structurer.
func (o *Orchestrator) structureText(ctx context.Context, rid string, in *document.Input, sch *schema.Schema, text string, inputType constants.InputType, start time.Time) (*extractor.Record, error) {
	rec, err := o.text.Extract(ctx, text, sch)
	if err != nil {
		o.emit(ctx, sch, inputType, len(text), nil, start, err)
		return nil, err
	}
	o.emit(ctx, sch, inputType, len(text), rec, start, nil)
	o.log.Info("pipeline.done",
		"req_id", rid,
		"input_type", inputType,
		"fields", len(rec.Fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

func (o *Orchestrator) logAttempt(rid string, att attempt) {
	o.log.Info("pipeline.attempt",
		"req_id", rid,
		"stage", att.Stage,
		"status", att.Status,
		"chars", att.CharCount,
		"duration_ms", att.Duration.Milliseconds(),
	)
}

// emit produces the single terminal usage-log event of a run.
func (o *Orchestrator) emit(ctx context.Context, sch *schema.Schema, inputType constants.InputType, sizeChars int, rec *extractor.Record, start time.Time, runErr error) {
	ev := usagelog.Event{
		EntityType:     constants.EntityType(sch.Name),
		InputType:      inputType,
		InputSizeChars: sizeChars,
		Status:         constants.AttemptSuccess,
		DurationMs:     time.Since(start).Milliseconds(),
	}
	if rec != nil {
		ev.Model = rec.Model
		ev.PromptTokens = rec.PromptTokens
		ev.CompletionTokens = rec.CompletionTokens
		ev.CostEstimateUSD = usagelog.EstimateCost(rec.Model, rec.PromptTokens, rec.CompletionTokens)
	}
	if runErr != nil {
		ev.Status = constants.AttemptError
		ev.ErrorMessage = runErr.Error()
	}
	if err := o.usage.Log(ctx, ev); err != nil {
		o.log.Warn("pipeline.usage_log_failed", "error", err)
	}
}

func nativeInputType(f constants.Format) constants.InputType {
	if f == constants.PDF {
		return constants.InputPDF
	}
	return constants.InputText
}
