package extractor

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abreton/candidoc/constants"
	"github.com/abreton/candidoc/internal/common"
	"github.com/abreton/candidoc/internal/llm"
	"github.com/abreton/candidoc/internal/schema"
	"github.com/abreton/candidoc/internal/usagelog"
)

// VisionConfig configures the vision extractor.
type VisionConfig struct {
	Model       string
	Temperature float32
}

// VisionExtractor sends a single document image to a multimodal model for
// joint extraction and structuring. Last resort of the cascade: markedly more
// expensive than the text path, so there is NO corrective retry here — a
// response that fails schema validation is returned as best-effort instead.
type VisionExtractor struct {
	client llm.ChatClient
	cfg    VisionConfig
	usage  usagelog.Logger
	log    *slog.Logger
}

func NewVisionExtractor(client llm.ChatClient, cfg VisionConfig, usage usagelog.Logger, logger *slog.Logger) *VisionExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if usage == nil {
		usage = usagelog.NewSlogLogger(logger)
	}
	return &VisionExtractor{client: client, cfg: cfg, usage: usage, log: logger}
}

// Extract structures exactly one image. Emits one usage-log event per call.
func (v *VisionExtractor) Extract(ctx context.Context, imageBytes []byte, mimeType string, sch *schema.Schema) (*Record, error) {
	rid := uuid.New().String()
	start := time.Now()

	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(imageBytes)

	resp, err := v.client.Complete(ctx, llm.ChatRequest{
		Model:          v.cfg.Model,
		Temperature:    v.cfg.Temperature,
		ResponseFormat: "json_object",
		Messages: []llm.Message{
			{Role: "system", Content: llm.BuildSystemPrompt(sch)},
			{Role: "user", Parts: []llm.ContentPart{
				{Type: "text", Text: llm.BuildVisionUserText()},
				{Type: "image_url", ImageURL: &llm.ImageURL{URL: dataURL}},
			}},
		},
	})
	if err != nil {
		v.emit(ctx, sch, nil, start, err)
		return nil, fmt.Errorf("vision call: %w", err)
	}

	rec := &Record{
		Model:            resp.Model,
		PromptTokens:     resp.PromptTokens,
		CompletionTokens: resp.CompletionTokens,
	}

	if resp.Content == "" {
		err := fmt.Errorf("%w: empty vision content", common.ErrNoModelResponse)
		v.emit(ctx, sch, resp, start, err)
		return nil, err
	}

	m, perr := parseJSONObject(resp.Content)
	if perr != nil {
		v.emit(ctx, sch, resp, start, perr)
		return nil, fmt.Errorf("vision response: %w", perr)
	}
	normalized := schema.StripNulls(m)

	outcome, verr := sch.Validate(normalized)
	switch {
	case verr != nil:
		v.emit(ctx, sch, resp, start, verr)
		return nil, fmt.Errorf("validate against %s schema: %w", sch.Name, verr)
	case outcome.Valid:
		rec.Fields = outcome.Data
	default:
		// Best effort: keep the parsed object restricted to declared fields,
		// with defaults substituted. No retry on this path.
		rec.Fields = bestEffortFields(normalized, sch)
		rec.BestEffort = true
		v.log.Warn("vision.extract.best_effort",
			"req_id", rid, "schema", sch.Name, "errors", len(outcome.Errors))
	}

	v.emit(ctx, sch, resp, start, nil)
	v.log.Info("vision.extract.ok",
		"req_id", rid,
		"schema", sch.Name,
		"fields", len(rec.Fields),
		"best_effort", rec.BestEffort,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

// bestEffortFields drops keys outside the schema so the subset invariant
// holds even for unvalidated data, and substitutes declared defaults.
func bestEffortFields(m map[string]any, sch *schema.Schema) map[string]any {
	known := sch.KnownFields()
	out := make(map[string]any, len(m))
	for k, v := range m {
		if _, ok := known[k]; ok {
			out[k] = v
		}
	}
	for _, f := range sch.Fields {
		if f.Default == nil {
			continue
		}
		if _, ok := out[f.Name]; !ok {
			out[f.Name] = f.Default
		}
	}
	return out
}

func (v *VisionExtractor) emit(ctx context.Context, sch *schema.Schema, resp *llm.ChatResponse, start time.Time, callErr error) {
	ev := usagelog.Event{
		EntityType: constants.EntityType(sch.Name),
		InputType:  constants.InputVision,
		Model:      v.cfg.Model,
		Status:     constants.AttemptSuccess,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.PromptTokens = resp.PromptTokens
		ev.CompletionTokens = resp.CompletionTokens
		ev.CostEstimateUSD = usagelog.EstimateCost(resp.Model, resp.PromptTokens, resp.CompletionTokens)
	}
	if callErr != nil {
		ev.Status = constants.AttemptError
		ev.ErrorMessage = callErr.Error()
	}
	if err := v.usage.Log(ctx, ev); err != nil {
		v.log.Warn("vision.usage_log_failed", "error", err)
	}
}
