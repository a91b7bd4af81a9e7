package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/abreton/candidoc/internal/common"
	"github.com/abreton/candidoc/internal/llm"
	"github.com/abreton/candidoc/internal/schema"
)

// TextConfig configures the schema-validating text extractor.
type TextConfig struct {
	Model          string
	Temperature    float32
	MaxRetryRounds int // corrective rounds after the first call; default 1
}

// SchemaExtractor prompts the model with plain text and a target schema,
// validates the JSON reply, and on failure re-prompts once with the literal
// validation errors. Bounded to MaxRetryRounds+1 model calls, always.
type SchemaExtractor struct {
	client llm.ChatClient
	cfg    TextConfig
	log    *slog.Logger
}

func NewSchemaExtractor(client llm.ChatClient, cfg TextConfig, logger *slog.Logger) *SchemaExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRetryRounds <= 0 {
		cfg.MaxRetryRounds = 1
	}
	return &SchemaExtractor{client: client, cfg: cfg, log: logger}
}

// Extract runs the bounded extract-validate loop. Returns ErrNoModelResponse
// when the model produces empty content on every round; a validation failure
// on the final round is a hard error (no further attempts).
func (e *SchemaExtractor) Extract(ctx context.Context, text string, sch *schema.Schema) (*Record, error) {
	rid := uuid.New().String()
	start := time.Now()

	sys := llm.BuildSystemPrompt(sch)
	user := llm.BuildUserPrompt(text)

	rec := &Record{}
	rounds := e.cfg.MaxRetryRounds + 1
	emptyRounds := 0
	var lastErrs []schema.FieldError

	for round := 1; round <= rounds; round++ {
		prompt := sys
		if round > 1 && len(lastErrs) > 0 {
			prompt = llm.BuildRetryPrompt(sys, lastErrs)
		}

		resp, err := e.client.Complete(ctx, llm.ChatRequest{
			Model:          e.cfg.Model,
			Temperature:    e.cfg.Temperature,
			ResponseFormat: "json_object",
			Messages: []llm.Message{
				{Role: "system", Content: prompt},
				{Role: "user", Content: user},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("model call (round %d): %w", round, err)
		}
		rec.Model = resp.Model
		rec.PromptTokens += resp.PromptTokens
		rec.CompletionTokens += resp.CompletionTokens

		if resp.Content == "" {
			e.log.Warn("llm.extract.empty_content", "req_id", rid, "round", round)
			emptyRounds++
			lastErrs = nil
			continue
		}

		fields, verrs, err := e.validateContent(resp.Content, sch)
		if err != nil {
			return nil, err
		}
		if verrs == nil {
			rec.Fields = fields
			e.log.Info("llm.extract.ok",
				"req_id", rid,
				"schema", sch.Name,
				"round", round,
				"fields", len(fields),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return rec, nil
		}

		lastErrs = verrs
		e.log.Warn("llm.extract.validation_failed",
			"req_id", rid, "round", round, "errors", len(verrs))
	}

	if emptyRounds == rounds {
		return nil, fmt.Errorf("%w: empty content on all %d rounds", common.ErrNoModelResponse, rounds)
	}
	return nil, fmt.Errorf("schema validation failed after %d rounds: %s", rounds, formatErrs(lastErrs))
}

// validateContent parses, null-strips and validates one model reply. A reply
// that is not JSON at all counts as a validation failure (it can be corrected
// on the retry round), not a hard error.
func (e *SchemaExtractor) validateContent(content string, sch *schema.Schema) (map[string]any, []schema.FieldError, error) {
	m, perr := parseJSONObject(content)
	if perr != nil {
		return nil, []schema.FieldError{{Path: "", Message: perr.Error()}}, nil
	}
	normalized := schema.StripNulls(m)
	outcome, err := sch.Validate(normalized)
	if err != nil {
		return nil, nil, fmt.Errorf("validate against %s schema: %w", sch.Name, err)
	}
	if !outcome.Valid {
		return nil, outcome.Errors, nil
	}
	return outcome.Data, nil, nil
}

func formatErrs(errs []schema.FieldError) string {
	if len(errs) == 0 {
		return "no details"
	}
	s := ""
	for i, fe := range errs {
		if i > 0 {
			s += "; "
		}
		if fe.Path != "" {
			s += fe.Path + ": "
		}
		s += fe.Message
	}
	return s
}
