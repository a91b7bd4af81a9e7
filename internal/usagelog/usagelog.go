package usagelog

import (
	"context"
	"log/slog"
	"time"

	"github.com/abreton/candidoc/constants"
)

// Event is one attempt/outcome record handed to the persistence collaborator.
// The pipeline only produces these; storing them is the store's concern.
type Event struct {
	EntityType       constants.EntityType
	InputType        constants.InputType
	InputSizeChars   int
	Model            string
	PromptTokens     int
	CompletionTokens int
	CostEstimateUSD  float64 // 0 when the model is not in the price table
	Status           constants.AttemptStatus
	DurationMs       int64
	ErrorMessage     string
	CreatedAt        time.Time
}

// Logger records usage events. Implementations must not fail the pipeline: a
// store error is the store's problem, extraction already happened.
type Logger interface {
	Log(ctx context.Context, ev Event) error
}

// SlogLogger writes events to structured logs. Always available; the default
// when no store is configured.
type SlogLogger struct {
	log *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{log: logger}
}

func (s *SlogLogger) Log(_ context.Context, ev Event) error {
	s.log.Info("usage.event",
		"entity_type", ev.EntityType,
		"input_type", ev.InputType,
		"input_size_chars", ev.InputSizeChars,
		"model", ev.Model,
		"prompt_tokens", ev.PromptTokens,
		"completion_tokens", ev.CompletionTokens,
		"cost_estimate_usd", ev.CostEstimateUSD,
		"status", ev.Status,
		"duration_ms", ev.DurationMs,
		"error", ev.ErrorMessage,
	)
	return nil
}

// modelPrices is USD per 1k tokens (prompt, completion) for cost accounting.
var modelPrices = map[string][2]float64{
	"gpt-4o":      {0.0025, 0.01},
	"gpt-4o-mini": {0.00015, 0.0006},
}

// EstimateCost returns the estimated USD cost of a call, 0 for unknown models.
func EstimateCost(model string, promptTokens, completionTokens int) float64 {
	p, ok := modelPrices[model]
	if !ok {
		return 0
	}
	return float64(promptTokens)/1000*p[0] + float64(completionTokens)/1000*p[1]
}
