package ocr

import (
	"context"
	"log/slog"
	"strings"
)

// EngineConfig configures tesseract invocation.
type EngineConfig struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Languages string // tesseract language set, e.g. "fra+eng"; one value for all pages
}

// Engine runs tesseract over raster pages. One failing page is logged and
// skipped; the remaining pages still contribute in page order.
type Engine struct {
	cfg    EngineConfig
	runner Runner
	logger *slog.Logger
}

func NewEngine(cfg EngineConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Languages == "" {
		cfg.Languages = "fra+eng"
	}
	return &Engine{cfg: cfg, runner: execRunner{}, logger: logger}
}

// NewEngineWithRunner is the test constructor.
func NewEngineWithRunner(cfg EngineConfig, r Runner, logger *slog.Logger) *Engine {
	e := NewEngine(cfg, logger)
	e.runner = r
	return e
}

// Recognize OCRs each page independently and joins per-page text with a blank
// line so prompts can distinguish page boundaries informally.
func (e *Engine) Recognize(ctx context.Context, pages []RasterPage) string {
	var parts []string
	for _, p := range pages {
		// tesseract stdin stdout -l <langs>
		out, errb, err := e.runner.Run(ctx, p.PNG, e.cfg.Tesseract,
			"stdin", "stdout", "-l", e.cfg.Languages)
		if err != nil {
			e.logger.Warn("ocr.page_failed",
				"page", p.Index,
				"error", err,
				"stderr", truncate(string(errb), 2<<10),
			)
			continue
		}
		txt := strings.TrimSpace(string(out))
		if txt == "" {
			e.logger.Debug("ocr.page_empty", "page", p.Index)
			continue
		}
		parts = append(parts, txt)
	}
	return strings.Join(parts, "\n\n")
}
