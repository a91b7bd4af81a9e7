package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// RasterPage is one rendered PDF page. Owned by the converter during a single
// call; the pipeline consumes the slice and discards it.
type RasterPage struct {
	Index int
	PNG   []byte
}

// ConverterConfig bounds the rasterization stage.
type ConverterConfig struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	Scale    int    // upscale factor over the 72dpi base; default 2
	MaxPages int    // hard page cap; default 5
}

// Converter renders PDF pages to PNG through pdftoppm. The page cap is an
// explicit, testable parameter: pdftoppm is told to stop at MaxPages and the
// result is capped again before return.
type Converter struct {
	cfg    ConverterConfig
	runner Runner
	logger *slog.Logger
}

func NewConverter(cfg ConverterConfig, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 5
	}
	return &Converter{cfg: cfg, runner: execRunner{}, logger: logger}
}

// NewConverterWithRunner is the test constructor.
func NewConverterWithRunner(cfg ConverterConfig, r Runner, logger *slog.Logger) *Converter {
	c := NewConverter(cfg, logger)
	c.runner = r
	return c
}

// Pages renders at most MaxPages pages of pdfBytes. Whole-conversion failure
// (corrupt PDF, missing binary) yields an empty slice, never an error: the
// pipeline treats that as "OCR stage unavailable" and falls through.
func (c *Converter) Pages(ctx context.Context, pdfBytes []byte) []RasterPage {
	tmpDir, err := os.MkdirTemp("", "candidoc-pp-*")
	if err != nil {
		c.logger.Error("raster.tmpdir_failed", "error", err)
		return nil
	}
	defer func() {
		if rerr := os.RemoveAll(tmpDir); rerr != nil {
			c.logger.Warn("raster.tmpdir_cleanup_failed", "dir", tmpDir, "error", rerr)
		}
	}()

	in := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(in, pdfBytes, 0o600); err != nil {
		c.logger.Error("raster.write_failed", "error", err)
		return nil
	}

	dpi := 72 * c.cfg.Scale
	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -f 1 -l <maxPages> -png <in.pdf> <tmp/page>
	_, errb, err := c.runner.Run(ctx, nil, c.cfg.Pdftoppm,
		"-r", fmt.Sprintf("%d", dpi),
		"-f", "1", "-l", fmt.Sprintf("%d", c.cfg.MaxPages),
		"-png", in, prefix)
	if err != nil {
		c.logger.Error("raster.pdftoppm_failed", "error", err, "stderr", truncate(string(errb), 2<<10))
		return nil
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) > c.cfg.MaxPages {
		matches = matches[:c.cfg.MaxPages]
	}
	if len(matches) == 0 {
		c.logger.Warn("raster.no_pages", "bytes", len(pdfBytes))
		return nil
	}

	pages := make([]RasterPage, 0, len(matches))
	for i, img := range matches {
		data, rerr := os.ReadFile(img)
		if rerr != nil {
			c.logger.Warn("raster.page_read_failed", "page", i+1, "error", rerr)
			continue
		}
		pages = append(pages, RasterPage{Index: i, PNG: data})
	}
	c.logger.Debug("raster.ok", "pages", len(pages), "dpi", dpi)
	return pages
}
