package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/abreton/candidoc/internal/extractor"
	"github.com/abreton/candidoc/internal/schema"
)

// Service produces XLSX workbooks from extracted records, one row per record,
// columns in declared schema order.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// RecordsXLSX renders records extracted against sch into workbook bytes. The
// trailing columns carry per-record token usage for cost review.
func (s *Service) RecordsXLSX(sch *schema.Schema, recs []*extractor.Record) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	sheet := sheetName(sch.Name)
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// drop the default sheet excelize creates
	if sheet != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := append(sch.FieldNames(), "Prompt Tokens", "Completion Tokens", "Best Effort")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		for i, name := range sch.FieldNames() {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, cellValue(r.Fields[name]))
		}
		base := len(sch.FieldNames())
		cell, _ := excelize.CoordinatesToCellName(base+1, row)
		_ = f.SetCellValue(sheet, cell, r.PromptTokens)
		cell, _ = excelize.CoordinatesToCellName(base+2, row)
		_ = f.SetCellValue(sheet, cell, r.CompletionTokens)
		cell, _ = excelize.CoordinatesToCellName(base+3, row)
		_ = f.SetCellValue(sheet, cell, r.BestEffort)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"schema", sch.Name,
		"records", len(recs),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// cellValue flattens a field value for a spreadsheet cell; string arrays are
// comma-joined.
func cellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, el := range t {
			parts = append(parts, fmt.Sprintf("%v", el))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	default:
		return t
	}
}

func sheetName(schemaName string) string {
	switch schemaName {
	case "resume":
		return "Resumes"
	case "job_offer":
		return "JobOffers"
	default:
		return "Records"
	}
}
