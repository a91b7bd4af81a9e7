package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/abreton/candidoc/constants"
	"github.com/abreton/candidoc/internal/common"
)

// TextExtractor is Stage 1: document bytes -> native text.
// Libraries used: github.com/ledongthuc/pdf (PDF text layer); DOCX is read
// directly from the OOXML zip (word/document.xml).
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract pulls the embedded text from a PDF or DOCX payload. Image inputs
// return ErrUnsupportedType so the caller routes them straight to the raster
// path. A malformed document returns ErrMalformedInput, never a panic; the
// cascade must be able to continue past this stage.
func (e *TextExtractor) Extract(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch constants.MapMimeToFormat(mimeType) {
	case constants.PDF:
		return extractPDF(data)
	case constants.DOCX:
		return extractDOCX(data)
	case constants.IMAGE:
		return "", fmt.Errorf("%w: no text layer in %s", common.ErrUnsupportedType, mimeType)
	default:
		return "", fmt.Errorf("%w: mime type %q", common.ErrUnsupportedType, mimeType)
	}
}

func extractPDF(data []byte) (text string, err error) {
	// The pdf package panics on some corrupt cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: pdf parser: %v", common.ErrMalformedInput, r)
		}
	}()

	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrMalformedInput, err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrMalformedInput, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrMalformedInput, err)
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty docx data", common.ErrMalformedInput)
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrMalformedInput, err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("%w: document.xml not found", common.ErrMalformedInput)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrMalformedInput, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrMalformedInput, err)
	}

	return stripDocxXML(string(raw)), nil
}

// stripDocxXML keeps character data only, inserting a newline at paragraph
// and line-break boundaries. Styling and embedded objects are ignored.
func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
