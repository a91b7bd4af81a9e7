package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/abreton/candidoc/constants"
	"github.com/abreton/candidoc/internal/common"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractDocx(t *testing.T) {
	doc := `<?xml version="1.0"?><w:document xmlns:w="ns"><w:body>` +
		`<w:p><w:r><w:t>Jean Dupont</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Stagiaire en informatique</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	data := buildDocx(t, doc)

	e := NewTextExtractor()
	text, err := e.Extract(context.Background(), data, constants.MimeDOCX)
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	want := "Jean Dupont\nStagiaire en informatique"
	if text != want {
		t.Fatalf("got %q, want %q", text, want)
	}
}

func TestExtractDocxMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("notes.txt")
	_, _ = w.Write([]byte("hello"))
	_ = zw.Close()

	e := NewTextExtractor()
	_, err := e.Extract(context.Background(), buf.Bytes(), constants.MimeDOCX)
	if !errors.Is(err, common.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestExtractImageUnsupported(t *testing.T) {
	e := NewTextExtractor()
	_, err := e.Extract(context.Background(), []byte{0xFF, 0xD8}, constants.MimeJPEG)
	if !errors.Is(err, common.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestExtractCorruptPDFDoesNotPanic(t *testing.T) {
	e := NewTextExtractor()
	_, err := e.Extract(context.Background(), []byte("%PDF-1.4 garbage"), constants.MimePDF)
	if !errors.Is(err, common.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestExtractUnknownMime(t *testing.T) {
	e := NewTextExtractor()
	_, err := e.Extract(context.Background(), []byte("plain"), "text/plain")
	if !errors.Is(err, common.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}
