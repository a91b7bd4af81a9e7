package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

// stubRunner replays canned results and records invocations.
type stubRunner struct {
	calls   [][]string
	handler func(stdin []byte, name string, args []string) ([]byte, []byte, error)
}

func (s *stubRunner) Run(_ context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	return s.handler(stdin, name, args)
}

func TestConverterPages(t *testing.T) {
	// The stub plays pdftoppm: write three PNGs at the requested prefix.
	r := &stubRunner{handler: func(_ []byte, _ string, args []string) ([]byte, []byte, error) {
		prefix := args[len(args)-1]
		for i := 1; i <= 3; i++ {
			if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), []byte{0x89, byte(i)}, 0o600); err != nil {
				t.Fatalf("stub write: %v", err)
			}
		}
		return nil, nil, nil
	}}
	c := NewConverterWithRunner(ConverterConfig{Scale: 2, MaxPages: 5}, r, nil)

	pages := c.Pages(context.Background(), []byte("%PDF-1.4"))
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for i, p := range pages {
		if p.Index != i {
			t.Fatalf("page %d has index %d", i, p.Index)
		}
	}
	if pages[0].PNG[1] != 1 || pages[2].PNG[1] != 3 {
		t.Fatal("pages out of order")
	}

	call := r.calls[0]
	joined := strings.Join(call, " ")
	if !strings.Contains(joined, "-r 144") {
		t.Fatalf("expected 144 dpi for scale 2, got %q", joined)
	}
	if !strings.Contains(joined, "-l 5") {
		t.Fatalf("expected page cap in command, got %q", joined)
	}
}

func TestConverterPageCap(t *testing.T) {
	// A pdftoppm that ignores -l still cannot exceed the cap.
	r := &stubRunner{handler: func(_ []byte, _ string, args []string) ([]byte, []byte, error) {
		prefix := args[len(args)-1]
		for i := 1; i <= 4; i++ {
			if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), []byte{byte(i)}, 0o600); err != nil {
				t.Fatalf("stub write: %v", err)
			}
		}
		return nil, nil, nil
	}}
	c := NewConverterWithRunner(ConverterConfig{MaxPages: 2}, r, nil)

	pages := c.Pages(context.Background(), []byte("%PDF-1.4"))
	if len(pages) != 2 {
		t.Fatalf("expected cap at 2 pages, got %d", len(pages))
	}
}

func TestConverterFailureYieldsNoPages(t *testing.T) {
	r := &stubRunner{handler: func(_ []byte, _ string, _ []string) ([]byte, []byte, error) {
		return nil, []byte("Syntax Error: couldn't read xref table"), errors.New("exit status 1")
	}}
	c := NewConverterWithRunner(ConverterConfig{}, r, nil)

	if pages := c.Pages(context.Background(), []byte("garbage")); pages != nil {
		t.Fatalf("expected nil on conversion failure, got %d pages", len(pages))
	}
}

func TestEngineRecognizeJoinsPagesInOrder(t *testing.T) {
	r := &stubRunner{handler: func(stdin []byte, _ string, _ []string) ([]byte, []byte, error) {
		return []byte(fmt.Sprintf("page %d text\n", stdin[0])), nil, nil
	}}
	e := NewEngineWithRunner(EngineConfig{Languages: "fra+eng"}, r, nil)

	text := e.Recognize(context.Background(), []RasterPage{
		{Index: 0, PNG: []byte{1}},
		{Index: 1, PNG: []byte{2}},
	})
	want := "page 1 text\n\npage 2 text"
	if text != want {
		t.Fatalf("got %q, want %q", text, want)
	}

	for _, call := range r.calls {
		joined := strings.Join(call, " ")
		if !strings.Contains(joined, "stdin stdout") || !strings.Contains(joined, "-l fra+eng") {
			t.Fatalf("unexpected tesseract invocation: %q", joined)
		}
	}
}

func TestEngineSkipsFailingAndEmptyPages(t *testing.T) {
	r := &stubRunner{handler: func(stdin []byte, _ string, _ []string) ([]byte, []byte, error) {
		switch stdin[0] {
		case 1:
			return nil, []byte("Error in pixReadStream"), errors.New("exit status 1")
		case 2:
			return []byte("   \n"), nil, nil
		default:
			return []byte("readable page"), nil, nil
		}
	}}
	e := NewEngineWithRunner(EngineConfig{}, r, nil)

	text := e.Recognize(context.Background(), []RasterPage{
		{Index: 0, PNG: []byte{1}},
		{Index: 1, PNG: []byte{2}},
		{Index: 2, PNG: []byte{3}},
	})
	if text != "readable page" {
		t.Fatalf("got %q", text)
	}
	if len(r.calls) != 3 {
		t.Fatalf("every page must still be attempted, got %d calls", len(r.calls))
	}
}

func TestEngineNoPages(t *testing.T) {
	r := &stubRunner{handler: func(_ []byte, _ string, _ []string) ([]byte, []byte, error) {
		t.Fatal("runner must not be invoked without pages")
		return nil, nil, nil
	}}
	e := NewEngineWithRunner(EngineConfig{}, r, nil)
	if text := e.Recognize(context.Background(), nil); text != "" {
		t.Fatalf("got %q", text)
	}
}
