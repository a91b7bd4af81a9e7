package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/abreton/candidoc/constants"
	"github.com/abreton/candidoc/internal/common"
	"github.com/abreton/candidoc/internal/llm"
	"github.com/abreton/candidoc/internal/schema"
	"github.com/abreton/candidoc/internal/usagelog"
)

type fakeUsage struct {
	events []usagelog.Event
}

func (f *fakeUsage) Log(_ context.Context, ev usagelog.Event) error {
	f.events = append(f.events, ev)
	return nil
}

func TestVisionExtractorSingleCallSuccess(t *testing.T) {
	client := &fakeClient{responses: []llm.ChatResponse{
		{Content: `{"firstName":"Jean","skills":["Go"]}`, Model: "gpt-4o", PromptTokens: 900, CompletionTokens: 40},
	}}
	usage := &fakeUsage{}
	v := NewVisionExtractor(client, VisionConfig{Model: "gpt-4o"}, usage, nil)

	rec, err := v.Extract(context.Background(), []byte{0x89, 'P', 'N', 'G'}, constants.MimePNG, schema.Resume())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(client.calls) != 1 {
		t.Fatalf("expected exactly 1 model call, got %d", len(client.calls))
	}
	if rec.BestEffort {
		t.Fatal("valid response must not be flagged best-effort")
	}
	if rec.Fields["firstName"] != "Jean" {
		t.Fatalf("firstName = %v", rec.Fields["firstName"])
	}
	if len(usage.events) != 1 {
		t.Fatalf("expected 1 usage event, got %d", len(usage.events))
	}
	ev := usage.events[0]
	if ev.InputType != constants.InputVision {
		t.Fatalf("input type = %q", ev.InputType)
	}
	if ev.Status != constants.AttemptSuccess {
		t.Fatalf("status = %q", ev.Status)
	}
	if ev.PromptTokens != 900 || ev.CompletionTokens != 40 {
		t.Fatalf("token usage not recorded: %d/%d", ev.PromptTokens, ev.CompletionTokens)
	}
}

func TestVisionExtractorBestEffortNoRetry(t *testing.T) {
	// Enum violation plus an unknown key: no second call, a best-effort record
	// restricted to declared fields with defaults substituted.
	client := &fakeClient{responses: []llm.ChatResponse{
		{Content: `{"contractType":"freelance","company":"Acme","shoeSize":"43"}`, Model: "gpt-4o"},
		{Content: `{"contractType":"cdi"}`}, // must never be reached
	}}
	usage := &fakeUsage{}
	v := NewVisionExtractor(client, VisionConfig{Model: "gpt-4o"}, usage, nil)

	rec, err := v.Extract(context.Background(), []byte{0x89}, constants.MimePNG, schema.JobOffer())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(client.calls) != 1 {
		t.Fatalf("expected exactly 1 model call, got %d", len(client.calls))
	}
	if !rec.BestEffort {
		t.Fatal("invalid response must be flagged best-effort")
	}
	if _, ok := rec.Fields["shoeSize"]; ok {
		t.Fatal("unknown field leaked into best-effort record")
	}
	if rec.Fields["company"] != "Acme" {
		t.Fatalf("company = %v", rec.Fields["company"])
	}
	if rec.Fields["title"] != schema.DefaultOfferTitle {
		t.Fatalf("title default missing: %v", rec.Fields["title"])
	}
}

func TestVisionExtractorEmptyContent(t *testing.T) {
	client := &fakeClient{responses: []llm.ChatResponse{{Content: ""}}}
	usage := &fakeUsage{}
	v := NewVisionExtractor(client, VisionConfig{Model: "gpt-4o"}, usage, nil)

	_, err := v.Extract(context.Background(), []byte{0x89}, constants.MimePNG, schema.Resume())
	if !errors.Is(err, common.ErrNoModelResponse) {
		t.Fatalf("expected ErrNoModelResponse, got %v", err)
	}
	if len(usage.events) != 1 {
		t.Fatalf("expected 1 usage event, got %d", len(usage.events))
	}
	if usage.events[0].Status != constants.AttemptError {
		t.Fatalf("status = %q", usage.events[0].Status)
	}
}

func TestVisionExtractorCallError(t *testing.T) {
	client := &fakeClient{errs: []error{errors.New("timeout")}}
	usage := &fakeUsage{}
	v := NewVisionExtractor(client, VisionConfig{Model: "gpt-4o"}, usage, nil)

	_, err := v.Extract(context.Background(), []byte{0x89}, constants.MimeJPEG, schema.Resume())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(usage.events) != 1 || usage.events[0].Status != constants.AttemptError {
		t.Fatalf("expected one error usage event, got %#v", usage.events)
	}
}
