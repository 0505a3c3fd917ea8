package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"document-intel-platform/internal/config"
)

type fakeTextGenerator struct {
	calls  int
	prompt string
	reply  string
	err    error
}

func (f *fakeTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func summaryConfig() *config.Config {
	return &config.Config{SummaryMinLength: 50, SummaryInputLimit: 30000}
}

func TestSummarizeShortInputSkipsBackend(t *testing.T) {
	gen := &fakeTextGenerator{reply: "should never be produced"}
	svc := NewSummarizationService(gen, summaryConfig())

	got, err := svc.Summarize(context.Background(), "   short note   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != SummaryPlaceholder {
		t.Fatalf("expected placeholder, got %q", got)
	}
	if gen.calls != 0 {
		t.Fatalf("backend must not be called for short input, got %d calls", gen.calls)
	}
}

func TestSummarizeCallsBackend(t *testing.T) {
	gen := &fakeTextGenerator{reply: "A concise summary."}
	svc := NewSummarizationService(gen, summaryConfig())

	text := strings.Repeat("meaningful document content. ", 10)
	got, err := svc.Summarize(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "A concise summary." {
		t.Fatalf("wrong summary: %q", got)
	}
	if !strings.Contains(gen.prompt, "meaningful document content.") {
		t.Fatalf("document text missing from prompt: %q", gen.prompt)
	}
}

func TestSummarizeTruncatesLongInput(t *testing.T) {
	gen := &fakeTextGenerator{reply: "ok"}
	cfg := summaryConfig()
	cfg.SummaryInputLimit = 200
	svc := NewSummarizationService(gen, cfg)

	text := strings.Repeat("x", 5000)
	if _, err := svc.Summarize(context.Background(), text); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := utf8.RuneCountInString(gen.prompt); n > 300 {
		t.Fatalf("prompt not truncated to the input budget, %d runes", n)
	}
}

func TestSummarizePropagatesBackendError(t *testing.T) {
	backendErr := errors.New("quota exceeded")
	gen := &fakeTextGenerator{err: backendErr}
	svc := NewSummarizationService(gen, summaryConfig())

	_, err := svc.Summarize(context.Background(), strings.Repeat("long enough input. ", 10))
	if !errors.Is(err, backendErr) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestSummarizeWithoutBackend(t *testing.T) {
	svc := NewSummarizationService(nil, summaryConfig())

	// Short input still short-circuits even with no backend configured.
	got, err := svc.Summarize(context.Background(), "tiny")
	if err != nil || got != SummaryPlaceholder {
		t.Fatalf("expected placeholder without error, got %q, %v", got, err)
	}

	_, err = svc.Summarize(context.Background(), strings.Repeat("long enough input. ", 10))
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}
