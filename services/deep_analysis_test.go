package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"document-intel-platform/internal/config"
)

type fakeVisionGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeVisionGenerator) GenerateWithImage(ctx context.Context, prompt string, png []byte) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "analysis of " + string(png), nil
}

func (f *fakeVisionGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func analysisConfig() *config.Config {
	return &config.Config{AnalysisPageLimit: 3, OCRDPI: 150}
}

func TestAnalyzeReassemblesPagesInOrder(t *testing.T) {
	gen := &fakeVisionGenerator{}
	svc := NewDeepAnalysisService(gen, analysisConfig())

	src := &fakeSource{pages: make([]string, 2)}

	got, err := svc.Analyze(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "--- Page 1 ---\nanalysis of png-page-0\n\n--- Page 2 ---\nanalysis of png-page-1"
	if got != want {
		t.Fatalf("wrong analysis layout:\ngot  %q\nwant %q", got, want)
	}
}

func TestAnalyzeRespectsPageCap(t *testing.T) {
	gen := &fakeVisionGenerator{}
	svc := NewDeepAnalysisService(gen, analysisConfig())

	src := &fakeSource{pages: make([]string, 10)}

	got, err := svc.Analyze(context.Background(), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.callCount() != 3 {
		t.Fatalf("expected 3 backend calls, got %d", gen.callCount())
	}
	if strings.Contains(got, "Page 4") {
		t.Fatalf("pages beyond the cap leaked into output: %q", got)
	}
}

func TestAnalyzeFailsWholeRunOnBackendError(t *testing.T) {
	backendErr := errors.New("model overloaded")
	gen := &fakeVisionGenerator{err: backendErr}
	svc := NewDeepAnalysisService(gen, analysisConfig())

	src := &fakeSource{pages: make([]string, 3)}

	_, err := svc.Analyze(context.Background(), src)
	if !errors.Is(err, backendErr) {
		t.Fatalf("expected backend error to fail the run, got %v", err)
	}
}

func TestAnalyzeWithoutBackend(t *testing.T) {
	svc := NewDeepAnalysisService(nil, analysisConfig())

	src := &fakeSource{pages: make([]string, 1)}

	_, err := svc.Analyze(context.Background(), src)
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestAnalyzeEmptyDocument(t *testing.T) {
	gen := &fakeVisionGenerator{}
	svc := NewDeepAnalysisService(gen, analysisConfig())

	if _, err := svc.Analyze(context.Background(), &fakeSource{}); err == nil {
		t.Fatal("expected an error for a document with no pages")
	}
}
