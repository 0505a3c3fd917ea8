package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"document-intel-platform/internal/config"
)

// fakeSource is an in-memory document with a text layer per page.
type fakeSource struct {
	pages    []string
	textErrs map[int]error
	rendered int
}

func (f *fakeSource) NumPages() int { return len(f.pages) }

func (f *fakeSource) PageText(page int) (string, error) {
	if err, ok := f.textErrs[page]; ok {
		return "", err
	}
	return f.pages[page], nil
}

func (f *fakeSource) RenderPNG(page int, dpi float64) ([]byte, error) {
	f.rendered++
	return []byte(fmt.Sprintf("png-page-%d", page)), nil
}

// fakeOCR counts calls and answers with a fixed text or error.
type fakeOCR struct {
	calls int
	text  string
	err   error
}

func (f *fakeOCR) Recognize(ctx context.Context, png []byte) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func testFallback(backend OCRBackend) *OCRFallbackExtractor {
	cfg := &config.Config{OCRPageLimit: 5, OCRDPI: 150, OCRTimeout: 5}
	return NewOCRFallbackExtractor(backend, cfg)
}

func TestExtractAcceptsPrimaryAboveThreshold(t *testing.T) {
	ocr := &fakeOCR{text: "ocr text that must never be used"}
	orch := NewExtractionOrchestrator(50, testFallback(ocr), nil)

	long := strings.Repeat("sufficiently long text. ", 10)
	src := &fakeSource{pages: []string{long, "second page"}}

	text, exErr := orch.Extract(context.Background(), src)
	if exErr != nil {
		t.Fatalf("unexpected error: %v", exErr)
	}
	want := long + "\n" + "second page"
	if text != want {
		t.Fatalf("wrong text: got %q, want %q", text, want)
	}
	if ocr.calls != 0 {
		t.Fatalf("OCR must not run when primary is above threshold, got %d calls", ocr.calls)
	}
}

func TestExtractOCRReplacesSparsePrimary(t *testing.T) {
	ocr := &fakeOCR{text: "recognized scanned content"}
	orch := NewExtractionOrchestrator(50, testFallback(ocr), nil)

	src := &fakeSource{pages: []string{"tiny"}}

	text, exErr := orch.Extract(context.Background(), src)
	if exErr != nil {
		t.Fatalf("unexpected error: %v", exErr)
	}
	if text != "recognized scanned content" {
		t.Fatalf("OCR output must replace primary entirely, got %q", text)
	}
	if ocr.calls == 0 {
		t.Fatal("expected OCR to run for sparse primary text")
	}
}

func TestExtractKeepsSparsePrimaryWhenOCRFails(t *testing.T) {
	ocr := &fakeOCR{err: errors.New("backend down")}
	orch := NewExtractionOrchestrator(50, testFallback(ocr), nil)

	src := &fakeSource{pages: []string{"tiny but real"}}

	text, exErr := orch.Extract(context.Background(), src)
	if exErr != nil {
		t.Fatalf("some text beats no text, got error: %v", exErr)
	}
	if text != "tiny but real" {
		t.Fatalf("expected original primary text back, got %q", text)
	}
}

func TestExtractFailsWhenNothingRecovered(t *testing.T) {
	ocrErr := errors.New("image quality too low")
	ocr := &fakeOCR{err: ocrErr}
	orch := NewExtractionOrchestrator(50, testFallback(ocr), nil)

	src := &fakeSource{pages: []string{"", "  \n "}}

	_, exErr := orch.Extract(context.Background(), src)
	if exErr == nil {
		t.Fatal("expected extraction to fail")
	}
	if exErr.Kind != FailureNoTextRecovered {
		t.Fatalf("wrong failure kind: %v", exErr.Kind)
	}
	if !errors.Is(exErr, ocrErr) {
		t.Fatalf("expected OCR diagnostic to be carried, got %v", exErr.Detail)
	}
}

func TestExtractEmptyDocument(t *testing.T) {
	ocr := &fakeOCR{text: "should not run"}
	orch := NewExtractionOrchestrator(50, testFallback(ocr), nil)

	src := &fakeSource{}

	_, exErr := orch.Extract(context.Background(), src)
	if exErr == nil || exErr.Kind != FailureEmptyDocument {
		t.Fatalf("expected EmptyDocument failure, got %v", exErr)
	}
	if ocr.calls != 0 {
		t.Fatal("OCR must not run for a zero-page document")
	}
}

func TestExtractSkipsBrokenPages(t *testing.T) {
	ocr := &fakeOCR{}
	orch := NewExtractionOrchestrator(10, testFallback(ocr), nil)

	src := &fakeSource{
		pages:    []string{"first page text here", "", "third page text here"},
		textErrs: map[int]error{1: errors.New("corrupt xref")},
	}

	text, exErr := orch.Extract(context.Background(), src)
	if exErr != nil {
		t.Fatalf("unexpected error: %v", exErr)
	}
	if !strings.Contains(text, "first page text here") || !strings.Contains(text, "third page text here") {
		t.Fatalf("pages around a broken one must still contribute, got %q", text)
	}
}
