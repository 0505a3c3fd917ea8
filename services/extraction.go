package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"document-intel-platform/internal/logger"
	"document-intel-platform/internal/telemetry"
)

// PageSource exposes the embedded text layer of a paged document.
type PageSource interface {
	NumPages() int
	PageText(page int) (string, error)
}

// PageRenderer rasterizes pages of a paged document.
type PageRenderer interface {
	NumPages() int
	RenderPNG(page int, dpi float64) ([]byte, error)
}

// DocumentSource is what the orchestrator needs from a document: the text
// layer for primary extraction and page images for the OCR fallback.
type DocumentSource interface {
	PageSource
	PageRenderer
}

// ExtractionOrchestrator decides how to turn a document into usable text.
// Primary extraction reads the embedded text layer; when that yields less
// than the threshold, the OCR fallback takes over.
type ExtractionOrchestrator struct {
	threshold int
	ocr       *OCRFallbackExtractor
	metrics   *telemetry.Metrics
}

func NewExtractionOrchestrator(threshold int, ocr *OCRFallbackExtractor, metrics *telemetry.Metrics) *ExtractionOrchestrator {
	return &ExtractionOrchestrator{
		threshold: threshold,
		ocr:       ocr,
		metrics:   metrics,
	}
}

// Extract runs the extraction policy:
//
//  1. Concatenate the text layer of every page, newline-separated.
//  2. At or above the threshold (trimmed), the primary result wins and OCR
//     is never attempted. OCR is expensive; it only runs when the primary
//     result is judged insufficient.
//  3. Below the threshold, OCR runs over a capped number of pages and a
//     non-empty OCR result replaces the primary text entirely.
//  4. If OCR also recovers nothing, sparse primary text is still returned
//     (some text beats no text). Only a fully empty outcome is an error.
func (o *ExtractionOrchestrator) Extract(ctx context.Context, src DocumentSource) (string, *ExtractionError) {
	pages := src.NumPages()
	if pages == 0 {
		return "", &ExtractionError{Kind: FailureEmptyDocument}
	}

	var b strings.Builder
	for i := 0; i < pages; i++ {
		text, err := src.PageText(i)
		if err != nil {
			// A broken page contributes no text but must not abort
			// the rest of the document.
			logger.Warn("Failed to read page text layer", "page", i+1, "error", err)
			continue
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(text)
	}

	primary := b.String()
	stripped := strings.TrimSpace(primary)

	if utf8.RuneCountInString(stripped) >= o.threshold {
		return primary, nil
	}

	logger.Info("Primary extraction below threshold, attempting OCR fallback",
		"chars", utf8.RuneCountInString(stripped), "threshold", o.threshold)
	if o.metrics != nil {
		o.metrics.OCRFallbacks.Add(ctx, 1)
	}

	ocrText, err := o.ocr.Recognize(ctx, src)
	if err == nil && strings.TrimSpace(ocrText) != "" {
		// OCR output replaces the sparse primary result, never merged.
		return ocrText, nil
	}

	if stripped != "" {
		// Below threshold but not empty: keep what the text layer gave us.
		logger.Warn("OCR recovered nothing, keeping sparse primary text",
			"chars", utf8.RuneCountInString(stripped), "ocr_error", err)
		return primary, nil
	}

	return "", &ExtractionError{Kind: FailureNoTextRecovered, Detail: err}
}
