package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"document-intel-platform/internal/config"
	"document-intel-platform/internal/logger"
)

// OCRFallbackExtractor recovers text from scanned documents by rendering
// pages to images and running them through an OCR backend.
type OCRFallbackExtractor struct {
	backend   OCRBackend
	pageLimit int
	dpi       float64
	timeout   time.Duration
}

func NewOCRFallbackExtractor(backend OCRBackend, cfg *config.Config) *OCRFallbackExtractor {
	return &OCRFallbackExtractor{
		backend:   backend,
		pageLimit: cfg.OCRPageLimit,
		dpi:       cfg.OCRDPI,
		timeout:   time.Duration(cfg.OCRTimeout) * time.Second,
	}
}

// Recognize renders up to the page cap and concatenates per-page OCR text
// in page order. A failure on one page is logged and skipped; the other
// pages still contribute. Only a run where no page produced text is an
// error, carrying the most recent page-level diagnostic.
func (e *OCRFallbackExtractor) Recognize(ctx context.Context, renderer PageRenderer) (string, error) {
	pages := renderer.NumPages()
	if pages > e.pageLimit {
		pages = e.pageLimit
	}

	var parts []string
	var lastErr error

	for i := 0; i < pages; i++ {
		if ctx.Err() != nil {
			// Cancelled mid-run: pages recognized so far are still usable.
			lastErr = ctx.Err()
			break
		}

		png, err := renderer.RenderPNG(i, e.dpi)
		if err != nil {
			logger.Warn("Failed to render page for OCR", "page", i+1, "error", err)
			lastErr = err
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		text, err := e.backend.Recognize(callCtx, png)
		cancel()
		if err != nil {
			logger.Warn("OCR failed on page", "page", i+1, "error", err)
			lastErr = err
			continue
		}

		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		if lastErr != nil {
			return "", fmt.Errorf("OCR recovered no text: %w", lastErr)
		}
		return "", errors.New("OCR recovered no text (image quality too low?)")
	}

	return strings.Join(parts, "\n"), nil
}
