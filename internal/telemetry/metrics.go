package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	DocumentsIngested  metric.Int64Counter
	ExtractionDuration metric.Float64Histogram
	OCRFallbacks       metric.Int64Counter
	GeminiTokensUsed   metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("document-intel-platform")

	documentsIngested, err := meter.Int64Counter(
		"documents.ingested.total",
		metric.WithDescription("Total documents successfully ingested"),
	)
	if err != nil {
		return nil, err
	}

	extractionDuration, err := meter.Float64Histogram(
		"extraction.duration",
		metric.WithDescription("Document extraction duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	ocrFallbacks, err := meter.Int64Counter(
		"extraction.ocr_fallbacks.total",
		metric.WithDescription("Times the OCR fallback path was invoked"),
	)
	if err != nil {
		return nil, err
	}

	geminiTokensUsed, err := meter.Int64Counter(
		"gemini.tokens.used",
		metric.WithDescription("Total Gemini tokens used"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		DocumentsIngested:  documentsIngested,
		ExtractionDuration: extractionDuration,
		OCRFallbacks:       ocrFallbacks,
		GeminiTokensUsed:   geminiTokensUsed,
	}, nil
}

// RecordIngestion records a successful ingestion by source kind.
func (m *Metrics) RecordIngestion(ctx context.Context, sourceKind string) {
	if m == nil {
		return
	}
	m.DocumentsIngested.Add(ctx, 1, metric.WithAttributes(attribute.String("source.kind", sourceKind)))
}
