package services

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"document-intel-platform/internal/logger"
	"document-intel-platform/internal/pdfdoc"
	"document-intel-platform/internal/store"
	"document-intel-platform/internal/telemetry"
	"document-intel-platform/models"
)

// WarnSummaryUnavailable is attached to an otherwise successful save when
// the summary backend failed. Summarization never blocks record creation.
const WarnSummaryUnavailable = "AI summary unavailable"

// DocumentService composes extraction, enrichment and persistence into the
// ingestion pipeline.
type DocumentService struct {
	store        *store.DocumentStore
	orchestrator *ExtractionOrchestrator
	web          *WebPageExtractor
	summarizer   *SummarizationService
	analyzer     *DeepAnalysisService
	metrics      *telemetry.Metrics

	// analyses collapses concurrent deep-analysis triggers for the same
	// record id into a single execution.
	analyses singleflight.Group

	// openDocument is swappable in tests.
	openDocument func(path string) (openedDocument, error)
}

type openedDocument interface {
	DocumentSource
	Close() error
}

func NewDocumentService(
	st *store.DocumentStore,
	orchestrator *ExtractionOrchestrator,
	web *WebPageExtractor,
	summarizer *SummarizationService,
	analyzer *DeepAnalysisService,
	metrics *telemetry.Metrics,
) *DocumentService {
	return &DocumentService{
		store:        st,
		orchestrator: orchestrator,
		web:          web,
		summarizer:   summarizer,
		analyzer:     analyzer,
		metrics:      metrics,
		openDocument: func(path string) (openedDocument, error) {
			return pdfdoc.Open(path)
		},
	}
}

// IngestPDF extracts text from the stored PDF at filePath and persists a
// record. The returned warning is non-empty when the summary degraded.
// Extraction failure aborts before anything is persisted.
func (s *DocumentService) IngestPDF(ctx context.Context, filePath, name string) (*models.Document, string, error) {
	start := time.Now()

	doc, err := s.openDocument(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	text, exErr := s.orchestrator.Extract(ctx, doc)
	if exErr != nil {
		return nil, "", exErr
	}

	if s.metrics != nil {
		s.metrics.ExtractionDuration.Record(ctx, time.Since(start).Seconds())
	}

	if name == "" {
		name = filepath.Base(filePath)
	}

	return s.persist(ctx, &models.Document{
		Name:           name,
		SourceKind:     models.SourcePDF,
		SourceLocation: filePath,
		RawText:        text,
	})
}

// IngestURL fetches a web page, normalizes its text and persists a record.
func (s *DocumentService) IngestURL(ctx context.Context, pageURL, name string) (*models.Document, string, error) {
	text, err := s.web.Extract(ctx, pageURL)
	if err != nil || strings.TrimSpace(text) == "" {
		logger.Warn("URL fetch failed", "url", pageURL, "error", err)
		return nil, "", fmt.Errorf("%w: %s", ErrFetchFailed, pageURL)
	}

	if name == "" {
		name = pageURL
		if parsed, err := url.Parse(pageURL); err == nil && parsed.Host != "" {
			name = parsed.Host
		}
	}

	return s.persist(ctx, &models.Document{
		Name:           name,
		SourceKind:     models.SourceURL,
		SourceLocation: pageURL,
		RawText:        text,
	})
}

func (s *DocumentService) persist(ctx context.Context, doc *models.Document) (*models.Document, string, error) {
	warning := ""
	summary, err := s.summarizer.Summarize(ctx, doc.RawText)
	if err != nil {
		logger.Warn("Summarization failed", "name", doc.Name, "error", err)
		warning = WarnSummaryUnavailable
	} else {
		doc.Summary = &summary
	}

	if _, err := s.store.Create(ctx, doc); err != nil {
		return nil, "", err
	}

	if s.metrics != nil {
		s.metrics.RecordIngestion(ctx, string(doc.SourceKind))
	}
	logger.Info("Document ingested", "id", doc.ID, "name", doc.Name, "kind", doc.SourceKind)

	return doc, warning, nil
}

// Get returns one record by id.
func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.store.GetByID(ctx, id)
}

// List returns records newest-first, optionally filtered.
func (s *DocumentService) List(ctx context.Context, filter string) ([]models.Document, error) {
	return s.store.List(ctx, filter)
}

type analysisOutcome struct {
	text    string
	existed bool
}

// Analyze runs deep analysis for a PDF record exactly once. A record that
// already carries an analysis short-circuits without a backend call;
// concurrent triggers for the same id share one execution; the store-level
// conditional update breaks any remaining race. Backend failures are
// retryable and leave the record unchanged.
func (s *DocumentService) Analyze(ctx context.Context, id string) (string, bool, error) {
	v, err, _ := s.analyses.Do(id, func() (interface{}, error) {
		return s.analyzeOnce(ctx, id)
	})
	if err != nil {
		return "", false, err
	}
	outcome := v.(*analysisOutcome)
	return outcome.text, outcome.existed, nil
}

func (s *DocumentService) analyzeOnce(ctx context.Context, id string) (*analysisOutcome, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if rec.SourceKind != models.SourcePDF {
		return nil, ErrAnalysisNotApplicable
	}

	if rec.DeepAnalysis != nil {
		return &analysisOutcome{text: *rec.DeepAnalysis, existed: true}, nil
	}

	doc, err := s.openDocument(rec.SourceLocation)
	if err != nil {
		return nil, fmt.Errorf("document file no longer available: %w", err)
	}
	defer doc.Close()

	analysis, err := s.analyzer.Analyze(ctx, doc)
	if err != nil {
		return nil, err
	}

	switch err := s.store.SetDeepAnalysis(ctx, id, analysis); err {
	case nil:
		logger.Info("Deep analysis stored", "id", id)
		return &analysisOutcome{text: analysis}, nil
	case store.ErrAlreadySet:
		// Another writer won the conditional update; their value stands.
		current, getErr := s.store.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return &analysisOutcome{text: *current.DeepAnalysis, existed: true}, nil
	default:
		return nil, err
	}
}
