package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"document-intel-platform/internal/config"
)

// VisionGenerator is the multimodal generative backend used for page-image
// analysis.
type VisionGenerator interface {
	GenerateWithImage(ctx context.Context, prompt string, png []byte) (string, error)
}

const analysisPrompt = `Analyze this document page thoroughly. Provide:
1. Key data points and figures (including charts and tables, if any)
2. Main risks or challenges
3. Strategic opportunities
4. A short conclusion on the page's outlook.`

// DeepAnalysisService produces a structured multi-page analysis from
// rendered page images. Defined only for PDF-kind sources; the caller
// enforces the compute-once policy.
type DeepAnalysisService struct {
	generator VisionGenerator
	pageLimit int
	dpi       float64
}

func NewDeepAnalysisService(generator VisionGenerator, cfg *config.Config) *DeepAnalysisService {
	return &DeepAnalysisService{
		generator: generator,
		pageLimit: cfg.AnalysisPageLimit,
		dpi:       cfg.OCRDPI,
	}
}

// Analyze renders the leading pages and asks the backend to analyze each
// page's visual content. Backend calls run concurrently; the result is
// reassembled in page order regardless of completion order. Any backend
// error fails the whole analysis so nothing partial is ever persisted.
func (s *DeepAnalysisService) Analyze(ctx context.Context, renderer PageRenderer) (string, error) {
	if s.generator == nil {
		return "", ErrBackendUnavailable
	}

	pages := renderer.NumPages()
	if pages > s.pageLimit {
		pages = s.pageLimit
	}
	if pages == 0 {
		return "", fmt.Errorf("document has no pages to analyze")
	}

	// Rendering shares one document handle, so it stays sequential; only
	// the backend calls fan out.
	images := make([][]byte, pages)
	for i := 0; i < pages; i++ {
		png, err := renderer.RenderPNG(i, s.dpi)
		if err != nil {
			return "", fmt.Errorf("failed to render page %d: %w", i+1, err)
		}
		images[i] = png
	}

	results := make([]string, pages)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < pages; i++ {
		g.Go(func() error {
			text, err := s.generator.GenerateWithImage(gctx, analysisPrompt, images[i])
			if err != nil {
				return fmt.Errorf("analysis failed on page %d: %w", i+1, err)
			}
			results[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var b strings.Builder
	for i, text := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "--- Page %d ---\n", i+1)
		b.WriteString(text)
	}
	return b.String(), nil
}
