package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"document-intel-platform/internal/config"
)

// TextGenerator is the generative backend used for summaries.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// SummaryPlaceholder is returned without a backend call when the input is
// too short to be worth summarizing.
const SummaryPlaceholder = "Text too short to summarize."

// SummarizationService produces a short synopsis of extracted text.
// Failures are always non-fatal: callers persist the record either way.
type SummarizationService struct {
	generator  TextGenerator
	minLength  int
	inputLimit int
}

func NewSummarizationService(generator TextGenerator, cfg *config.Config) *SummarizationService {
	return &SummarizationService{
		generator:  generator,
		minLength:  cfg.SummaryMinLength,
		inputLimit: cfg.SummaryInputLimit,
	}
}

// Summarize returns a synopsis of text. Near-empty input short-circuits to
// the fixed placeholder; longer input is hard-truncated to the character
// budget before submission.
func (s *SummarizationService) Summarize(ctx context.Context, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < s.minLength {
		return SummaryPlaceholder, nil
	}

	if s.generator == nil {
		return "", ErrBackendUnavailable
	}

	prompt := fmt.Sprintf("Please provide a concise summary of the following document:\n\n%s",
		truncateText(text, s.inputLimit))

	return s.generator.GenerateText(ctx, prompt)
}

// truncateText cuts text to a prefix of at most limit characters. The cut
// is not sentence-aware.
func truncateText(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}
