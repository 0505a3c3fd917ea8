package services

import (
	"errors"
	"fmt"
)

// ExtractionFailure classifies fatal extraction outcomes. No record is
// persisted when extraction fails.
type ExtractionFailure int

const (
	// FailureEmptyDocument means the document had zero pages.
	FailureEmptyDocument ExtractionFailure = iota
	// FailureNoTextRecovered means both the text layer and the OCR
	// fallback produced nothing.
	FailureNoTextRecovered
)

func (f ExtractionFailure) String() string {
	switch f {
	case FailureEmptyDocument:
		return "empty_document"
	case FailureNoTextRecovered:
		return "no_text_recovered"
	default:
		return "unknown"
	}
}

// ExtractionError is a fatal extraction outcome, optionally carrying the
// last OCR diagnostic.
type ExtractionError struct {
	Kind   ExtractionFailure
	Detail error
}

func (e *ExtractionError) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("extraction failed (%s): %v", e.Kind, e.Detail)
	}
	return fmt.Sprintf("extraction failed (%s)", e.Kind)
}

func (e *ExtractionError) Unwrap() error {
	return e.Detail
}

var (
	// ErrFetchFailed means a URL source could not be retrieved or parsed.
	ErrFetchFailed = errors.New("could not retrieve source")
	// ErrAnalysisNotApplicable means deep analysis was requested for a
	// record whose source kind does not support it.
	ErrAnalysisNotApplicable = errors.New("deep analysis is only available for PDF documents")
	// ErrBackendUnavailable means a generative backend is not configured.
	ErrBackendUnavailable = errors.New("generative backend not configured")
)
