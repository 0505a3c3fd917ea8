package models

import (
	"time"
)

// SourceKind identifies where a document's raw bytes came from.
type SourceKind string

const (
	SourcePDF SourceKind = "pdf"
	SourceURL SourceKind = "url"
)

// Valid reports whether the kind is one of the known source kinds.
func (k SourceKind) Valid() bool {
	return k == SourcePDF || k == SourceURL
}

// Document is the unit of persisted state. A document row exists only if
// extraction produced non-empty text; Summary and DeepAnalysis are each set
// at most once and stay nil otherwise.
type Document struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	SourceKind     SourceKind `json:"source_kind"`
	SourceLocation string     `json:"source_location"`
	RawText        string     `json:"raw_text"`
	Summary        *string    `json:"summary,omitempty"`
	DeepAnalysis   *string    `json:"deep_analysis,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IngestURLRequest is the payload for URL ingestion.
type IngestURLRequest struct {
	URL  string `json:"url" binding:"required"`
	Name string `json:"name,omitempty"`
}

// IngestResponse is returned after a successful ingestion.
type IngestResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
	// Warning carries soft degradation notices (e.g. summary unavailable)
	// alongside an otherwise successful save.
	Warning string `json:"warning,omitempty"`
}

// AnalyzeResponse is returned by the deep-analysis trigger.
type AnalyzeResponse struct {
	ID           string `json:"id"`
	DeepAnalysis string `json:"deep_analysis"`
	// AlreadyExisted is true when the record had an analysis before this
	// call and no backend call was made.
	AlreadyExisted bool `json:"already_existed"`
}
