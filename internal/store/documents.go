package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"document-intel-platform/models"
)

var (
	// ErrNotFound is returned when no document has the requested id.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadySet is returned by SetDeepAnalysis when the record already
	// carries an analysis. The stored value wins; the caller's value is
	// discarded.
	ErrAlreadySet = errors.New("deep analysis already set")
)

// DocumentStore persists document records in SQLite.
type DocumentStore struct {
	db *sql.DB
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Create inserts a new record and returns its assigned id. RawText must be
// non-empty: a record without extracted text is a pipeline bug, not data.
func (s *DocumentStore) Create(ctx context.Context, doc *models.Document) (string, error) {
	if doc.RawText == "" {
		return "", errors.New("refusing to persist document with empty text")
	}
	if !doc.SourceKind.Valid() {
		return "", fmt.Errorf("unknown source kind %q", doc.SourceKind)
	}

	id := uuid.NewString()
	createdAt := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, name, source_kind, source_location, raw_text, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, doc.Name, string(doc.SourceKind), doc.SourceLocation, doc.RawText, doc.Summary, createdAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}

	doc.ID = id
	doc.CreatedAt = createdAt
	return id, nil
}

// GetByID fetches a single record. Returns ErrNotFound for unknown ids.
func (s *DocumentStore) GetByID(ctx context.Context, id string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, source_kind, source_location, raw_text, summary, deep_analysis, created_at
		FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// List returns records newest-first. A non-empty filter performs a
// case-insensitive substring match against name and raw text.
func (s *DocumentStore) List(ctx context.Context, filter string) ([]models.Document, error) {
	query := `
		SELECT id, name, source_kind, source_location, raw_text, summary, deep_analysis, created_at
		FROM documents`
	var args []any
	if filter != "" {
		query += ` WHERE name LIKE ? OR raw_text LIKE ?`
		pattern := "%" + filter + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// SetDeepAnalysis writes the analysis only if the record still has none.
// The conditional update is the compute-once guard at the persistence
// layer: two racing writers cannot both succeed.
func (s *DocumentStore) SetDeepAnalysis(ctx context.Context, id, analysis string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET deep_analysis = ? WHERE id = ? AND deep_analysis IS NULL`,
		analysis, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update deep analysis: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// Nothing updated: either the id is unknown or the analysis was
	// already written by another caller.
	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrAlreadySet
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		doc          models.Document
		kind         string
		summary      sql.NullString
		deepAnalysis sql.NullString
	)
	err := row.Scan(&doc.ID, &doc.Name, &kind, &doc.SourceLocation, &doc.RawText, &summary, &deepAnalysis, &doc.CreatedAt)
	if err != nil {
		return nil, err
	}
	doc.SourceKind = models.SourceKind(kind)
	if summary.Valid {
		doc.Summary = &summary.String
	}
	if deepAnalysis.Valid {
		doc.DeepAnalysis = &deepAnalysis.String
	}
	return &doc, nil
}
