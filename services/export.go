package services

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"document-intel-platform/internal/store"
)

const exportSheet = "Documents"

// ExportService builds spreadsheet exports of stored document records.
type ExportService struct {
	store *store.DocumentStore
}

func NewExportService(st *store.DocumentStore) *ExportService {
	return &ExportService{store: st}
}

// BuildWorkbook returns an XLSX workbook with one row per stored record,
// newest-first, honoring the same filter as List.
func (s *ExportService) BuildWorkbook(ctx context.Context, filter string) (*excelize.File, error) {
	docs, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, err
	}

	headers := []string{"ID", "Name", "Source Kind", "Source Location", "Created At", "Summary", "Has Deep Analysis"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			f.Close()
			return nil, err
		}
	}

	for row, doc := range docs {
		summary := ""
		if doc.Summary != nil {
			summary = *doc.Summary
		}
		values := []interface{}{
			doc.ID,
			doc.Name,
			string(doc.SourceKind),
			doc.SourceLocation,
			doc.CreatedAt.Format("2006-01-02 15:04:05"),
			summary,
			doc.DeepAnalysis != nil,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "G", 24); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column widths: %w", err)
	}

	return f, nil
}
