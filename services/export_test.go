package services

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"document-intel-platform/internal/store"
	"document-intel-platform/models"
)

func newExportFixture(t *testing.T) (*ExportService, *store.DocumentStore) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := store.EnsureSchema(db); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}
	st := store.NewDocumentStore(db)
	return NewExportService(st), st
}

func TestBuildWorkbook(t *testing.T) {
	svc, st := newExportFixture(t)
	ctx := context.Background()

	summary := "synopsis of the report"
	id, err := st.Create(ctx, &models.Document{
		Name:           "report.pdf",
		SourceKind:     models.SourcePDF,
		SourceLocation: "/tmp/report.pdf",
		RawText:        "body",
		Summary:        &summary,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := st.SetDeepAnalysis(ctx, id, "full analysis"); err != nil {
		t.Fatalf("set analysis failed: %v", err)
	}

	wb, err := svc.BuildWorkbook(ctx, "")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer wb.Close()

	if got, _ := wb.GetCellValue(exportSheet, "A1"); got != "ID" {
		t.Fatalf("wrong header cell: %q", got)
	}
	if got, _ := wb.GetCellValue(exportSheet, "B2"); got != "report.pdf" {
		t.Fatalf("wrong name cell: %q", got)
	}
	if got, _ := wb.GetCellValue(exportSheet, "F2"); got != summary {
		t.Fatalf("wrong summary cell: %q", got)
	}
	if got, _ := wb.GetCellValue(exportSheet, "G2"); got != "TRUE" {
		t.Fatalf("wrong analysis flag cell: %q", got)
	}
}

func TestBuildWorkbookHonorsFilter(t *testing.T) {
	svc, st := newExportFixture(t)
	ctx := context.Background()

	for _, name := range []string{"invoice.pdf", "contract.pdf"} {
		if _, err := st.Create(ctx, &models.Document{
			Name:           name,
			SourceKind:     models.SourcePDF,
			SourceLocation: "/tmp/" + name,
			RawText:        "content of " + name,
		}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	wb, err := svc.BuildWorkbook(ctx, "invoice")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer wb.Close()

	if got, _ := wb.GetCellValue(exportSheet, "B2"); got != "invoice.pdf" {
		t.Fatalf("filtered row missing: %q", got)
	}
	if got, _ := wb.GetCellValue(exportSheet, "B3"); got != "" {
		t.Fatalf("unfiltered row leaked: %q", got)
	}
}

func TestBuildWorkbookEmptyStore(t *testing.T) {
	svc, _ := newExportFixture(t)

	wb, err := svc.BuildWorkbook(context.Background(), "")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer wb.Close()

	if got, _ := wb.GetCellValue(exportSheet, "A1"); got != "ID" {
		t.Fatal("headers must be present even with no records")
	}
}
