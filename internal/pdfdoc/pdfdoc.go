// Package pdfdoc provides page-level access to PDF files: the embedded
// text layer for primary extraction and rasterized page images for OCR and
// visual analysis.
package pdfdoc

import (
	"fmt"
	"os"

	fitz "github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// Document is an open PDF handle. Pages are 0-based. Not safe for
// concurrent use; open one handle per request.
type Document struct {
	fitz   *fitz.Document
	reader *pdf.Reader
	file   *os.File
}

// Open opens the PDF at path. MuPDF must be able to parse the file; the
// text-layer reader is best-effort and pages fall back to MuPDF text when
// it cannot open the file.
func Open(path string) (*Document, error) {
	fz, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	doc := &Document{fitz: fz}

	// ledongthuc/pdf reads the raw text layer without any layout
	// reconstruction, which is what primary extraction wants. Some PDFs
	// trip it up; those pages go through MuPDF instead.
	if f, reader, err := pdf.Open(path); err == nil {
		doc.file = f
		doc.reader = reader
	}

	return doc, nil
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return d.fitz.NumPage()
}

// PageText returns the embedded text layer of one page.
func (d *Document) PageText(page int) (string, error) {
	if page < 0 || page >= d.NumPages() {
		return "", fmt.Errorf("page %d out of range", page)
	}

	if d.reader != nil && page < d.reader.NumPage() {
		p := d.reader.Page(page + 1) // 1-based
		if !p.V.IsNull() {
			fonts := make(map[string]*pdf.Font)
			text, err := p.GetPlainText(fonts)
			if err == nil {
				return text, nil
			}
		}
	}

	return d.fitz.Text(page)
}

// RenderPNG rasterizes one page to a PNG image at the given DPI.
func (d *Document) RenderPNG(page int, dpi float64) ([]byte, error) {
	if page < 0 || page >= d.NumPages() {
		return nil, fmt.Errorf("page %d out of range", page)
	}
	return d.fitz.ImagePNG(page, dpi)
}

// Close releases the underlying handles.
func (d *Document) Close() error {
	if d.file != nil {
		d.file.Close()
	}
	return d.fitz.Close()
}
