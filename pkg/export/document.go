package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Dataset is tabular export content: ordered headers and one map per
// row keyed by them.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// KV is one labelled line on a rendered document.
type KV struct {
	Label string
	Value string
}

// Document describes a titled single-page PDF: a block of header
// fields, a table, and an optional summary block below it.
type Document struct {
	Heading string
	Title   string
	Meta    []KV
	Dataset Dataset
	Summary []KV
}

// RenderDocument produces a PDF for marksheets, receipts and similar
// per-record documents.
func (e *PDFExporter) RenderDocument(doc Document) ([]byte, error) {
	if len(doc.Dataset.Headers) == 0 {
		return nil, fmt.Errorf("document requires at least one table header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	if doc.Heading != "" {
		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 10, doc.Heading, "", 1, "C", false, 0, "")
	}
	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, doc.Title, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	for _, field := range doc.Meta {
		pdf.CellFormat(50, 6, field.Label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, field.Value, "", 1, "L", false, 0, "")
	}
	if len(doc.Meta) > 0 {
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 10)
	colWidth := 180.0 / float64(len(doc.Dataset.Headers))
	for _, header := range doc.Dataset.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range doc.Dataset.Rows {
		for _, header := range doc.Dataset.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(doc.Summary) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		for _, field := range doc.Summary {
			pdf.CellFormat(50, 6, field.Label, "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, field.Value, "", 1, "L", false, 0, "")
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}
