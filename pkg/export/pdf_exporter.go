package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pageWidth = 190.0

// PDFExporter renders reports into a single-table A4 document.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with the title, summary block and table body.
func (e *PDFExporter) Render(report Report) ([]byte, error) {
	data := report.Table
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if report.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, report.Title, "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	if len(report.Summary) > 0 {
		for _, field := range report.Summary {
			pdf.SetFont("Arial", "B", 9)
			pdf.CellFormat(50, 6, field.Label, "", 0, "", false, 0, "")
			pdf.SetFont("Arial", "", 9)
			pdf.CellFormat(0, 6, field.Value, "", 1, "", false, 0, "")
		}
		pdf.Ln(4)
	}

	widths := columnWidths(pdf, data)
	header := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range data.Headers {
			pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		if pdf.GetY()+7 > pageHeight-bottom {
			pdf.AddPage()
			header()
			pdf.SetFont("Arial", "", 9)
		}
		for i, h := range data.Headers {
			pdf.CellFormat(widths[i], 7, row[h], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths sizes columns by their widest cell, scaled to fill the page.
func columnWidths(pdf *gofpdf.Fpdf, data Dataset) []float64 {
	pdf.SetFont("Arial", "B", 10)
	widths := make([]float64, len(data.Headers))
	var total float64
	for i, h := range data.Headers {
		w := pdf.GetStringWidth(h)
		for _, row := range data.Rows {
			if cw := pdf.GetStringWidth(row[h]); cw > w {
				w = cw
			}
		}
		widths[i] = w + 4
		total += widths[i]
	}
	for i := range widths {
		widths[i] = widths[i] / total * pageWidth
	}
	return widths
}
