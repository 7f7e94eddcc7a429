package statement

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin    = 14.0
	pdfPageWidth = 210.0 // A4 portrait, mm
)

// RenderPDF lays the document out as a fixed-format PDF. Content comes
// straight from the PreviewDocument cells; nothing is recomputed here.
func RenderPDF(doc *PreviewDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, doc.Title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	if doc.RoomName != "" {
		pdf.CellFormat(0, 7, "Room: "+doc.RoomName, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 7, "Statement Type: "+doc.Subtitle, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if doc.GeneratedBy != "" {
		pdf.CellFormat(0, 6, "Generated by: "+doc.GeneratedBy, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, "Generated on: "+doc.GeneratedAt.UTC().Format("Jan 2, 2006, 3:04 PM"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, tbl := range doc.Tables {
		renderPDFTable(pdf, tbl)
		pdf.Ln(6)
	}

	for _, line := range doc.Summary {
		style := ""
		if line.Bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 11)
		pdf.CellFormat(0, 6, fmt.Sprintf("%s: %s", line.Label, line.Value), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPDFTable(pdf *fpdf.Fpdf, tbl Table) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, tbl.Name, "", 1, "L", false, 0, "")

	usable := pdfPageWidth - 2*pdfMargin
	colWidth := usable / float64(len(tbl.Columns))

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range tbl.Columns {
		pdf.CellFormat(colWidth, 7, col, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range tbl.Rows {
		for _, cell := range row {
			pdf.CellFormat(colWidth, 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}
