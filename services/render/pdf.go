package rendersvc

import (
	"bytes"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"github.com/konatebeh20/EduTrack/core/report"
)

var colWidths = []float64{80, 30, 30, 40}

func renderPDF(doc report.Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 12, doc.Title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	for _, fld := range doc.Header {
		pdf.CellFormat(50, 7, fld.Label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, fld.Value, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	for i, name := range doc.Columns {
		pdf.CellFormat(colWidth(i), 8, name, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range doc.Rows {
		for i, v := range line {
			pdf.CellFormat(colWidth(i), 8, v, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	for _, fld := range doc.Summary {
		pdf.CellFormat(50, 8, fld.Label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, fld.Value, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "writing document")
	}
	return buf.Bytes(), nil
}

func colWidth(i int) float64 {
	if i < len(colWidths) {
		return colWidths[i]
	}
	return 30
}
