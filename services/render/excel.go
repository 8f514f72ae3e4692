package rendersvc

import (
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/konatebeh20/EduTrack/core/report"
)

const sheetName = "Bulletin"

func renderExcel(doc report.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	f.SetSheetName("Sheet1", sheetName)

	row := 1
	setCell := func(col int, v interface{}) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheetName, cell, v)
	}

	setCell(1, doc.Title)
	row += 2

	for _, fld := range doc.Header {
		setCell(1, fld.Label)
		setCell(2, fld.Value)
		row++
	}
	row++

	for col, name := range doc.Columns {
		setCell(col+1, name)
	}
	row++
	for _, line := range doc.Rows {
		for col, v := range line {
			setCell(col+1, v)
		}
		row++
	}
	row++

	for _, fld := range doc.Summary {
		setCell(1, fld.Label)
		setCell(2, fld.Value)
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "writing workbook")
	}
	return buf.Bytes(), nil
}
