// Package spreadsheetsvc parses spreadsheet-like sources into named-column
// rows. The first row of the first sheet declares the column names.
package spreadsheetsvc

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/konatebeh20/EduTrack/core"
	"github.com/konatebeh20/EduTrack/core/ingest"
)

func Parse(r io.Reader) ([]ingest.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook contains no sheets")
	}

	lines, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %q", sheet)
	}
	if len(lines) < 2 {
		return nil, errors.New("workbook contains no data rows")
	}

	header := make([]string, len(lines[0]))
	for i, name := range lines[0] {
		header[i] = core.CleanString(name, true /* lower */)
	}

	rows := make([]ingest.Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		row := make(ingest.Row, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(line) {
				row[name] = line[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
