package rendersvc

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/konatebeh20/EduTrack/core/report"
)

func testDocument() report.Document {
	return report.Document{
		Title: "Report card",
		Header: []report.DocField{
			{Label: "Surname", Value: "Doe"},
			{Label: "Given name", Value: "Jane"},
		},
		Columns: []string{"Course unit", "Score", "Weight", "Contribution"},
		Rows: [][]string{
			{"Econometrics", "15.00", "3", "45.00"},
			{"Calculus", "10.00", "2", "20.00"},
		},
		Summary: []report.DocField{
			{Label: "Total", Value: "65.00"},
			{Label: "Average", Value: "13.00"},
		},
	}
}

func TestService_Render(t *testing.T) {
	ctx := context.Background()
	svc := NewService()

	t.Run("tabular reads back", func(t *testing.T) {
		data, err := svc.Render(ctx, report.KindTabular, testDocument())
		require.NoError(t, err)
		require.NotEmpty(t, data)

		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer func() { _ = f.Close() }()

		require.Equal(t, []string{"Bulletin"}, f.GetSheetList())

		title, err := f.GetCellValue("Bulletin", "A1")
		require.NoError(t, err)
		assert.Equal(t, "Report card", title)

		rows, err := f.GetRows("Bulletin")
		require.NoError(t, err)

		var flat []string
		for _, r := range rows {
			flat = append(flat, r...)
		}
		assert.Contains(t, flat, "Econometrics")
		assert.Contains(t, flat, "45.00")
		assert.Contains(t, flat, "Average")
		assert.Contains(t, flat, "13.00")
	})

	t.Run("printable is a PDF", func(t *testing.T) {
		data, err := svc.Render(ctx, report.KindPrintable, testDocument())
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
		assert.True(t, bytes.Contains(data, []byte("%%EOF")))
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := svc.Render(ctx, report.Kind("hologram"), testDocument())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "hologram")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := svc.Render(cancelled, report.KindTabular, testDocument())
		assert.Equal(t, context.Canceled, err)
	})
}
