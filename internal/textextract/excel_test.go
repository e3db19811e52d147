package textextract_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"docpilot/internal/domain"
	"docpilot/internal/textextract"
)

func workbookBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, val))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExtractText_Workbook(t *testing.T) {
	data := workbookBytes(t, [][]interface{}{
		{"PURCHASE ORDER", "PO-4500012345"},
		{1, "400QCR1068", "THRUSTER", 1, "PCS", 20500},
	})

	ex := textextract.New()
	res, err := ex.ExtractText(context.Background(), data, "order.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	require.NoError(t, err)

	assert.False(t, res.NeedsVision)
	assert.Equal(t, 1, res.PageCount)
	assert.Contains(t, res.Text, "PURCHASE ORDER\tPO-4500012345")
	assert.Contains(t, res.Text, "400QCR1068")
}

func TestExtractText_ExtensionFallback(t *testing.T) {
	data := workbookBytes(t, [][]interface{}{{"INVOICE"}})

	ex := textextract.New()
	res, err := ex.ExtractText(context.Background(), data, "invoice.xlsx", "application/octet-stream")
	require.NoError(t, err)
	assert.Contains(t, res.Text, "INVOICE")
}

func TestExtractText_ScannedFormatsNeedVision(t *testing.T) {
	ex := textextract.New()
	for _, tc := range []struct{ filename, contentType string }{
		{"scan.pdf", "application/pdf"},
		{"scan.jpg", "image/jpeg"},
		{"scan.png", "image/png"},
	} {
		res, err := ex.ExtractText(context.Background(), []byte{0x1}, tc.filename, tc.contentType)
		require.NoError(t, err, tc.filename)
		assert.True(t, res.NeedsVision, tc.filename)
		assert.Empty(t, res.Text, tc.filename)
	}
}

func TestExtractText_UnsupportedType(t *testing.T) {
	ex := textextract.New()
	_, err := ex.ExtractText(context.Background(), []byte("hello"), "notes.txt", "text/plain")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}
