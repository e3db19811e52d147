package textextract

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"docpilot/internal/domain"
	"docpilot/internal/port"
)

type extractor struct{}

// New creates the in-process TextExtractor. Excel workbooks are read with
// excelize; PDFs and images carry no extractable text layer here and are
// flagged for the vision path instead.
func New() port.TextExtractor {
	return &extractor{}
}

func (e *extractor) ExtractText(_ context.Context, data []byte, filename, contentType string) (*port.TextResult, error) {
	ft := fileTypeOf(filename, contentType)
	switch ft {
	case domain.FileTypeXLSX:
		return extractWorkbook(data)
	case domain.FileTypePDF, domain.FileTypeJPG, domain.FileTypePNG:
		return &port.TextResult{NeedsVision: true, PageCount: 1}, nil
	default:
		return nil, domain.ErrUnsupportedFileType
	}
}

func fileTypeOf(filename, contentType string) domain.FileType {
	if ft, ok := domain.AllowedContentTypes[strings.ToLower(contentType)]; ok {
		return ft
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return domain.AllowedExtensions[ext]
}

// extractWorkbook flattens every sheet into tab-separated rows, one sheet
// per "page", separated by the sheet name as a heading line.
func extractWorkbook(data []byte) (*port.TextResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	sheets := f.GetSheetList()
	for i, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if i > 0 {
			b.WriteString("\n")
		}
		if len(sheets) > 1 {
			b.WriteString(sheet + "\n")
		}
		for _, row := range rows {
			line := strings.TrimRight(strings.Join(row, "\t"), "\t ")
			if line == "" {
				continue
			}
			b.WriteString(line + "\n")
		}
	}

	text := b.String()
	return &port.TextResult{
		Text:        text,
		PageCount:   len(sheets),
		NeedsVision: text == "",
	}, nil
}
