package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet names are limited to 31 characters.
const maxSheetName = 31

type excelWriter struct {
	out    io.Writer
	file   *excelize.File
	stream *excelize.StreamWriter
	row    int
}

func newExcelWriter(w io.Writer) *excelWriter {
	return &excelWriter{out: w}
}

func (e *excelWriter) Start(title string, headers []string) error {
	e.file = excelize.NewFile()

	sheet := sheetName(title)
	if err := e.file.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	stream, err := e.file.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet stream: %w", err)
	}
	e.stream = stream

	bold, err := e.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	return e.setRow(headers, excelize.RowOpts{StyleID: bold})
}

func (e *excelWriter) WriteRow(cells []string) error {
	return e.setRow(cells)
}

func (e *excelWriter) setRow(cells []string, opts ...excelize.RowOpts) error {
	if e.stream == nil {
		return fmt.Errorf("excel writer not started")
	}
	e.row++

	cell, err := excelize.CoordinatesToCellName(1, e.row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", e.row, err)
	}

	values := make([]interface{}, len(cells))
	for i, v := range cells {
		values[i] = v
	}
	if err := e.stream.SetRow(cell, values, opts...); err != nil {
		return fmt.Errorf("failed to write excel row %d: %w", e.row, err)
	}
	return nil
}

func (e *excelWriter) Finish() error {
	if e.file == nil || e.stream == nil {
		return fmt.Errorf("excel writer not started")
	}
	defer e.file.Close() //nolint:errcheck

	if err := e.stream.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := e.file.WriteTo(e.out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func sheetName(title string) string {
	if title == "" {
		return "Sheet1"
	}
	runes := []rune(title)
	if len(runes) > maxSheetName {
		runes = runes[:maxSheetName]
	}
	return string(runes)
}
