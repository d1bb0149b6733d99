package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

type csvWriter struct {
	w *csv.Writer
}

func newCSVWriter(w io.Writer) *csvWriter {
	return &csvWriter{w: csv.NewWriter(w)}
}

func (c *csvWriter) Start(_ string, headers []string) error {
	return c.WriteRow(headers)
}

func (c *csvWriter) WriteRow(cells []string) error {
	if err := c.w.Write(cells); err != nil {
		return fmt.Errorf("failed to write csv row: %w", err)
	}
	return nil
}

func (c *csvWriter) Finish() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
