// Package export streams report rows in downloadable formats.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/kursadbilgin/failedemails-report/internal/domain"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatJSON  Format = "json"
	FormatHTML  Format = "html"
)

func (f Format) String() string { return string(f) }

// Formats lists the download formats in the order offered to users.
func Formats() []Format {
	return []Format{FormatCSV, FormatExcel, FormatJSON, FormatHTML}
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatExcel, FormatJSON, FormatHTML:
		return f, nil
	case "xlsx":
		return FormatExcel, nil
	}
	return "", fmt.Errorf("%w: unsupported download format %q", domain.ErrValidation, s)
}

func (f Format) Extension() string {
	switch f {
	case FormatExcel:
		return "xlsx"
	default:
		return string(f)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	}
	return "application/octet-stream"
}

// Filename appends the format's extension to base.
func (f Format) Filename(base string) string {
	return base + "." + f.Extension()
}

// Writer receives a table one row at a time. Start must be called once
// before any row and Finish once after the last.
type Writer interface {
	Start(title string, headers []string) error
	WriteRow(cells []string) error
	Finish() error
}

func NewWriter(format Format, w io.Writer) (Writer, error) {
	switch format {
	case FormatCSV:
		return newCSVWriter(w), nil
	case FormatExcel:
		return newExcelWriter(w), nil
	case FormatJSON:
		return newJSONWriter(w), nil
	case FormatHTML:
		return newHTMLWriter(w), nil
	}
	return nil, fmt.Errorf("%w: unsupported download format %q", domain.ErrValidation, format)
}
