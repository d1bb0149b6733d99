package export

import (
	"fmt"
	"html/template"
	"io"
)

var (
	htmlHeadTmpl = template.Must(template.New("head").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body>
<table border="1">
<caption>{{.Title}}</caption>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
`))
	htmlRowTmpl = template.Must(template.New("row").Parse(`<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
`))
)

const htmlTail = "</tbody>\n</table>\n</body>\n</html>\n"

type htmlWriter struct {
	w io.Writer
}

func newHTMLWriter(w io.Writer) *htmlWriter {
	return &htmlWriter{w: w}
}

func (h *htmlWriter) Start(title string, headers []string) error {
	data := struct {
		Title   string
		Headers []string
	}{Title: title, Headers: headers}
	if err := htmlHeadTmpl.Execute(h.w, data); err != nil {
		return fmt.Errorf("failed to write html header: %w", err)
	}
	return nil
}

func (h *htmlWriter) WriteRow(cells []string) error {
	if err := htmlRowTmpl.Execute(h.w, cells); err != nil {
		return fmt.Errorf("failed to write html row: %w", err)
	}
	return nil
}

func (h *htmlWriter) Finish() error {
	if _, err := io.WriteString(h.w, htmlTail); err != nil {
		return fmt.Errorf("failed to write html footer: %w", err)
	}
	return nil
}
