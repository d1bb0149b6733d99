package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// jsonWriter emits one array of objects keyed by header, written
// incrementally so large downloads are not buffered.
type jsonWriter struct {
	w       io.Writer
	headers []string
	rows    int
}

func newJSONWriter(w io.Writer) *jsonWriter {
	return &jsonWriter{w: w}
}

func (j *jsonWriter) Start(_ string, headers []string) error {
	j.headers = append([]string(nil), headers...)
	if _, err := io.WriteString(j.w, "["); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}

func (j *jsonWriter) WriteRow(cells []string) error {
	raw, err := j.encodeRow(cells)
	if err != nil {
		return err
	}

	sep := ",\n"
	if j.rows == 0 {
		sep = "\n"
	}
	j.rows++

	if _, err := io.WriteString(j.w, sep); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	if _, err := j.w.Write(raw); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}

func (j *jsonWriter) Finish() error {
	tail := "\n]\n"
	if j.rows == 0 {
		tail = "]\n"
	}
	if _, err := io.WriteString(j.w, tail); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}

// encodeRow keeps keys in column order, which a map would not.
func (j *jsonWriter) encodeRow(cells []string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, header := range j.headers {
		value := ""
		if i < len(cells) {
			value = cells[i]
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(header)
		if err != nil {
			return nil, fmt.Errorf("failed to encode json key: %w", err)
		}
		val, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode json value: %w", err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
