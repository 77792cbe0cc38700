package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ExportFormat is the report encoding requested from the backend.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

var exportMIMETypes = map[ExportFormat]string{
	ExportCSV:  "text/csv",
	ExportJSON: "application/json",
}

// ParseExportFormat returns the format for a given name (case-insensitive).
func ParseExportFormat(value string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := exportMIMETypes[f]; !ok {
		return "", invalidFieldError("format", "Unsupported export format %q.", value)
	}
	return f, nil
}

func (f ExportFormat) MIMEType() string {
	return exportMIMETypes[f]
}

// ExportResult is the backend's export payload. Data stays raw so that row
// order and object key order survive until the artifact is built.
type ExportResult struct {
	Format   string          `json:"format,omitempty"`
	Filename string          `json:"filename"`
	Data     json.RawMessage `json:"data"`
}

// Artifact is a finished export file ready to be saved.
type Artifact struct {
	Filename string
	MIMEType string
	Content  []byte
}

// BuildArtifact renders an export payload. CSV data must be a list of rows;
// each cell is written as its JSON text (strings unquoted), cells joined by
// commas and rows by newlines. Any other format is pretty-printed JSON.
func BuildArtifact(format ExportFormat, result *ExportResult) (*Artifact, error) {
	if result == nil {
		return nil, fmt.Errorf("export result is empty")
	}
	if result.Filename == "" {
		return nil, fmt.Errorf("export result has no filename")
	}

	var (
		content []byte
		err     error
	)
	if format == ExportCSV {
		content, err = renderRows(result.Data)
	} else {
		content, err = renderIndented(result.Data)
	}
	if err != nil {
		return nil, err
	}

	mimeType := format.MIMEType()
	if mimeType == "" {
		mimeType = exportMIMETypes[ExportJSON]
	}

	return &Artifact{
		Filename: result.Filename,
		MIMEType: mimeType,
		Content:  content,
	}, nil
}

func renderRows(data json.RawMessage) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rows [][]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode csv rows: %w", err)
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = cellText(cell)
		}
		lines[i] = strings.Join(cells, ",")
	}
	return []byte(strings.Join(lines, "\n")), nil
}

func cellText(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	case bool:
		return strconv.FormatBool(value)
	case []any:
		parts := make([]string, len(value))
		for i, item := range value {
			parts[i] = cellText(item)
		}
		return strings.Join(parts, ",")
	default:
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(raw)
	}
}

func renderIndented(data json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, fmt.Errorf("format json export: %w", err)
	}
	return buf.Bytes(), nil
}
