package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"db-retain/internal/schema"
)

// Supported report formats.
const (
	FormatXLSX  = "xlsx"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// ResolveFormat returns format, or the format implied by path's extension when
// format is empty.
func ResolveFormat(format, path string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch f {
	case "yml":
		return FormatYAML, nil
	case "txt":
		return FormatTable, nil
	case FormatXLSX, FormatCSV, FormatJSON, FormatYAML, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported report format %q", f)
	}
}

// NewWriterSink builds the sink for format writing to w.
func NewWriterSink(format string, w io.Writer) (Sink, error) {
	switch format {
	case FormatXLSX:
		return NewXLSXSink(w), nil
	case FormatCSV:
		return NewCSVSink(w), nil
	case FormatJSON:
		return NewJSONSink(w), nil
	case FormatYAML:
		return NewYAMLSink(w), nil
	case FormatTable:
		return NewPlainTableSink(w), nil
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}

// FileSink creates its file only when written, so an unwritable path is
// reported as a sink failure after the tables were processed.
type FileSink struct {
	format string
	path   string
}

func NewFileSink(format, path string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path is required")
	}
	f, err := ResolveFormat(format, path)
	if err != nil {
		return nil, err
	}
	return &FileSink{format: f, path: path}, nil
}

func (s *FileSink) Name() string { return s.format + ":" + s.path }

func (s *FileSink) Path() string { return s.path }

func (s *FileSink) Write(ctx context.Context, records []schema.OutcomeRecord) (err error) {
	file, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	inner, err := NewWriterSink(s.format, file)
	if err != nil {
		return err
	}
	return inner.Write(ctx, records)
}

// MultiSink writes to every sink in order and stops at the first failure.
type MultiSink []Sink

func (m MultiSink) Name() string {
	names := make([]string, len(m))
	for i, s := range m {
		names[i] = s.Name()
	}
	return strings.Join(names, ",")
}

func (m MultiSink) Write(ctx context.Context, records []schema.OutcomeRecord) error {
	for _, s := range m {
		if err := s.Write(ctx, records); err != nil {
			return fmt.Errorf("%s: %w", s.Name(), err)
		}
	}
	return nil
}
