package report

import (
	"context"
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"db-retain/internal/schema"
)

// JSONSink writes the records as an indented JSON array.
type JSONSink struct {
	w io.Writer
}

func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{w: w}
}

func (s *JSONSink) Name() string { return "json" }

func (s *JSONSink) Write(ctx context.Context, records []schema.OutcomeRecord) error {
	enc := json.NewEncoder(s.w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// YAMLSink writes the records as a YAML sequence.
type YAMLSink struct {
	w io.Writer
}

func NewYAMLSink(w io.Writer) *YAMLSink {
	return &YAMLSink{w: w}
}

func (s *YAMLSink) Name() string { return "yaml" }

func (s *YAMLSink) Write(ctx context.Context, records []schema.OutcomeRecord) error {
	enc := yaml.NewEncoder(s.w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}
