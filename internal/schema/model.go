package schema

import (
	"fmt"
	"time"
)

// TableRef identifies one base table in the catalog.
type TableRef struct {
	Schema string `json:"schema" yaml:"schema"`
	Name   string `json:"name" yaml:"name"`
}

func (t TableRef) String() string {
	return t.Schema + "." + t.Name
}

// ActionKind is the per-table retention decision.
type ActionKind int

const (
	ActionSkipped ActionKind = iota
	ActionFilteredDelete
	ActionFullDiscard
	ActionFailed
)

var actionNames = map[ActionKind]string{
	ActionSkipped:        "Skipped",
	ActionFilteredDelete: "FilteredDelete",
	ActionFullDiscard:    "FullDiscard",
	ActionFailed:         "Failed",
}

// AllActions lists every ActionKind in declaration order.
var AllActions = []ActionKind{ActionSkipped, ActionFilteredDelete, ActionFullDiscard, ActionFailed}

func (a ActionKind) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return fmt.Sprintf("ActionKind(%d)", int(a))
}

// MarshalText lets json and yaml encoders write the action name.
func (a ActionKind) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// OutcomeRecord is the single result row for one table in one run, as
// written to the report. Nil pointers mean "unknown".
type OutcomeRecord struct {
	Table           TableRef      `json:"table" yaml:"table"`
	Action          ActionKind    `json:"action" yaml:"action"`
	HasFilterColumn *bool         `json:"has_filter_column" yaml:"has_filter_column"`
	RowCountBefore  *int64        `json:"row_count_before" yaml:"row_count_before"`
	ErrorDetail     string        `json:"error,omitempty" yaml:"error,omitempty"`
	Statement       string        `json:"statement,omitempty" yaml:"statement,omitempty"`
	Executed        bool          `json:"executed" yaml:"executed"`
	RowsAffected    *int64        `json:"rows_affected" yaml:"rows_affected"`
	Duration        time.Duration `json:"duration_ns" yaml:"-"`
}

// MarshalYAML writes Duration as integer nanoseconds, the same as JSON.
// yaml.v3 would otherwise render it as a string like "1.2ms".
func (r OutcomeRecord) MarshalYAML() (any, error) {
	type plain OutcomeRecord
	return struct {
		plain    `yaml:",inline"`
		Duration int64 `yaml:"duration_ns"`
	}{plain(r), int64(r.Duration)}, nil
}

// Bool returns a pointer to v, for the tri-state fields of OutcomeRecord.
func Bool(v bool) *bool { return &v }

// Int64 returns a pointer to v, for the tri-state fields of OutcomeRecord.
func Int64(v int64) *int64 { return &v }
