package config

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// identifierPattern accepts unquoted column names on every supported dialect.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$#@]*$`)

// decimalPattern is the numeric literal form every dialect accepts.
// Hex floats, digit separators, Inf and NaN are rejected.
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Keep value kinds accepted by ResolveKeepValue.
const (
	KindAuto   = ""
	KindNumber = "number"
	KindString = "string"
)

// KeepValue is the retention value rendered as a SQL literal.
type KeepValue struct {
	literal string
}

// SQL returns the literal as it appears in the generated DELETE.
func (v KeepValue) SQL() string { return v.literal }

func (v KeepValue) String() string { return v.literal }

// IsZero reports whether the value was never resolved.
func (v KeepValue) IsZero() bool { return v.literal == "" }

// ResolveKeepValue converts a configured scalar into a SQL literal.
// With KindAuto the Go type decides: numbers and bools are bare literals and
// strings are quoted. KindNumber forces numeric parsing of a string, which is
// how values from flags and environment variables arrive.
func ResolveKeepValue(raw any, kind string) (KeepValue, error) {
	const field = "retention.keep_value"

	switch strings.ToLower(kind) {
	case KindAuto:
	case KindNumber:
		s := strings.TrimSpace(fmt.Sprint(raw))
		if raw == nil || s == "" {
			return KeepValue{}, newConfigError(field, "unresolved retention value type", nil)
		}
		lit, ok := numberLiteral(s)
		if !ok {
			return KeepValue{}, newConfigError(field, fmt.Sprintf("%q is not a number", s), nil)
		}
		return KeepValue{literal: lit}, nil
	case KindString:
		if raw == nil {
			return KeepValue{}, newConfigError(field, "unresolved retention value type", nil)
		}
		return KeepValue{literal: quoteString(fmt.Sprint(raw))}, nil
	default:
		return KeepValue{}, newConfigError("retention.keep_value_type", fmt.Sprintf("unknown kind %q", kind), nil)
	}

	switch v := raw.(type) {
	case int:
		return KeepValue{literal: strconv.Itoa(v)}, nil
	case int8, int16, int32, int64:
		return KeepValue{literal: fmt.Sprintf("%d", v)}, nil
	case uint, uint8, uint16, uint32, uint64:
		return KeepValue{literal: fmt.Sprintf("%d", v)}, nil
	case float32:
		if !isFinite(float64(v)) {
			return KeepValue{}, newConfigError(field, fmt.Sprintf("%v is not a finite number", v), nil)
		}
		return KeepValue{literal: strconv.FormatFloat(float64(v), 'f', -1, 32)}, nil
	case float64:
		if !isFinite(v) {
			return KeepValue{}, newConfigError(field, fmt.Sprintf("%v is not a finite number", v), nil)
		}
		return KeepValue{literal: strconv.FormatFloat(v, 'f', -1, 64)}, nil
	case bool:
		if v {
			return KeepValue{literal: "1"}, nil
		}
		return KeepValue{literal: "0"}, nil
	case string:
		return KeepValue{literal: quoteString(v)}, nil
	default:
		return KeepValue{}, newConfigError(field, fmt.Sprintf("unresolved retention value type %T", raw), nil)
	}
}

// numberLiteral returns the canonical form of a decimal number string.
func numberLiteral(s string) (string, bool) {
	if !decimalPattern.MatchString(s) {
		return "", false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !isFinite(f) {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// RetentionPolicy says which rows survive a filtered delete:
// rows whose FilterColumn equals KeepValue.
type RetentionPolicy struct {
	FilterColumn string
	KeepValue    KeepValue
}

func (p RetentionPolicy) validate() error {
	if p.FilterColumn == "" {
		return newConfigError("retention.filter_column", "required", nil)
	}
	if !identifierPattern.MatchString(p.FilterColumn) {
		return newConfigError("retention.filter_column", fmt.Sprintf("%q is not a plain identifier", p.FilterColumn), nil)
	}
	if p.KeepValue.IsZero() {
		return newConfigError("retention.keep_value", "unresolved retention value type", nil)
	}
	return nil
}

// ExceptionSet holds pre-quoted table identifiers excluded from any purge.
// Membership is exact string match against the dialect's own quoting output;
// no case folding or quote normalization is applied.
type ExceptionSet struct {
	ordered []string
	members map[string]struct{}
}

// NewExceptionSet keeps the first occurrence of each identifier, in order.
func NewExceptionSet(ids ...string) ExceptionSet {
	s := ExceptionSet{members: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if _, dup := s.members[id]; dup {
			continue
		}
		s.members[id] = struct{}{}
		s.ordered = append(s.ordered, id)
	}
	return s
}

func (s ExceptionSet) Contains(quoted string) bool {
	_, ok := s.members[quoted]
	return ok
}

// List returns a copy of the identifiers in configuration order.
func (s ExceptionSet) List() []string {
	return append([]string(nil), s.ordered...)
}

func (s ExceptionSet) Len() int { return len(s.ordered) }
