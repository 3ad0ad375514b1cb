package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oakwood-commons/gridx/internal/dataset"
)

// Evaluate reports whether rec satisfies cond.
//
// Null policy: a nil or missing field value (or empty string) satisfies only
// is_empty, fails is_not_empty, and fails every positive comparison. That
// rule is applied once here, before operator dispatch, so individual
// operators never special-case nulls.
func Evaluate(rec dataset.Record, cond Condition) (bool, error) {
	if err := ValidateCondition(cond); err != nil {
		return false, err
	}

	value, _ := rec.Field(cond.Field)
	empty := isEmptyValue(value)

	switch cond.Operator {
	case OpIsEmpty:
		return empty, nil
	case OpIsNotEmpty:
		return !empty, nil
	}
	if empty {
		// Negative operators still fail on null: null is "no value", not a
		// value that differs from the operand.
		return false, nil
	}

	switch cond.Operator {
	case OpEquals:
		return equals(value, cond), nil
	case OpNotEquals:
		return !equals(value, cond), nil
	case OpContains:
		return stringMatch(value, cond, strings.Contains), nil
	case OpNotContains:
		return !stringMatch(value, cond, strings.Contains), nil
	case OpStartsWith:
		return stringMatch(value, cond, strings.HasPrefix), nil
	case OpEndsWith:
		return stringMatch(value, cond, strings.HasSuffix), nil
	case OpGreaterThan:
		return ordered(value, cond.Value, cond.Type, func(c int) bool { return c > 0 }), nil
	case OpLessThan:
		return ordered(value, cond.Value, cond.Type, func(c int) bool { return c < 0 }), nil
	case OpBetween:
		lo := ordered(value, cond.Values[0], cond.Type, func(c int) bool { return c >= 0 })
		hi := ordered(value, cond.Values[1], cond.Type, func(c int) bool { return c <= 0 })
		return lo && hi, nil
	case OpIn:
		return membership(value, cond), nil
	case OpNotIn:
		return !membership(value, cond), nil
	}
	return false, &EvaluationError{Field: cond.Field, Operator: cond.Operator, Reason: "unknown operator"}
}

// MatchesAll reports whether rec satisfies every condition in the set.
func MatchesAll(rec dataset.Record, conds []Condition) (bool, error) {
	for _, c := range conds {
		ok, err := Evaluate(rec, c)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Filter returns the records satisfying every condition, preserving input
// order. The input slice is never mutated.
func Filter(records []dataset.Record, conds []Condition) ([]dataset.Record, error) {
	if len(conds) == 0 {
		out := make([]dataset.Record, len(records))
		copy(out, records)
		return out, nil
	}
	out := make([]dataset.Record, 0, len(records))
	for _, r := range records {
		ok, err := MatchesAll(r, conds)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Search returns the records where any of the named fields contains term,
// case-insensitively. An empty term matches everything.
func Search(records []dataset.Record, term string, fields []string) []dataset.Record {
	if term == "" || len(fields) == 0 {
		out := make([]dataset.Record, len(records))
		copy(out, records)
		return out
	}
	needle := strings.ToLower(term)
	out := make([]dataset.Record, 0, len(records))
	for _, r := range records {
		for _, f := range fields {
			v, _ := r.Field(f)
			if isEmptyValue(v) {
				continue
			}
			if strings.Contains(strings.ToLower(stringify(v)), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// isEmptyValue implements the canonical null check: nil, missing, or "".
func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func equals(value any, cond Condition) bool {
	if cond.Type == FieldNumber {
		a, aok := toFloat(value)
		b, bok := toFloat(cond.Value)
		return aok && bok && a == b
	}
	if cond.Type == FieldDate {
		a, aok := toTime(value)
		b, bok := toTime(cond.Value)
		return aok && bok && a.Equal(b)
	}
	return foldEqual(stringify(value), stringify(cond.Value), cond.CaseSensitive)
}

func stringMatch(value any, cond Condition, match func(s, substr string) bool) bool {
	s := stringify(value)
	sub := stringify(cond.Value)
	if !cond.CaseSensitive {
		s = strings.ToLower(s)
		sub = strings.ToLower(sub)
	}
	return match(s, sub)
}

func membership(value any, cond Condition) bool {
	for _, candidate := range cond.Values {
		if cond.Type == FieldNumber {
			a, aok := toFloat(value)
			b, bok := toFloat(candidate)
			if aok && bok && a == b {
				return true
			}
			continue
		}
		if foldEqual(stringify(value), stringify(candidate), cond.CaseSensitive) {
			return true
		}
	}
	return false
}

// ordered compares value against operand per the condition's type and feeds
// the sign into accept. Non-coercible operands never match.
func ordered(value, operand any, ft FieldType, accept func(int) bool) bool {
	if ft == FieldDate {
		a, aok := toTime(value)
		b, bok := toTime(operand)
		if !aok || !bok {
			return false
		}
		return accept(a.Compare(b))
	}
	a, aok := toFloat(value)
	b, bok := toFloat(operand)
	if !aok || !bok {
		return false
	}
	switch {
	case a < b:
		return accept(-1)
	case a > b:
		return accept(1)
	default:
		return accept(0)
	}
}

func foldEqual(a, b string, caseSensitive bool) bool {
	if caseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

// stringify renders any non-nil value for string comparison.
func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// toFloat coerces numeric-ish values. Strings are parsed so CSV-sourced
// datasets still compare numerically.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// toTime coerces date-ish values: time.Time, RFC3339/date strings, or unix
// epoch seconds.
func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	default:
		if f, ok := toFloat(v); ok {
			return time.Unix(int64(f), 0).UTC(), true
		}
		return time.Time{}, false
	}
}
