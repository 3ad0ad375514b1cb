// Package engine evaluates declarative filter conditions against records and
// orders records for sorting. Everything here is pure and deterministic: the
// worker-offload path and the synchronous fallback both call these functions,
// which is what keeps the two paths result-identical.
package engine

import (
	"fmt"
)

// FieldType describes how a condition's value should be interpreted.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldEnum    FieldType = "enum"
	FieldDate    FieldType = "date"
	FieldBoolean FieldType = "boolean"
)

// Operator is a filter comparison operator.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpBetween     Operator = "between"
	OpIn          Operator = "in"
	OpNotIn       Operator = "not_in"
	OpIsEmpty     Operator = "is_empty"
	OpIsNotEmpty  Operator = "is_not_empty"
)

// Condition is one declarative filter clause. Immutable once submitted: the
// engine never writes to it. A record matches a condition set iff it matches
// every condition (AND only; OR/grouping is a deliberate scope limit).
type Condition struct {
	Field         string    `json:"field" yaml:"field"`
	Type          FieldType `json:"type" yaml:"type"`
	Operator      Operator  `json:"operator" yaml:"operator"`
	Value         any       `json:"value,omitempty" yaml:"value,omitempty"`
	Values        []any     `json:"values,omitempty" yaml:"values,omitempty"`
	CaseSensitive bool      `json:"caseSensitive,omitempty" yaml:"caseSensitive,omitempty"`
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortConfig names the field to order by and the direction.
type SortConfig struct {
	Field     string    `json:"field" yaml:"field"`
	Direction Direction `json:"direction" yaml:"direction"`
}

// EvaluationError reports a malformed condition (unknown operator, missing
// values). It is a caller bug and is surfaced immediately, never retried.
type EvaluationError struct {
	Field    string
	Operator Operator
	Reason   string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate condition on %q: %s (operator %q)", e.Field, e.Reason, e.Operator)
}

var validOperators = map[Operator]struct{}{
	OpEquals: {}, OpNotEquals: {}, OpContains: {}, OpNotContains: {},
	OpStartsWith: {}, OpEndsWith: {}, OpGreaterThan: {}, OpLessThan: {},
	OpBetween: {}, OpIn: {}, OpNotIn: {}, OpIsEmpty: {}, OpIsNotEmpty: {},
}

// ValidateCondition checks a single condition for structural problems without
// touching any data.
func ValidateCondition(c Condition) error {
	if c.Field == "" {
		return &EvaluationError{Field: c.Field, Operator: c.Operator, Reason: "empty field name"}
	}
	if _, ok := validOperators[c.Operator]; !ok {
		return &EvaluationError{Field: c.Field, Operator: c.Operator, Reason: "unknown operator"}
	}
	switch c.Operator {
	case OpBetween:
		if len(c.Values) < 2 {
			return &EvaluationError{Field: c.Field, Operator: c.Operator, Reason: "between requires two values"}
		}
	case OpIn, OpNotIn:
		if len(c.Values) == 0 {
			return &EvaluationError{Field: c.Field, Operator: c.Operator, Reason: "membership requires values"}
		}
	}
	return nil
}

// ValidateConditions validates a whole condition set against the dataset's
// field universe. knownFields may be nil to skip the field-existence check.
// Returns one message per problem; an empty slice means the set is usable.
func ValidateConditions(conds []Condition, knownFields []string) []string {
	known := map[string]struct{}{}
	for _, f := range knownFields {
		known[f] = struct{}{}
	}
	var problems []string
	for i, c := range conds {
		if err := ValidateCondition(c); err != nil {
			problems = append(problems, fmt.Sprintf("condition %d: %v", i, err))
			continue
		}
		if len(known) > 0 {
			if _, ok := known[c.Field]; !ok {
				problems = append(problems, fmt.Sprintf("condition %d: field %q not present in dataset", i, c.Field))
			}
		}
	}
	return problems
}
