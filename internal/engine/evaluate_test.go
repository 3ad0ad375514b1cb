package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/gridx/internal/dataset"
)

func rec(fields map[string]any) dataset.Record {
	return dataset.Record{ID: "r", Fields: fields}
}

func TestEvaluate_Operators(t *testing.T) {
	r := rec(map[string]any{
		"name":   "Widget Alpha",
		"status": "active",
		"load":   1500.0,
		"count":  "42",
		"due":    "2026-03-01",
	})

	cases := []struct {
		name string
		cond Condition
		want bool
	}{
		{"equals text fold", Condition{Field: "status", Type: FieldText, Operator: OpEquals, Value: "ACTIVE"}, true},
		{"equals case sensitive", Condition{Field: "status", Type: FieldText, Operator: OpEquals, Value: "ACTIVE", CaseSensitive: true}, false},
		{"not_equals", Condition{Field: "status", Type: FieldText, Operator: OpNotEquals, Value: "archived"}, true},
		{"contains", Condition{Field: "name", Type: FieldText, Operator: OpContains, Value: "alpha"}, true},
		{"not_contains", Condition{Field: "name", Type: FieldText, Operator: OpNotContains, Value: "beta"}, true},
		{"starts_with", Condition{Field: "name", Type: FieldText, Operator: OpStartsWith, Value: "widget"}, true},
		{"ends_with", Condition{Field: "name", Type: FieldText, Operator: OpEndsWith, Value: "Alpha", CaseSensitive: true}, true},
		{"greater_than number", Condition{Field: "load", Type: FieldNumber, Operator: OpGreaterThan, Value: 1000}, true},
		{"greater_than string field", Condition{Field: "count", Type: FieldNumber, Operator: OpGreaterThan, Value: 40}, true},
		{"less_than miss", Condition{Field: "load", Type: FieldNumber, Operator: OpLessThan, Value: 1000}, false},
		{"between inclusive low", Condition{Field: "load", Type: FieldNumber, Operator: OpBetween, Values: []any{1500, 2000}}, true},
		{"between inclusive high", Condition{Field: "load", Type: FieldNumber, Operator: OpBetween, Values: []any{1000, 1500}}, true},
		{"between outside", Condition{Field: "load", Type: FieldNumber, Operator: OpBetween, Values: []any{0, 100}}, false},
		{"in", Condition{Field: "status", Type: FieldEnum, Operator: OpIn, Values: []any{"active", "pending"}}, true},
		{"not_in", Condition{Field: "status", Type: FieldEnum, Operator: OpNotIn, Values: []any{"archived", "deleted"}}, true},
		{"in numeric coercion", Condition{Field: "count", Type: FieldNumber, Operator: OpIn, Values: []any{41, 42}}, true},
		{"date greater_than", Condition{Field: "due", Type: FieldDate, Operator: OpGreaterThan, Value: "2026-01-01"}, true},
		{"date less_than", Condition{Field: "due", Type: FieldDate, Operator: OpLessThan, Value: "2026-01-01"}, false},
		{"date between", Condition{Field: "due", Type: FieldDate, Operator: OpBetween, Values: []any{"2026-02-01", "2026-04-01"}}, true},
		{"is_not_empty", Condition{Field: "status", Type: FieldText, Operator: OpIsNotEmpty}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Evaluate(r, tc.cond)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// Null policy: nil, missing, and "" satisfy only is_empty. Every other
// operator, including the negative ones, fails on such values.
func TestEvaluate_NullPolicy(t *testing.T) {
	records := []dataset.Record{
		rec(map[string]any{"v": nil}),
		rec(map[string]any{"v": ""}),
		rec(map[string]any{}), // missing field
	}

	operators := []Condition{
		{Field: "v", Type: FieldText, Operator: OpEquals, Value: "x"},
		{Field: "v", Type: FieldText, Operator: OpNotEquals, Value: "x"},
		{Field: "v", Type: FieldText, Operator: OpContains, Value: "x"},
		{Field: "v", Type: FieldText, Operator: OpNotContains, Value: "x"},
		{Field: "v", Type: FieldNumber, Operator: OpGreaterThan, Value: 0},
		{Field: "v", Type: FieldNumber, Operator: OpLessThan, Value: 0},
		{Field: "v", Type: FieldText, Operator: OpIn, Values: []any{"x"}},
		{Field: "v", Type: FieldText, Operator: OpNotIn, Values: []any{"x"}},
		{Field: "v", Type: FieldText, Operator: OpIsNotEmpty},
	}

	for _, r := range records {
		for _, cond := range operators {
			got, err := Evaluate(r, cond)
			require.NoError(t, err)
			assert.False(t, got, "operator %s must fail on empty value %#v", cond.Operator, r.Fields["v"])
		}

		got, err := Evaluate(r, Condition{Field: "v", Type: FieldText, Operator: OpIsEmpty})
		require.NoError(t, err)
		assert.True(t, got)
	}
}

func TestFilter_NullRowExcludedFromPositiveMatch(t *testing.T) {
	records := []dataset.Record{
		{ID: "1", Fields: map[string]any{"name": "Alpha"}},
		{ID: "2", Fields: map[string]any{"name": "beta"}},
		{ID: "3", Fields: map[string]any{"name": nil}},
	}
	got, err := Filter(records, []Condition{
		{Field: "name", Type: FieldText, Operator: OpContains, Value: "a"},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
}

func TestEvaluate_ZeroAndFalseAreNotEmpty(t *testing.T) {
	r := rec(map[string]any{"n": 0.0, "b": false})

	got, err := Evaluate(r, Condition{Field: "n", Type: FieldNumber, Operator: OpIsEmpty})
	require.NoError(t, err)
	assert.False(t, got, "numeric zero is a value")

	got, err = Evaluate(r, Condition{Field: "b", Type: FieldBoolean, Operator: OpIsEmpty})
	require.NoError(t, err)
	assert.False(t, got, "boolean false is a value")

	got, err = Evaluate(r, Condition{Field: "n", Type: FieldNumber, Operator: OpEquals, Value: 0})
	require.NoError(t, err)
	assert.True(t, got)
}

func TestEvaluate_MalformedConditions(t *testing.T) {
	r := rec(map[string]any{"v": 1.0})

	cases := []Condition{
		{Field: "", Operator: OpEquals, Value: 1},
		{Field: "v", Operator: "like", Value: 1},
		{Field: "v", Operator: OpBetween, Values: []any{1}},
		{Field: "v", Operator: OpIn},
	}
	for _, cond := range cases {
		_, err := Evaluate(r, cond)
		require.Error(t, err)
		var evalErr *EvaluationError
		assert.ErrorAs(t, err, &evalErr)
	}
}

func TestFilter_ConjunctionAndOrder(t *testing.T) {
	records := []dataset.Record{
		rec(map[string]any{"status": "active", "load": 2000.0, "name": "a"}),
		rec(map[string]any{"status": "active", "load": 500.0, "name": "b"}),
		rec(map[string]any{"status": "archived", "load": 3000.0, "name": "c"}),
		rec(map[string]any{"status": "active", "load": 1500.0, "name": "d"}),
	}
	conds := []Condition{
		{Field: "status", Type: FieldEnum, Operator: OpEquals, Value: "active"},
		{Field: "load", Type: FieldNumber, Operator: OpGreaterThan, Value: 1000},
	}

	got, err := Filter(records, conds)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Fields["name"])
	assert.Equal(t, "d", got[1].Fields["name"])

	// No conditions passes everything through, as a copy.
	all, err := Filter(records, nil)
	require.NoError(t, err)
	assert.Len(t, all, len(records))
	all[0] = dataset.Record{}
	assert.Equal(t, "a", records[0].Fields["name"], "input slice must not alias the output")
}

func TestSearch(t *testing.T) {
	records := []dataset.Record{
		rec(map[string]any{"name": "Alpha Widget", "desc": "blue"}),
		rec(map[string]any{"name": "Beta", "desc": "contains alpha too"}),
		rec(map[string]any{"name": "Gamma", "desc": nil}),
	}

	got := Search(records, "ALPHA", []string{"name", "desc"})
	require.Len(t, got, 2)

	got = Search(records, "gamma", []string{"name"})
	require.Len(t, got, 1)

	// Empty term matches everything.
	assert.Len(t, Search(records, "", []string{"name"}), 3)

	// Fields absent from a record are skipped, not matched.
	assert.Empty(t, Search(records, "blue", []string{"missing"}))
}

func TestValidateConditions(t *testing.T) {
	conds := []Condition{
		{Field: "status", Type: FieldText, Operator: OpEquals, Value: "x"},
		{Field: "ghost", Type: FieldText, Operator: OpEquals, Value: "x"},
		{Field: "status", Type: FieldText, Operator: "bogus"},
	}
	problems := ValidateConditions(conds, []string{"status", "load"})
	require.Len(t, problems, 2)
	assert.Contains(t, problems[0], "ghost")
	assert.Contains(t, problems[1], "unknown operator")

	// nil knownFields skips the field-existence check.
	assert.Empty(t, ValidateConditions(conds[:2], nil))
}
