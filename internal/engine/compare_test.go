package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/gridx/internal/dataset"
)

func names(records []dataset.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestSort_NumericAscending(t *testing.T) {
	records := []dataset.Record{
		{ID: "a", Fields: map[string]any{"load": 300.0}},
		{ID: "b", Fields: map[string]any{"load": 100.0}},
		{ID: "c", Fields: map[string]any{"load": 200.0}},
	}
	got := Sort(records, SortConfig{Field: "load", Direction: Asc})
	assert.Equal(t, []string{"b", "c", "a"}, names(got))

	// Input order untouched.
	assert.Equal(t, []string{"a", "b", "c"}, names(records))
}

func TestSort_StringCollation(t *testing.T) {
	records := []dataset.Record{
		{ID: "1", Fields: map[string]any{"name": "beta"}},
		{ID: "2", Fields: map[string]any{"name": "Alpha"}},
		{ID: "3", Fields: map[string]any{"name": "gamma"}},
	}
	got := Sort(records, SortConfig{Field: "name", Direction: Asc})
	// Case-insensitive Unicode ordering: Alpha before beta before gamma.
	assert.Equal(t, []string{"2", "1", "3"}, names(got))
}

// Nulls are worst for the active direction: last ascending, first descending.
func TestSort_NullPlacement(t *testing.T) {
	records := []dataset.Record{
		{ID: "null", Fields: map[string]any{"v": nil}},
		{ID: "two", Fields: map[string]any{"v": 2.0}},
		{ID: "missing", Fields: map[string]any{}},
		{ID: "one", Fields: map[string]any{"v": 1.0}},
	}

	asc := Sort(records, SortConfig{Field: "v", Direction: Asc})
	require.Equal(t, []string{"one", "two", "null", "missing"}, names(asc))

	desc := Sort(records, SortConfig{Field: "v", Direction: Desc})
	require.Equal(t, "two", desc[2].ID)
	require.Equal(t, "one", desc[3].ID)
	assert.ElementsMatch(t, []string{"null", "missing"}, names(desc)[:2])
}

func TestSort_StableOnEqualKeys(t *testing.T) {
	records := []dataset.Record{
		{ID: "a", Fields: map[string]any{"group": "x", "seq": 1.0}},
		{ID: "b", Fields: map[string]any{"group": "x", "seq": 2.0}},
		{ID: "c", Fields: map[string]any{"group": "x", "seq": 3.0}},
		{ID: "d", Fields: map[string]any{"group": "x", "seq": 4.0}},
	}
	got := Sort(records, SortConfig{Field: "group", Direction: Asc})
	assert.Equal(t, []string{"a", "b", "c", "d"}, names(got), "equal keys keep their input order")
}

func TestSort_MixedTypesFallBackToStrings(t *testing.T) {
	records := []dataset.Record{
		{ID: "s", Fields: map[string]any{"v": "10"}},
		{ID: "n", Fields: map[string]any{"v": 9.0}},
	}
	// "10" stays a string here, so it orders before "9" lexically.
	got := Sort(records, SortConfig{Field: "v", Direction: Asc})
	assert.Equal(t, []string{"s", "n"}, names(got))
}

func TestSort_EmptyFieldIsIdentity(t *testing.T) {
	records := []dataset.Record{
		{ID: "b", Fields: map[string]any{"v": 2.0}},
		{ID: "a", Fields: map[string]any{"v": 1.0}},
	}
	got := Sort(records, SortConfig{})
	assert.Equal(t, []string{"b", "a"}, names(got))
}

func TestSort_CaseAndNullOrdering(t *testing.T) {
	records := []dataset.Record{
		{ID: "1", Fields: map[string]any{"name": "Alpha"}},
		{ID: "2", Fields: map[string]any{"name": "beta"}},
		{ID: "3", Fields: map[string]any{"name": nil}},
	}

	asc := Sort(records, SortConfig{Field: "name", Direction: Asc})
	assert.Equal(t, []string{"1", "2", "3"}, names(asc))

	desc := Sort(records, SortConfig{Field: "name", Direction: Desc})
	assert.Equal(t, []string{"3", "2", "1"}, names(desc))
}

func TestCompare_Antisymmetry(t *testing.T) {
	a := dataset.Record{ID: "a", Fields: map[string]any{"v": 1.0}}
	b := dataset.Record{ID: "b", Fields: map[string]any{"v": 2.0}}
	cfg := SortConfig{Field: "v", Direction: Asc}

	assert.Equal(t, -1, Compare(a, b, cfg))
	assert.Equal(t, 1, Compare(b, a, cfg))
	assert.Equal(t, 0, Compare(a, a, cfg))

	cfg.Direction = Desc
	assert.Equal(t, 1, Compare(a, b, cfg))
}
