// Package dataset loads tabular record sets from files and defines the Record
// type the rest of gridx operates on. Records are opaque keyed maps: nothing
// here interprets field values beyond what a caller names explicitly.
package dataset

import (
	"fmt"
	"sort"
)

// Record is one row of the dataset. ID is stable for the lifetime of the
// loaded set and is what the UI and tests correlate on.
type Record struct {
	ID     string
	Fields map[string]any
}

// Field returns the named field value. The second return reports whether the
// field exists at all; a present-but-nil value returns (nil, true).
func (r Record) Field(name string) (any, bool) {
	if r.Fields == nil {
		return nil, false
	}
	v, ok := r.Fields[name]
	return v, ok
}

// FieldNames returns the union of field names across records, sorted. Used to
// seed searchable-field defaults and condition validation.
func FieldNames(records []Record) []string {
	seen := map[string]struct{}{}
	for _, r := range records {
		for k := range r.Fields {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// assignID picks a stable ID for a record: an explicit "id" field when
// present, otherwise the record's position in the file.
func assignID(fields map[string]any, index int) string {
	if v, ok := fields["id"]; ok && v != nil {
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("row-%d", index)
}
