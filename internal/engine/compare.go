package engine

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/oakwood-commons/gridx/internal/dataset"
)

// The collator carries internal scratch buffers, so access is serialized.
// language.Und gives locale-aware Unicode ordering without pinning a region.
var (
	collMu sync.Mutex
	coll   = collate.New(language.Und, collate.Loose)
)

func collateStrings(a, b string) int {
	collMu.Lock()
	defer collMu.Unlock()
	return coll.CompareString(a, b)
}

// Compare orders two records under cfg, returning -1, 0, or 1.
//
// Nulls are always worst for the active direction: they sort to the end
// ascending and to the beginning descending. That check happens before any
// type dispatch. Two numbers compare arithmetically, two strings with
// locale-aware collation, mixed types fall back to string comparison.
func Compare(a, b dataset.Record, cfg SortConfig) int {
	av, _ := a.Field(cfg.Field)
	bv, _ := b.Field(cfg.Field)

	aEmpty := isEmptyValue(av)
	bEmpty := isEmptyValue(bv)
	desc := cfg.Direction == Desc

	switch {
	case aEmpty && bEmpty:
		return 0
	case aEmpty:
		if desc {
			return -1
		}
		return 1
	case bEmpty:
		if desc {
			return 1
		}
		return -1
	}

	c := compareValues(av, bv)
	if desc {
		return -c
	}
	return c
}

func compareValues(a, b any) int {
	af, aok := numericValue(a)
	bf, bok := numericValue(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return collateStrings(stringify(a), stringify(b))
}

// numericValue is stricter than toFloat: strings stay strings here so "10"
// and 10 only mix through the string fallback, matching display ordering.
func numericValue(v any) (float64, bool) {
	switch v.(type) {
	case string, bool, nil:
		return 0, false
	default:
		return toFloat(v)
	}
}

// Sort returns records ordered by cfg. The sort is stable, so equal keys
// preserve their original relative order; the input slice is never mutated.
func Sort(records []dataset.Record, cfg SortConfig) []dataset.Record {
	out := make([]dataset.Record, len(records))
	copy(out, records)
	if cfg.Field == "" {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		return Compare(out[i], out[j], cfg) < 0
	})
	return out
}
