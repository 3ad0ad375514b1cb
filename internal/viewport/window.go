// Package viewport computes the visible index window for virtualized
// rendering: given the scroll position, only the rows implied by the
// viewport (plus overscan) are materialized, while TotalHeight keeps the
// scroll container sized for the full list.
package viewport

import "fmt"

// Window is the computed render range. Start..End (inclusive) is what should
// be rendered; VisibleStart..VisibleEnd is the strictly visible subrange
// without overscan. Invariant: 0 <= Start <= End <= rowCount-1, or an empty
// window when rowCount is 0.
type Window struct {
	Start        int
	End          int
	VisibleStart int
	VisibleEnd   int
	TotalHeight  int
	Windowed     bool
}

// Count returns the number of rows in the render range.
func (w Window) Count() int {
	if w.End < w.Start {
		return 0
	}
	return w.End - w.Start + 1
}

// ConfigurationError reports invalid windowing parameters: a caller bug,
// surfaced immediately and never retried.
type ConfigurationError struct {
	Param  string
	Value  int
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("viewport: invalid %s %d: %s", e.Param, e.Value, e.Reason)
}

// Compute derives the render window. Lists at or below threshold are returned
// unwindowed so small datasets never pay virtualization overhead. The
// function is O(1) and allocates nothing; recompute on every scroll event.
func Compute(rowCount, scrollOffset, itemHeight, containerHeight, overscan, threshold int) (Window, error) {
	if itemHeight <= 0 {
		return Window{}, &ConfigurationError{Param: "itemHeight", Value: itemHeight, Reason: "must be positive"}
	}
	if overscan < 0 {
		return Window{}, &ConfigurationError{Param: "overscan", Value: overscan, Reason: "must be non-negative"}
	}
	if containerHeight < 0 {
		return Window{}, &ConfigurationError{Param: "containerHeight", Value: containerHeight, Reason: "must be non-negative"}
	}

	if rowCount <= 0 {
		return Window{Start: 0, End: -1, VisibleStart: 0, VisibleEnd: -1, TotalHeight: 0}, nil
	}

	totalHeight := rowCount * itemHeight

	if rowCount <= threshold {
		return Window{
			Start:        0,
			End:          rowCount - 1,
			VisibleStart: 0,
			VisibleEnd:   rowCount - 1,
			TotalHeight:  totalHeight,
		}, nil
	}

	if scrollOffset < 0 {
		scrollOffset = 0
	}
	visibleStart := scrollOffset / itemHeight
	if visibleStart > rowCount-1 {
		visibleStart = rowCount - 1
	}
	rowsPerPage := (containerHeight + itemHeight - 1) / itemHeight
	visibleEnd := visibleStart + rowsPerPage
	if visibleEnd > rowCount-1 {
		visibleEnd = rowCount - 1
	}

	start := visibleStart - overscan
	if start < 0 {
		start = 0
	}
	end := visibleEnd + overscan
	if end > rowCount-1 {
		end = rowCount - 1
	}

	return Window{
		Start:        start,
		End:          end,
		VisibleStart: visibleStart,
		VisibleEnd:   visibleEnd,
		TotalHeight:  totalHeight,
		Windowed:     true,
	}, nil
}

// Slice returns the rows covered by the window without copying. The returned
// slice aliases rows; callers treat published lists as immutable.
func Slice[T any](rows []T, w Window) []T {
	if w.End < w.Start || w.Start >= len(rows) {
		return nil
	}
	end := w.End
	if end > len(rows)-1 {
		end = len(rows) - 1
	}
	return rows[w.Start : end+1]
}
