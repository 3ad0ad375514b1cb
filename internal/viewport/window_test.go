package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_SmallListsRenderFully(t *testing.T) {
	for _, rowCount := range []int{1, 10, 50, 100} {
		w, err := Compute(rowCount, 0, 1, 20, 5, 100)
		require.NoError(t, err)
		assert.Equal(t, 0, w.Start, "rowCount=%d", rowCount)
		assert.Equal(t, rowCount-1, w.End, "rowCount=%d", rowCount)
		assert.False(t, w.Windowed)
		assert.Equal(t, rowCount, w.TotalHeight)
	}
}

func TestCompute_EmptyList(t *testing.T) {
	w, err := Compute(0, 0, 1, 20, 5, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, w.Count())
	assert.Equal(t, 0, w.TotalHeight)
}

func TestCompute_ScrolledWindow(t *testing.T) {
	// 10,000 rows, itemHeight=40, containerHeight=400, overscan=5,
	// threshold=100, scrollOffset=4000.
	w, err := Compute(10000, 4000, 40, 400, 5, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, w.VisibleStart)
	assert.Equal(t, 110, w.VisibleEnd)
	assert.Equal(t, 95, w.Start)
	assert.Equal(t, 115, w.End)
	assert.Equal(t, 400000, w.TotalHeight)
	assert.True(t, w.Windowed)
}

func TestCompute_WindowSizeBound(t *testing.T) {
	cases := []struct {
		name         string
		rowCount     int
		scrollOffset int
	}{
		{"top", 5000, 0},
		{"middle", 5000, 50000},
		{"bottom", 5000, 5000*40 - 400},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, err := Compute(tc.rowCount, tc.scrollOffset, 40, 400, 5, 100)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, w.Start, 0)
			assert.LessOrEqual(t, w.End, tc.rowCount-1)
			// ceil(400/40) + 2*overscan, +1 for the inclusive range; clipping
			// at either edge can only shrink it.
			assert.LessOrEqual(t, w.Count(), 10+2*5+1)
			assert.Positive(t, w.Count())
		})
	}
}

func TestCompute_InvalidConfiguration(t *testing.T) {
	_, err := Compute(100, 0, 0, 20, 5, 10)
	require.Error(t, err)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "itemHeight", cfgErr.Param)

	_, err = Compute(100, 0, -3, 20, 5, 10)
	require.Error(t, err)

	_, err = Compute(100, 0, 1, 20, -1, 10)
	require.Error(t, err)
}

func TestCompute_ScrollPastEndClamps(t *testing.T) {
	w, err := Compute(200, 1_000_000, 1, 20, 5, 100)
	require.NoError(t, err)
	assert.Equal(t, 199, w.VisibleStart)
	assert.Equal(t, 199, w.End)
	assert.GreaterOrEqual(t, w.Start, 0)
}

func TestSlice(t *testing.T) {
	rows := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	w, err := Compute(10, 0, 1, 4, 1, 0)
	require.NoError(t, err)
	got := Slice(rows, w)
	require.NotEmpty(t, got)
	assert.Equal(t, w.Count(), len(got))
	assert.Equal(t, w.Start, got[0])

	// Empty window yields nil.
	empty, err := Compute(0, 0, 1, 4, 1, 0)
	require.NoError(t, err)
	assert.Nil(t, Slice(rows[:0], empty))
}
