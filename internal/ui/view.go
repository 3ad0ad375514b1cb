package ui

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/gridx/internal/dataset"
	"github.com/oakwood-commons/gridx/internal/viewport"
)

const minColumnWidth = 8

// View renders the grid: header, column headers, the windowed slice of
// processed rows, and a status footer.
func (m *Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')
	b.WriteString(m.renderColumnHeader())
	b.WriteByte('\n')
	b.WriteString(m.renderRows())
	b.WriteString(m.renderFooter())

	v := tea.NewView(b.String())
	v.AltScreen = true
	return v
}

func (m *Model) renderHeader() string {
	title := fmt.Sprintf("%s — %d/%d rows", m.title, len(m.processed), len(m.records))
	if m.processing {
		title += " " + m.spinner.View()
	}
	return m.theme.Header.Width(m.width).Render(runewidth.Truncate(title, m.width, "…"))
}

// columnWidths splits the terminal width evenly across columns with a floor.
func (m *Model) columnWidths() []int {
	n := len(m.columns)
	if n == 0 {
		return nil
	}
	w := (m.width - n + 1) / n
	if w < minColumnWidth {
		w = minColumnWidth
	}
	widths := make([]int, n)
	for i := range widths {
		widths[i] = w
	}
	return widths
}

func (m *Model) renderColumnHeader() string {
	widths := m.columnWidths()
	cells := make([]string, len(m.columns))
	for i, col := range m.columns {
		label := col
		if i == m.sortColumn {
			if m.sortDir == "desc" {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		cells[i] = pad(label, widths[i])
	}
	return m.theme.ColumnHdr.Render(strings.Join(cells, " "))
}

// renderRows computes the viewport window over the processed list and renders
// only the visible slice. The overscan rows in the window are materialized
// but clipped by the terminal itself.
func (m *Model) renderRows() string {
	body := m.bodyHeight()
	n := len(m.processed)
	if n == 0 {
		msg := "no rows match"
		if len(m.records) == 0 {
			msg = "empty dataset"
		}
		return m.theme.Muted.Render(msg) + strings.Repeat("\n", body)
	}

	win, err := viewport.Compute(
		n,
		m.scrollOffset*m.cfg.Grid.ItemHeight,
		m.cfg.Grid.ItemHeight,
		body*m.cfg.Grid.ItemHeight,
		m.cfg.Grid.Overscan,
		m.cfg.Grid.VirtualizeThreshold,
	)
	if err != nil {
		// Config is validated at startup, so this is unreachable in a
		// running session; render the error rather than panic.
		return m.theme.ErrorText.Render(err.Error()) + strings.Repeat("\n", body)
	}

	rendered := viewport.Slice(m.processed, win)
	widths := m.columnWidths()

	var b strings.Builder
	lines := 0
	for i, rec := range rendered {
		idx := win.Start + i
		if idx < m.scrollOffset {
			continue // overscan above the viewport
		}
		if lines >= body {
			break
		}
		line := m.renderRow(rec, widths)
		if idx == m.cursor {
			line = m.theme.Selected.Render(line)
		} else {
			line = m.theme.Row.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
		lines++
	}
	for lines < body {
		b.WriteByte('\n')
		lines++
	}
	return b.String()
}

func (m *Model) renderRow(rec dataset.Record, widths []int) string {
	cells := make([]string, len(m.columns))
	for i, col := range m.columns {
		v, _ := rec.Field(col)
		cells[i] = pad(cellText(v), widths[i])
	}
	return strings.Join(cells, " ")
}

func (m *Model) renderFooter() string {
	if m.errText != "" {
		return m.theme.ErrorText.Render(runewidth.Truncate("error: "+m.errText, m.width, "…"))
	}

	switch m.mode {
	case modeSearch:
		return "/" + m.searchInput.View()
	case modeExpr:
		return "expr: " + m.exprInput.View()
	}

	parts := []string{"[/] search", "[e] expr", "[s] sort", "[q] quit"}
	if m.searchInput.Value() != "" {
		parts = append(parts, fmt.Sprintf("search=%q", m.searchInput.Value()))
	}
	if m.expr != nil {
		parts = append(parts, fmt.Sprintf("expr=%q", m.expr.Source()))
	}
	if m.procSource != "" {
		parts = append(parts, fmt.Sprintf("%s %s", m.procSource, m.procTime.Round(time.Millisecond)))
	}
	return m.theme.Footer.Render(runewidth.Truncate(strings.Join(parts, "  "), m.width, "…"))
}

func cellText(v any) string {
	if v == nil {
		return "—"
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprint(v)
	}
}

// pad truncates or right-pads s to exactly width display cells.
func pad(s string, width int) string {
	s = runewidth.Truncate(s, width, "…")
	gap := width - runewidth.StringWidth(s)
	if gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}
