package ui

import (
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/gridx/internal/config"
)

// Theme holds the resolved lipgloss styles for the grid. Styles are computed
// once from the config tokens; NoColor strips foreground/background and falls
// back to reverse video for the selection.
type Theme struct {
	Header    lipgloss.Style
	ColumnHdr lipgloss.Style
	Row       lipgloss.Style
	Selected  lipgloss.Style
	Footer    lipgloss.Style
	ErrorText lipgloss.Style
	Muted     lipgloss.Style
}

// NewTheme builds a Theme from config tokens.
func NewTheme(cfg config.ThemeConfig) Theme {
	if cfg.NoColor {
		return Theme{
			Header:    lipgloss.NewStyle().Bold(true),
			ColumnHdr: lipgloss.NewStyle().Bold(true).Underline(true),
			Row:       lipgloss.NewStyle(),
			Selected:  lipgloss.NewStyle().Reverse(true),
			Footer:    lipgloss.NewStyle(),
			ErrorText: lipgloss.NewStyle().Bold(true),
			Muted:     lipgloss.NewStyle().Faint(true),
		}
	}
	return Theme{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(cfg.HeaderFG)).
			Background(lipgloss.Color(cfg.HeaderBG)),
		ColumnHdr: lipgloss.NewStyle().Bold(true).Underline(true),
		Row:       lipgloss.NewStyle(),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(cfg.SelectedFG)).
			Background(lipgloss.Color(cfg.SelectedBG)),
		Footer:    lipgloss.NewStyle().Faint(true),
		ErrorText: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Muted:     lipgloss.NewStyle().Faint(true),
	}
}
