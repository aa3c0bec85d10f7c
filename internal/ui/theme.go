package ui

import "github.com/charmbracelet/lipgloss"

// Theme is the palette for the client's screens, in ANSI 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	Accent     lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Danger     lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color
	BorderColor        lipgloss.Color
}

var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),
	Accent:     lipgloss.Color("75"),
	Success:    lipgloss.Color("114"),
	Warning:    lipgloss.Color("220"),
	Danger:     lipgloss.Color("196"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),
	BorderColor:        lipgloss.Color("240"),
}

type styles struct {
	title    lipgloss.Style
	faint    lipgloss.Style
	label    lipgloss.Style
	selected lipgloss.Style
	errText  lipgloss.Style
	okText   lipgloss.Style
	banner   lipgloss.Style
	waiting  lipgloss.Style
	served   lipgloss.Style
	navbar   lipgloss.Style
	navLink  lipgloss.Style
	navOn    lipgloss.Style
	panel    lipgloss.Style
	help     lipgloss.Style
}

func newStyles(theme Theme) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(theme.SelectedForeground).MarginBottom(1),
		faint:    lipgloss.NewStyle().Foreground(theme.FaintText),
		label:    lipgloss.NewStyle().Foreground(theme.NormalText).Width(18),
		selected: lipgloss.NewStyle().Background(theme.SelectedBackground).Foreground(theme.SelectedForeground),
		errText:  lipgloss.NewStyle().Foreground(theme.Danger),
		okText:   lipgloss.NewStyle().Foreground(theme.Success),
		banner:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("16")).Background(theme.Warning).Padding(0, 1),
		waiting:  lipgloss.NewStyle().Bold(true).Foreground(theme.Warning),
		served:   lipgloss.NewStyle().Bold(true).Foreground(theme.Success),
		navbar:   lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(theme.BorderColor),
		navLink:  lipgloss.NewStyle().Foreground(theme.FaintText),
		navOn:    lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		panel:    lipgloss.NewStyle().Padding(1, 2),
		help:     lipgloss.NewStyle().Foreground(theme.FaintText).MarginTop(1),
	}
}

var style = newStyles(DefaultTheme)

func statusBadge(status string) string {
	if status == "Served" {
		return style.served.Render(status)
	}
	return style.waiting.Render(status)
}
