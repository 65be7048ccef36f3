package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Core palette
	Rose     = lipgloss.Color("#FF6AC1")
	Amber    = lipgloss.Color("#FFB86C")
	Green    = lipgloss.Color("#50FA7B")
	Red      = lipgloss.Color("#FF5555")
	Cyan     = lipgloss.Color("#8BE9FD")
	MidGray  = lipgloss.Color("#6272A4")
	DimGray  = lipgloss.Color("#44475A")
	White    = lipgloss.Color("#F8F8F2")
	DarkText = lipgloss.Color("#282A36")

	// Header bar
	TitleStyle = lipgloss.NewStyle().
			Background(Rose).
			Foreground(DarkText).
			Bold(true).
			Padding(0, 1)

	TabStyle = lipgloss.NewStyle().
			Foreground(MidGray).
			Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true).
			Padding(0, 1)

	// Body
	StateStyle = lipgloss.NewStyle().
			Foreground(Rose).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(MidGray)

	ValueStyle = lipgloss.NewStyle().
			Foreground(White)

	GoodStyle = lipgloss.NewStyle().
			Foreground(Green)

	BadStyle = lipgloss.NewStyle().
			Foreground(Red)

	WarnStyle = lipgloss.NewStyle().
			Foreground(Amber)

	MOTDStyle = lipgloss.NewStyle().
			Foreground(Cyan).
			Italic(true)

	// Transient reply line after a care press
	FlashStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Italic(true)

	// Footer key hints
	HelpStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	// E gauge
	BarFillStyle  = lipgloss.NewStyle().Foreground(Rose)
	BarFloorStyle = lipgloss.NewStyle().Foreground(Amber)
	BarEmptyStyle = lipgloss.NewStyle().Foreground(DimGray)
)
