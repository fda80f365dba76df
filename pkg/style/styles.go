package style

import (
	"github.com/arthur-debert/stgcore/pkg/registry"
	"github.com/charmbracelet/lipgloss"
)

// Base styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(HeadingColor).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	CodeStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	PathStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor).
			Italic(true)
)

// Registry styles
var (
	ConcreteStyle = lipgloss.NewStyle().
			Foreground(ConcreteColor)

	AbstractStyle = lipgloss.NewStyle().
			Foreground(AbstractColor).
			Italic(true)

	StubStyle = lipgloss.NewStyle().
			Foreground(StubColor)

	ToolboxStyle = lipgloss.NewStyle().
			Foreground(ToolboxColor).
			Bold(true)
)

// Indicators
var (
	SuccessIndicator = SuccessStyle.Render("✓")
	ErrorIndicator   = ErrorStyle.Render("✗")
	PendingIndicator = MutedStyle.Render("○")
)

// KindStyle returns the style used for type names of a kind.
func KindStyle(k registry.Kind) lipgloss.Style {
	switch k {
	case registry.KindAbstract:
		return AbstractStyle
	case registry.KindStub:
		return StubStyle
	default:
		return ConcreteStyle
	}
}

func Indent(s string, level int) string {
	return lipgloss.NewStyle().PaddingLeft(level * 2).Render(s)
}

func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}
