package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/redlist/internal/config"
)

const AppName = config.AppName

var LogoLines = []string{
	"█▀▀▄ █▀▀▀ █▀▀▄ █    ▀█▀ █▀▀▀ ▀█▀",
	"█▄▄▀ █▀▀  █  █ █     █  ▀▀▀█  █ ",
	"█  █ █▄▄▄ █▄▄▀ █▄▄▄ ▄█▄ ▄▄▄█  █ ",
}

const CompactLogo = `redlist ›`

// Palette. ApplyTheme replaces these from the user's configuration.
var (
	PrimaryColor   = lipgloss.Color("#E63946")
	SecondaryColor = lipgloss.Color("#4ECDC4")
	AccentColor    = lipgloss.Color("#F4A261")

	BackgroundColor = lipgloss.Color("#1A1A2E")
	SurfaceColor    = lipgloss.Color("#16213E")
	TextColor       = lipgloss.Color("#EAEAEA")
	MutedColor      = lipgloss.Color("#94A3B8")

	ErrorColor   = lipgloss.Color("#F87171")
	SuccessColor = lipgloss.Color("#4ADE80")
)

var (
	LogoStyle          lipgloss.Style
	TitleStyle         lipgloss.Style
	HeaderStyle        lipgloss.Style
	HelpStyle          lipgloss.Style
	MutedStyle         lipgloss.Style
	NameStyle          lipgloss.Style
	MarkerStyle        lipgloss.Style
	SavedMarkerStyle   lipgloss.Style
	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style
	SeparatorStyle     lipgloss.Style

	EmptyStyle = lipgloss.NewStyle()
)

func init() {
	buildStyles()
}

func buildStyles() {
	LogoStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	TitleStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Bold(true).
		Padding(0, 2)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	MutedStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	NameStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true)

	MarkerStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor)

	SavedMarkerStyle = lipgloss.NewStyle().
		Foreground(AccentColor).
		Bold(true)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(AccentColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	SeparatorStyle = lipgloss.NewStyle().
		Foreground(MutedColor)
}

// ApplyTheme installs the configured palette. Empty entries keep the
// built-in color.
func ApplyTheme(c config.UIColors) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&PrimaryColor, c.Primary)
	set(&SecondaryColor, c.Secondary)
	set(&AccentColor, c.Accent)
	set(&TextColor, c.Text)
	set(&MutedColor, c.Muted)
	set(&ErrorColor, c.Error)
	set(&SuccessColor, c.Success)
	buildStyles()
}

// ContentWrapper returns a style for wrapping content with width and height constraints
func ContentWrapper(width, height int) lipgloss.Style {
	return EmptyStyle.Width(width).Height(height).MaxHeight(height)
}

func GetWelcomeMessage() string {
	return GetCompactBanner("Type a forename to search red notices")
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

// Banner renders the startup banner with an optional version tag.
func Banner(version string) string {
	lines := make([]string, 0, len(LogoLines)+2)
	for _, line := range LogoLines {
		lines = append(lines, LogoStyle.Render(line))
	}
	lines = append(lines, "")

	tagline := "Red Notice Search"
	if version != "" && version != "dev" {
		if version[0] != 'v' && version[0] != 'V' {
			version = "v" + version
		}
		tagline = fmt.Sprintf("%s %s", tagline, version)
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(SecondaryColor).Render(tagline))

	border := lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}

	box := lipgloss.NewStyle().
		Border(border).
		BorderForeground(PrimaryColor).
		Padding(1, 3).
		MarginTop(1).
		Render(lipgloss.JoinVertical(lipgloss.Center, lines...))

	return lipgloss.NewStyle().
		Width(70).
		Align(lipgloss.Center).
		Render(box)
}

func ShowBanner(version string) {
	fmt.Println(Banner(version))
}
