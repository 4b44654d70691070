package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// polyglotArt is the startup banner (filled block style).
var polyglotArt = []string{
	" ██████╗  ██████╗ ██╗     ██╗   ██╗ ██████╗ ██╗      ██████╗ ████████╗",
	" ██╔══██╗██╔═══██╗██║     ╚██╗ ██╔╝██╔════╝ ██║     ██╔═══██╗╚══██╔══╝",
	" ██████╔╝██║   ██║██║      ╚████╔╝ ██║  ███╗██║     ██║   ██║   ██║   ",
	" ██╔═══╝ ██║   ██║██║       ╚██╔╝  ██║   ██║██║     ██║   ██║   ██║   ",
	" ██║     ╚██████╔╝███████╗   ██║   ╚██████╔╝███████╗╚██████╔╝   ██║   ",
	" ╚═╝      ╚═════╝ ╚══════╝   ╚═╝    ╚═════╝ ╚══════╝ ╚═════╝    ╚═╝   ",
}

// Styles contains all lipgloss styles for the terminal UI. Two palettes
// exist, selected by the session's theme flag.
type Styles struct {
	Dark bool

	Banner     lipgloss.Style
	Tips       lipgloss.Style
	User       lipgloss.Style
	Partner    lipgloss.Style
	Bot        lipgloss.Style
	System     lipgloss.Style
	Annotation lipgloss.Style // emotion/language/transliteration lines
	Insight    lipgloss.Style // cultural insight block
	Error      lipgloss.Style
	Alert      lipgloss.Style
	Prompt     lipgloss.Style
	Separator  lipgloss.Style
	StatusBar  lipgloss.Style
	FormTitle  lipgloss.Style
	FormLabel  lipgloss.Style
}

// DarkStyles returns the default (dark) palette.
func DarkStyles() Styles {
	return Styles{
		Dark:       true,
		Banner:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4285F4")),
		Tips:       lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		User:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Partner:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("141")),
		Bot:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		System:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Annotation: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Insight:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("179")),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Alert:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
		Prompt:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Separator:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		StatusBar:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		FormTitle:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		FormLabel:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	}
}

// LightStyles returns the light palette.
func LightStyles() Styles {
	return Styles{
		Dark:       false,
		Banner:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1A56C4")),
		Tips:       lipgloss.NewStyle().Foreground(lipgloss.Color("235")),
		User:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("29")),
		Partner:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("55")),
		Bot:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("125")),
		System:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		Annotation: lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Insight:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("94")),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("124")),
		Alert:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("166")),
		Prompt:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("29")),
		Separator:  lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
		StatusBar:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		FormTitle:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("28")),
		FormLabel:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// StylesForTheme returns the palette for the given theme flag.
func StylesForTheme(dark bool) Styles {
	if dark {
		return DarkStyles()
	}
	return LightStyles()
}

// RenderBanner returns the styled startup banner.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	for _, line := range polyglotArt {
		_, _ = b.WriteString(s.Banner.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

// welcomeTips lists getting-started hints displayed under the banner.
var welcomeTips = []string{
	"Tips for getting started:",
	"  • Type in any language, or mix several - PolyGlot keeps up",
	"  • Tab cycles modes: Standard → Cultural Context → Harmony Mediation",
	"  • Ctrl+P switches the speaking party in Harmony mode",
	"  • Ctrl+R records a voice message, Ctrl+T flips the theme",
	"  • Ctrl+C cancels input, Ctrl+D exits",
}

// RenderWelcomeTips returns the styled tips block.
func (s Styles) RenderWelcomeTips() string {
	var b strings.Builder
	for _, tip := range welcomeTips {
		_, _ = b.WriteString(s.Tips.Render(tip))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
