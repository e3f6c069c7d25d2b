// Package styles holds the lipgloss palettes and styles of the notesync shell.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// ThemeName represents a named color theme.
type ThemeName string

// Available theme names.
const (
	ThemeDefault ThemeName = "default" // Purple/green dark theme
	ThemeNord    ThemeName = "nord"    // Nord theme - cool blue-gray
	ThemeDracula ThemeName = "dracula" // Dracula theme colors
)

// Palette defines the colors a theme provides.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
	Surface   lipgloss.Color
	Text      lipgloss.Color
	Border    lipgloss.Color
}

// DefaultPalette returns the default purple/green palette.
func DefaultPalette() Palette {
	return Palette{
		Primary:   lipgloss.Color("#A78BFA"), // Purple (violet-400)
		Secondary: lipgloss.Color("#10B981"), // Green
		Warning:   lipgloss.Color("#F59E0B"), // Amber
		Error:     lipgloss.Color("#F87171"), // Red (red-400)
		Muted:     lipgloss.Color("#9CA3AF"), // Gray
		Surface:   lipgloss.Color("#1F2937"), // Dark surface
		Text:      lipgloss.Color("#F9FAFB"), // Light text
		Border:    lipgloss.Color("#6B7280"), // Gray-500
	}
}

// NordPalette returns the Nord palette.
func NordPalette() Palette {
	return Palette{
		Primary:   lipgloss.Color("#88C0D0"), // Frost
		Secondary: lipgloss.Color("#A3BE8C"), // Aurora green
		Warning:   lipgloss.Color("#EBCB8B"), // Aurora yellow
		Error:     lipgloss.Color("#BF616A"), // Aurora red
		Muted:     lipgloss.Color("#4C566A"), // Polar night 3
		Surface:   lipgloss.Color("#2E3440"), // Polar night 0
		Text:      lipgloss.Color("#ECEFF4"), // Snow storm 2
		Border:    lipgloss.Color("#3B4252"), // Polar night 1
	}
}

// DraculaPalette returns the Dracula palette.
func DraculaPalette() Palette {
	return Palette{
		Primary:   lipgloss.Color("#BD93F9"),
		Secondary: lipgloss.Color("#50FA7B"),
		Warning:   lipgloss.Color("#F1FA8C"),
		Error:     lipgloss.Color("#FF5555"),
		Muted:     lipgloss.Color("#6272A4"),
		Surface:   lipgloss.Color("#282A36"),
		Text:      lipgloss.Color("#F8F8F2"),
		Border:    lipgloss.Color("#44475A"),
	}
}

// PaletteFor returns the palette of the named theme, falling back to the
// default palette for unknown names.
func PaletteFor(name string) Palette {
	switch ThemeName(name) {
	case ThemeNord:
		return NordPalette()
	case ThemeDracula:
		return DraculaPalette()
	default:
		return DefaultPalette()
	}
}

// Styles is the set of styles the shell renders with.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Panel    lipgloss.Style
	Focused  lipgloss.Style
	Selected lipgloss.Style
	Item     lipgloss.Style
	Muted    lipgloss.Style
	Dirty    lipgloss.Style
	Info     lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Modal    lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// New builds Styles from a palette.
func New(p Palette) Styles {
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text).
			Background(p.Surface).
			Padding(0, 1),
		Panel:   panel,
		Focused: panel.BorderForeground(p.Primary),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Text).
			Background(p.Primary),
		Item:    lipgloss.NewStyle().Foreground(p.Text),
		Muted:   lipgloss.NewStyle().Foreground(p.Muted),
		Dirty:   lipgloss.NewStyle().Foreground(p.Warning).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(p.Secondary),
		Warning: lipgloss.NewStyle().Foreground(p.Warning),
		Error:   lipgloss.NewStyle().Foreground(p.Error),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(p.Warning).
			Padding(1, 2),
		HelpKey:  lipgloss.NewStyle().Foreground(p.Secondary).Bold(true),
		HelpDesc: lipgloss.NewStyle().Foreground(p.Muted),
	}
}

// ForTheme builds the Styles of the named theme.
func ForTheme(name string) Styles {
	return New(PaletteFor(name))
}
