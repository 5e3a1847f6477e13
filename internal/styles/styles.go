// Package styles holds the terminal color palette and lipgloss styles used
// by the CLI and the watch dashboard.
package styles

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Palette is a named set of colors.
type Palette struct {
	Name        string
	Primary     string
	Accent      string
	Success     string
	Warning     string
	Error       string
	TextPrimary string
	TextMuted   string
	Border      string
	SyntaxTheme string // chroma style matching the palette
}

var (
	// DefaultPalette is the dark palette.
	DefaultPalette = Palette{
		Name:        "default",
		Primary:     "#7C3AED", // Purple
		Accent:      "#F59E0B", // Amber
		Success:     "#10B981", // Green
		Warning:     "#F59E0B",
		Error:       "#EF4444", // Red
		TextPrimary: "#F9FAFB",
		TextMuted:   "#6B7280",
		Border:      "#374151",
		SyntaxTheme: "monokai",
	}

	// LightPalette suits light terminal backgrounds.
	LightPalette = Palette{
		Name:        "light",
		Primary:     "#6D28D9",
		Accent:      "#B45309",
		Success:     "#047857",
		Warning:     "#B45309",
		Error:       "#B91C1C",
		TextPrimary: "#111827",
		TextMuted:   "#6B7280",
		Border:      "#D1D5DB",
		SyntaxTheme: "github",
	}
)

var palettes = map[string]Palette{
	DefaultPalette.Name: DefaultPalette,
	LightPalette.Name:   LightPalette,
}

var mu sync.RWMutex

// Colors and styles derived from the active palette.
var (
	Primary     lipgloss.Color
	Accent      lipgloss.Color
	Success     lipgloss.Color
	Warning     lipgloss.Color
	Error       lipgloss.Color
	TextPrimary lipgloss.Color
	TextMuted   lipgloss.Color
	Border      lipgloss.Color

	Title   lipgloss.Style
	Muted   lipgloss.Style
	OK      lipgloss.Style
	Failed  lipgloss.Style
	Pending lipgloss.Style
	Path    lipgloss.Style
	Panel   lipgloss.Style
	KeyHint lipgloss.Style
)

var current = DefaultPalette

func init() {
	Apply(DefaultPalette.Name)
}

// Lookup returns the palette with the given name.
func Lookup(name string) (Palette, bool) {
	p, ok := palettes[name]
	return p, ok
}

// Current returns the active palette.
func Current() Palette {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Apply activates a palette by name, falling back to the default.
func Apply(name string) {
	mu.Lock()
	defer mu.Unlock()

	p, ok := palettes[name]
	if !ok {
		p = DefaultPalette
	}
	current = p

	Primary = lipgloss.Color(p.Primary)
	Accent = lipgloss.Color(p.Accent)
	Success = lipgloss.Color(p.Success)
	Warning = lipgloss.Color(p.Warning)
	Error = lipgloss.Color(p.Error)
	TextPrimary = lipgloss.Color(p.TextPrimary)
	TextMuted = lipgloss.Color(p.TextMuted)
	Border = lipgloss.Color(p.Border)

	rebuildStyles()
}

// rebuildStyles recreates all lipgloss styles with current colors.
func rebuildStyles() {
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	OK = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Failed = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	Pending = lipgloss.NewStyle().
		Foreground(Warning)

	Path = lipgloss.NewStyle().
		Foreground(TextPrimary)

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	KeyHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)
}
