package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/wilbur182/pagegen/internal/styles"
)

// BrailleSpinner renders an animated braille dot pattern.
// It is a passive component: call Tick from an existing tick handler.
type BrailleSpinner struct {
	frame  int
	active bool
}

var brailleFrames = []string{
	"⠋ ⠙ ⠹ ⠸",
	"⠙ ⠹ ⠸ ⠼",
	"⠹ ⠸ ⠼ ⠴",
	"⠸ ⠼ ⠴ ⠦",
	"⠼ ⠴ ⠦ ⠧",
	"⠴ ⠦ ⠧ ⠇",
	"⠦ ⠧ ⠇ ⠏",
	"⠧ ⠇ ⠏ ⠋",
	"⠇ ⠏ ⠋ ⠙",
	"⠏ ⠋ ⠙ ⠹",
}

// NewBrailleSpinner creates a new braille spinner (inactive by default).
func NewBrailleSpinner() BrailleSpinner {
	return BrailleSpinner{}
}

// SetActive starts or stops the animation. Starting resets the frame.
func (b *BrailleSpinner) SetActive(active bool) {
	if active && !b.active {
		b.frame = 0
	}
	b.active = active
}

// IsActive returns whether the spinner is running.
func (b BrailleSpinner) IsActive() bool {
	return b.active
}

// Tick advances the animation frame.
func (b *BrailleSpinner) Tick() {
	if b.active {
		b.frame++
	}
}

// View renders the current frame followed by label, or nothing when idle.
func (b BrailleSpinner) View(label string) string {
	if !b.active {
		return ""
	}
	frame := lipgloss.NewStyle().Foreground(styles.Accent).Render(brailleFrames[b.frame%len(brailleFrames)])
	if label == "" {
		return frame
	}
	return frame + " " + lipgloss.NewStyle().Foreground(styles.TextMuted).Render(label)
}
