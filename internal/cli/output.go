package cli

import (
	"github.com/fatih/color"
	"github.com/loadout-dev/loadout/internal/check"
	"github.com/loadout-dev/loadout/internal/linker"
	"github.com/mattn/go-runewidth"
)

var (
	headerStyle  = color.New(color.FgCyan, color.Bold)
	successStyle = color.New(color.FgGreen)
	warningStyle = color.New(color.FgYellow, color.Bold)
	errorStyle   = color.New(color.FgRed)
	infoStyle    = color.New(color.FgCyan)
	mutedStyle   = color.New(color.FgHiBlack)
)

const (
	checkmark = "✓"
	xmark     = "✗"
	bullet    = "•"
	arrow     = "->"
	fixArrow  = "↳"
)

func severityStyle(s check.Severity) *color.Color {
	switch s {
	case check.SeverityError:
		return errorStyle
	case check.SeverityWarning:
		return warningStyle
	default:
		return infoStyle
	}
}

func actionStyle(a linker.Action) *color.Color {
	switch a {
	case linker.ActionCreated:
		return successStyle
	case linker.ActionUpdated:
		return warningStyle
	default:
		return mutedStyle
	}
}

// columnWidth returns the widest display width among values.
func columnWidth(values []string) int {
	width := 0
	for _, v := range values {
		if w := runewidth.StringWidth(v); w > width {
			width = w
		}
	}
	return width
}

// padRight pads text with spaces to width display cells.
func padRight(text string, width int) string {
	return runewidth.FillRight(text, width)
}
