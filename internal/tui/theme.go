package tui

import (
	"github.com/gdamore/tcell/v2"
)

// Color palette
var (
	// Primary accent color
	AccentBlue = tcell.NewRGBColor(59, 130, 246) // #3B82F6

	// Status colors
	SuccessGreen = tcell.NewRGBColor(34, 197, 94) // #22C55E

	FieldGray = tcell.ColorDarkSlateGray
)
