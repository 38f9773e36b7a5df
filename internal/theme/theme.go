package theme

import "github.com/gdamore/tcell/v2"

// DOS blue theme colors.
var (
	// Transfer list
	ColorListBg    = tcell.NewRGBColor(0, 0, 128)   // Navy
	ColorFile      = tcell.NewRGBColor(0, 170, 170) // Teal
	ColorDirectory = tcell.ColorWhite
	ColorSkipped   = tcell.NewRGBColor(85, 85, 85)  // Grey
	ColorWarning   = tcell.NewRGBColor(255, 85, 85) // Bright red
	ColorCursorFg  = tcell.ColorBlack
	ColorCursorBg  = tcell.NewRGBColor(0, 170, 170)
	ColorHintFg    = tcell.ColorYellow

	// Header
	ColorHeaderFg = tcell.ColorWhite
	ColorHeaderBg = ColorListBg

	// Dialog
	ColorDialogFg     = tcell.ColorWhite
	ColorDialogBg     = tcell.NewRGBColor(0, 128, 128)
	ColorDialogBorder = tcell.ColorWhite
	ColorButtonFg     = tcell.ColorBlack
	ColorButtonBg     = tcell.NewRGBColor(0, 170, 170)
)
