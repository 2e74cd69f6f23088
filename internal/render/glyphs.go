package render

import (
	"fmt"

	"github.com/harrison/saltview/internal/models"
)

// GlyphSet names the character palette used for table borders and bars.
type GlyphSet string

const (
	// GlyphsRich draws borders with box-drawing characters and bars
	// with full blocks. Requires a UTF-8 capable terminal.
	GlyphsRich GlyphSet = "rich"
	// GlyphsSafe substitutes ASCII equivalents for every structural and
	// bar glyph.
	GlyphsSafe GlyphSet = "safe"
	// GlyphsAuto is a caller-side marker: resolve from detected terminal
	// capability before invoking the renderer. The renderer itself never
	// queries terminal state and rejects Auto.
	GlyphsAuto GlyphSet = "auto"
)

// palette is the full set of structural glyphs for one GlyphSet.
type palette struct {
	horizontal  string
	vertical    string
	topLeft     string
	topRight    string
	bottomLeft  string
	bottomRight string
	leftTee     string
	rightTee    string
	cross       string
	bottomTee   string
	bar         string
}

var richPalette = palette{
	horizontal:  "─",
	vertical:    "│",
	topLeft:     "┌",
	topRight:    "┐",
	bottomLeft:  "└",
	bottomRight: "┘",
	leftTee:     "├",
	rightTee:    "┤",
	cross:       "┼",
	bottomTee:   "┴",
	bar:         "█",
}

var safePalette = palette{
	horizontal:  "-",
	vertical:    "|",
	topLeft:     "+",
	topRight:    "+",
	bottomLeft:  "+",
	bottomRight: "+",
	leftTee:     "+",
	rightTee:    "+",
	cross:       "+",
	bottomTee:   "+",
	bar:         "#",
}

// paletteFor resolves a glyph set token. GlyphsAuto is not a renderable
// value here: the caller resolves terminal capability and passes Rich or
// Safe down explicitly.
func paletteFor(set GlyphSet) (palette, error) {
	switch set {
	case GlyphsRich:
		return richPalette, nil
	case GlyphsSafe:
		return safePalette, nil
	default:
		return palette{}, fmt.Errorf("%w: glyph set %q", models.ErrInvalidConfiguration, set)
	}
}

// BarGlyph returns the plot-bar character for a glyph set. Exposed so
// column schemas can build bar cells without reaching into the palette.
func BarGlyph(set GlyphSet) (string, error) {
	p, err := paletteFor(set)
	if err != nil {
		return "", err
	}
	return p.bar, nil
}
