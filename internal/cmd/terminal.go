package cmd

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/harrison/saltview/internal/render"
)

// resolveGlyphs turns the configured glyph token into a renderable set.
// The engine itself never inspects terminal state, so Auto is resolved
// here: box drawing needs a UTF-8 capable terminal. Unknown tokens fall
// through unchanged so the engine can reject them.
func resolveGlyphs(set render.GlyphSet) render.GlyphSet {
	switch set {
	case render.GlyphsRich, render.GlyphsSafe:
		return set
	case render.GlyphsAuto, "":
		if stdoutIsTerminal() && utf8Locale() {
			return render.GlyphsRich
		}
		return render.GlyphsSafe
	default:
		return set
	}
}

// stdoutIsTerminal reports whether stdout is an interactive terminal.
func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// utf8Locale checks the locale environment for UTF-8 support.
func utf8Locale() bool {
	for _, name := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if v := os.Getenv(name); v != "" {
			v = strings.ToUpper(strings.ReplaceAll(v, "-", ""))
			return strings.Contains(v, "UTF8")
		}
	}
	return false
}
