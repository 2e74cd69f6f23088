package render

import (
	"fmt"

	"github.com/harrison/saltview/internal/models"
)

// Unit selects the display unit for duration columns and footers.
type Unit string

const (
	// UnitMilliseconds displays raw durations unchanged.
	UnitMilliseconds Unit = "ms"
	// UnitSeconds divides durations by 1000.
	UnitSeconds Unit = "s"
)

// Convert converts a raw millisecond duration into the requested display
// unit, returning the value and its suffix. No rounding happens here;
// formatting to fixed decimals is applied uniformly by the renderer.
func Convert(durationMS float64, unit Unit) (float64, string, error) {
	switch unit {
	case UnitMilliseconds:
		return durationMS, "ms", nil
	case UnitSeconds:
		return durationMS / 1000, "s", nil
	default:
		return 0, "", fmt.Errorf("%w: %q", models.ErrInvalidUnit, unit)
	}
}

// FormatDuration renders a millisecond duration in a humanized unit:
// minutes above one minute, seconds above one second, milliseconds below.
func FormatDuration(durationMS float64) string {
	seconds := durationMS / 1000
	switch {
	case seconds > 60:
		return fmt.Sprintf("%.2fmin", seconds/60)
	case seconds >= 1:
		return fmt.Sprintf("%.2fs", seconds)
	default:
		return fmt.Sprintf("%.2fms", durationMS)
	}
}
