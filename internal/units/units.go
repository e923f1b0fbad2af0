// Package units converts between physical label measurements and printer dots.
package units

import "math"

// MmPerInch is the metric base for all dot conversions.
const MmPerInch = 25.4

// MmToDots converts millimeters to device dots at the given resolution.
func MmToDots(mm float64, dpi int) int {
	return int(math.Round(mm / MmPerInch * float64(dpi)))
}

// DotsToMm converts device dots back to millimeters at the given resolution.
func DotsToMm(dots int, dpi int) float64 {
	return float64(dots) * MmPerInch / float64(dpi)
}

// PtToDots converts typographic points (1/72 inch) to device dots.
func PtToDots(pt float64, dpi int) int {
	return int(math.Round(pt / 72.0 * float64(dpi)))
}

// DotsToPt converts device dots to typographic points.
func DotsToPt(dots int, dpi int) float64 {
	return float64(dots) * 72.0 / float64(dpi)
}
