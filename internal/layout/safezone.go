package layout

import (
	"github.com/labelpoint/labeld/internal/label"
	"github.com/labelpoint/labeld/internal/units"
)

// unprintableMarginMm is the fixed margin thermal heads cannot reach on any
// side of the label.
const unprintableMarginMm = 2.0

// SafeZone is the printable sub-region of a label, in millimeters.
type SafeZone struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether a rectangle at (x,y) of size (w,h) mm fits
// entirely inside the zone.
func (z SafeZone) Contains(x, y, w, h float64) bool {
	return x >= z.X && y >= z.Y && x+w <= z.X+z.Width && y+h <= z.Y+z.Height
}

// ComputeSafeZone subtracts the unprintable margin on all sides, then shifts
// by the profile offset converted back to millimeters. A positive offset
// moves content right/down, so it shrinks the usable far edge.
func ComputeSafeZone(size label.Size, profile *label.PrinterProfile) SafeZone {
	offXMm := units.DotsToMm(profile.OffsetX, profile.DPI)
	offYMm := units.DotsToMm(profile.OffsetY, profile.DPI)

	zone := SafeZone{
		X:      unprintableMarginMm + offXMm,
		Y:      unprintableMarginMm + offYMm,
		Width:  size.Width - 2*unprintableMarginMm,
		Height: size.Height - 2*unprintableMarginMm,
	}
	if zone.Width < 0 {
		zone.Width = 0
	}
	if zone.Height < 0 {
		zone.Height = 0
	}
	return zone
}
