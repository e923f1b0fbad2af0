package layout

import (
	"fmt"

	"github.com/labelpoint/labeld/internal/label"
)

// FixKind names the corrective action a suggestion proposes.
type FixKind string

const (
	FixClampToSafeZone FixKind = "clamp_to_safe_zone"
	FixWidenBarcode    FixKind = "widen_barcode"
	FixShrinkFont      FixKind = "shrink_font"
)

// Suggestion is one advisory layout fix. AutoFixable marks fixes that can be
// applied mechanically; none are applied without acceptance.
type Suggestion struct {
	ElementID   string  `json:"elementId"`
	Fix         FixKind `json:"fix"`
	Message     string  `json:"message"`
	AutoFixable bool    `json:"autoFixable"`

	// Proposed replacement geometry, in millimeters. Only the fields the
	// fix touches are meaningful.
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	SizePt float64 `json:"sizePt,omitempty"`
}

// ptToMm converts a font size in points to its approximate glyph height in
// millimeters for container fit checks.
const ptToMm = 25.4 / 72.0

// SuggestLayout inspects every enabled element and returns advisory fixes:
// safe-zone overflow (clamp), under-dense barcodes (widen to minimum) and
// fonts taller than their container (shrink to 80% of the height).
func SuggestLayout(tpl *label.Template, profile *label.PrinterProfile, rec label.DataRecord) []Suggestion {
	zone := ComputeSafeZone(tpl.Size, profile)
	var out []Suggestion

	for _, el := range tpl.EnabledElements() {
		b := el.Base()
		w, h := b.Width, b.Height
		if w == 0 {
			w = zone.Width / 2 // nominal footprint for unsized elements
		}
		if h == 0 {
			h = 5
		}

		if !zone.Contains(b.X, b.Y, w, h) {
			s := Suggestion{
				ElementID:   b.ID,
				Fix:         FixClampToSafeZone,
				AutoFixable: true,
				X:           clamp(b.X, zone.X, zone.X+zone.Width-w),
				Y:           clamp(b.Y, zone.Y, zone.Y+zone.Height-h),
				Message:     fmt.Sprintf("element %s leaves the printable area", b.ID),
			}
			out = append(out, s)
		}

		switch v := el.(type) {
		case *label.Barcode:
			if b.Width <= 0 {
				break
			}
			dens := CheckDensity(rec.BarcodePayload(), v.Symbology, b.Width)
			if dens.Severity == SeverityError && dens.MinWidthMm > 0 {
				out = append(out, Suggestion{
					ElementID:   b.ID,
					Fix:         FixWidenBarcode,
					AutoFixable: true,
					Width:       dens.MinWidthMm,
					Message:     dens.Message,
				})
			}
		case *label.Text:
			if v.Font == nil || v.Font.SizePt <= 0 || b.Height <= 0 {
				break
			}
			if v.Font.SizePt*ptToMm > b.Height {
				target := b.Height * 0.8 / ptToMm
				out = append(out, Suggestion{
					ElementID:   b.ID,
					Fix:         FixShrinkFont,
					AutoFixable: true,
					SizePt:      target,
					Message:     fmt.Sprintf("font %.0fpt overflows a %.1fmm container", v.Font.SizePt, b.Height),
				})
			}
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
