package dialect

import (
	"bytes"
	"fmt"

	"github.com/labelpoint/labeld/internal/label"
	"github.com/labelpoint/labeld/internal/units"
)

// CalibrationPattern emits the language-A test sheet: five reference marks,
// each a pair of short perpendicular segments crossing at the anchor, plus
// two lines of reference text naming the physical size and resolution. Only
// language A is supported; the calibration workflow prints through an
// A-capable profile regardless of the production language.
func CalibrationPattern(profile *label.PrinterProfile) ([]byte, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	w := units.MmToDots(profile.LabelWidthMm, profile.DPI)
	h := units.MmToDots(profile.LabelHeightMm, profile.DPI)
	segLen := units.MmToDots(4, profile.DPI)
	thick := units.MmToDots(0.5, profile.DPI)
	if thick < 2 {
		thick = 2
	}

	var buf bytes.Buffer
	buf.WriteString("^XA\n")
	fmt.Fprintf(&buf, "^PW%d\n", w)
	fmt.Fprintf(&buf, "^LL%d\n", h)

	for _, a := range label.CalibrationAnchors {
		cx := int(a.X * float64(w))
		cy := int(a.Y * float64(h))
		// Horizontal segment centered on the anchor.
		fmt.Fprintf(&buf, "^FO%d,%d^GB%d,%d,%d^FS\n", cx-segLen/2, cy-thick/2, segLen, thick, thick)
		// Vertical segment centered on the anchor.
		fmt.Fprintf(&buf, "^FO%d,%d^GB%d,%d,%d^FS\n", cx-thick/2, cy-segLen/2, thick, segLen, thick)
	}

	textH := units.PtToDots(8, profile.DPI)
	fmt.Fprintf(&buf, "^FO%d,%d^A0N,%d,%d^FDCAL %gx%gmm^FS\n",
		int(0.3*float64(w)), int(0.4*float64(h)), textH, textH,
		profile.LabelWidthMm, profile.LabelHeightMm)
	fmt.Fprintf(&buf, "^FO%d,%d^A0N,%d,%d^FD%dDPI^FS\n",
		int(0.3*float64(w)), int(0.4*float64(h))+textH+2, textH, textH, profile.DPI)

	buf.WriteString("^XZ\n")
	return buf.Bytes(), nil
}
