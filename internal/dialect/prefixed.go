package dialect

import (
	"bytes"
	"fmt"

	"github.com/labelpoint/labeld/internal/label"
	"github.com/labelpoint/labeld/internal/symbology"
	"github.com/labelpoint/labeld/internal/units"
)

// Language A: command-prefixed stream. Every directive starts with "^" (or
// "~" for device settings), fields are positioned with ^FO and closed with
// ^FS. Scalable fonts, fixed-height linear barcodes, magnification-based
// matrix codes.

var prefixedBarcodes = map[symbology.Symbology]string{
	symbology.Code128: "^BCN,%d,Y,N,N",
	symbology.EAN13:   "^BEN,%d,Y,N",
	symbology.EAN8:    "^B8N,%d,Y,N",
	symbology.UPCA:    "^BUN,%d,Y,N,Y",
}

func compilePrefixed(tpl *label.Template, profile *label.PrinterProfile, items []resolved) []byte {
	var buf bytes.Buffer

	buf.WriteString("^XA\n")
	fmt.Fprintf(&buf, "~SD%02d\n", profile.Darkness)
	fmt.Fprintf(&buf, "^PR%d\n", profile.Speed)
	fmt.Fprintf(&buf, "^PW%d\n", units.MmToDots(tpl.Size.Width, profile.DPI))
	fmt.Fprintf(&buf, "^LL%d\n", units.MmToDots(tpl.Size.Height, profile.DPI))

	for _, it := range items {
		if bc := it.barcode(); bc != nil {
			writePrefixedBarcode(&buf, profile, &it, bc)
			continue
		}
		writePrefixedText(&buf, profile, &it)
	}

	buf.WriteString("^XZ\n")
	return buf.Bytes()
}

func writePrefixedText(buf *bytes.Buffer, profile *label.PrinterProfile, it *resolved) {
	h := units.PtToDots(it.fontPt(), profile.DPI)
	w := h // square glyph cell for the scalable font
	fmt.Fprintf(buf, "^FO%d,%d^A0N,%d,%d^FD%s^FS\n", it.x, it.y, h, w, it.value)
}

func writePrefixedBarcode(buf *bytes.Buffer, profile *label.PrinterProfile, it *resolved, bc *label.Barcode) {
	if bc.Symbology == symbology.QR {
		mag := qrMagnification(it, profile)
		fmt.Fprintf(buf, "^FO%d,%d^BQN,2,%d^FDQA,%s^FS\n", it.x, it.y, mag, it.value)
		return
	}

	height := it.h
	if height <= 0 {
		height = units.MmToDots(10, profile.DPI)
	}
	directive := fmt.Sprintf(symCode(bc.Symbology, prefixedBarcodes), height)
	fmt.Fprintf(buf, "^FO%d,%d^BY2%s^FD%s^FS\n", it.x, it.y, directive, it.value)
}

// qrMagnification picks a dot-per-module magnification that fills the
// element's width, clamped to the 1..10 range the language accepts.
func qrMagnification(it *resolved, profile *label.PrinterProfile) int {
	if it.w <= 0 {
		return 4
	}
	side := symbology.EstimateModuleCount(it.value, symbology.QR)
	mag := it.w / side
	if mag < 1 {
		mag = 1
	}
	if mag > 10 {
		mag = 10
	}
	return mag
}
