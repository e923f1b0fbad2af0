package dialect

import (
	"bytes"
	"fmt"

	"github.com/labelpoint/labeld/internal/label"
	"github.com/labelpoint/labeld/internal/symbology"
	"github.com/labelpoint/labeld/internal/units"
)

// Language C: declarative stream. The label geometry is declared up front
// (SIZE/GAP/SPEED/DENSITY), the screen cleared, then one directive per
// element with explicit bar-width parameters, closed by a print count.

var declarativeBarcodes = map[symbology.Symbology]string{
	symbology.Code128: "128",
	symbology.EAN13:   "EAN13",
	symbology.EAN8:    "EAN8",
	symbology.UPCA:    "UPCA",
}

func compileDeclarative(tpl *label.Template, profile *label.PrinterProfile, items []resolved) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "SIZE %g mm,%g mm\r\n", tpl.Size.Width, tpl.Size.Height)
	buf.WriteString("GAP 2 mm,0\r\n")
	fmt.Fprintf(&buf, "SPEED %d\r\n", profile.Speed)
	fmt.Fprintf(&buf, "DENSITY %d\r\n", profile.Darkness)
	buf.WriteString("CLS\r\n")

	for _, it := range items {
		if bc := it.barcode(); bc != nil {
			writeDeclarativeBarcode(&buf, profile, &it, bc)
			continue
		}
		fmt.Fprintf(&buf, "TEXT %d,%d,\"%d\",0,1,1,\"%s\"\r\n",
			it.x, it.y, declarativeFont(it.fontPt()), escapeQuoted(it.value))
	}

	buf.WriteString("PRINT 1\r\n")
	return buf.Bytes()
}

func writeDeclarativeBarcode(buf *bytes.Buffer, profile *label.PrinterProfile, it *resolved, bc *label.Barcode) {
	if bc.Symbology == symbology.QR {
		cell := qrMagnification(it, profile)
		fmt.Fprintf(buf, "QRCODE %d,%d,M,%d,A,0,\"%s\"\r\n", it.x, it.y, cell, escapeQuoted(it.value))
		return
	}

	height := it.h
	if height <= 0 {
		height = units.MmToDots(10, profile.DPI)
	}
	// Narrow/wide bar widths in dots; 2/2 keeps ratio-free symbologies happy.
	fmt.Fprintf(buf, "BARCODE %d,%d,\"%s\",%d,1,0,2,2,\"%s\"\r\n",
		it.x, it.y, symCode(bc.Symbology, declarativeBarcodes), height, escapeQuoted(it.value))
}

// declarativeFont maps point sizes onto the built-in font numbers.
func declarativeFont(pt float64) int {
	switch {
	case pt < 8:
		return 1
	case pt < 12:
		return 2
	case pt < 16:
		return 3
	default:
		return 4
	}
}
