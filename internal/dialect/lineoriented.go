package dialect

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/labelpoint/labeld/internal/label"
	"github.com/labelpoint/labeld/internal/symbology"
	"github.com/labelpoint/labeld/internal/units"
)

// Language B: line-oriented stream. One directive per line, bitmap fonts in
// four fixed size buckets, terminated by a print-count directive.

var lineBarcodes = map[symbology.Symbology]string{
	symbology.Code128: "1",
	symbology.EAN13:   "E30",
	symbology.EAN8:    "E80",
	symbology.UPCA:    "UA0",
}

func compileLineOriented(tpl *label.Template, profile *label.PrinterProfile, items []resolved) []byte {
	var buf bytes.Buffer

	buf.WriteString("N\n") // clear image buffer
	fmt.Fprintf(&buf, "q%d\n", units.MmToDots(tpl.Size.Width, profile.DPI))
	fmt.Fprintf(&buf, "Q%d,24\n", units.MmToDots(tpl.Size.Height, profile.DPI))

	for _, it := range items {
		if bc := it.barcode(); bc != nil {
			writeLineBarcode(&buf, profile, &it, bc)
			continue
		}
		fmt.Fprintf(&buf, "A%d,%d,0,%d,1,1,N,\"%s\"\n",
			it.x, it.y, fontBucket(it.fontPt()), escapeQuoted(it.value))
	}

	buf.WriteString("P1\n")
	return buf.Bytes()
}

func writeLineBarcode(buf *bytes.Buffer, profile *label.PrinterProfile, it *resolved, bc *label.Barcode) {
	if bc.Symbology == symbology.QR {
		fmt.Fprintf(buf, "b%d,%d,Q,s5,\"%s\"\n", it.x, it.y, escapeQuoted(it.value))
		return
	}
	height := it.h
	if height <= 0 {
		height = units.MmToDots(10, profile.DPI)
	}
	fmt.Fprintf(buf, "B%d,%d,0,%s,2,4,%d,B,\"%s\"\n",
		it.x, it.y, symCode(bc.Symbology, lineBarcodes), height, escapeQuoted(it.value))
}

// fontBucket maps a point size onto the four bitmap fonts: below 8pt the
// smallest, then 8-12, 12-16, 16 and up.
func fontBucket(pt float64) int {
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

func escapeQuoted(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
