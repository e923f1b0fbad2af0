package dialect

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/labelpoint/labeld/internal/label"
	"github.com/labelpoint/labeld/internal/symbology"
	"github.com/labelpoint/labeld/internal/units"
)

// Language D: structured-markup document. Coordinates are twips
// (1/20 point, 1mm ~= 56.7 twips), text is markup-escaped, and the document
// declares a fixed label size with one draw node per element.

// twipsPerMm is 1440 twips per inch over 25.4 mm.
const twipsPerMm = 1440.0 / 25.4

func mmToTwips(mm float64) int {
	return int(math.Round(mm * twipsPerMm))
}

var markupBarcodes = map[symbology.Symbology]string{
	symbology.Code128: "code128",
	symbology.EAN13:   "ean13",
	symbology.EAN8:    "ean8",
	symbology.UPCA:    "upca",
	symbology.QR:      "qr",
}

func compileMarkup(tpl *label.Template, profile *label.PrinterProfile, items []resolved) []byte {
	var buf bytes.Buffer

	offXMm := units.DotsToMm(profile.OffsetX, profile.DPI)
	offYMm := units.DotsToMm(profile.OffsetY, profile.DPI)

	fmt.Fprintf(&buf, "<label width=\"%d\" height=\"%d\" dpi=\"%d\">\n",
		mmToTwips(tpl.Size.Width), mmToTwips(tpl.Size.Height), profile.DPI)

	for _, it := range items {
		// This dialect positions in twips, so convert from the element's
		// millimeter position directly rather than via device dots.
		b := it.el.Base()
		x := mmToTwips(b.X + offXMm)
		y := mmToTwips(b.Y + offYMm)

		if bc := it.barcode(); bc != nil {
			fmt.Fprintf(&buf, "  <draw-barcode x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" symbology=\"%s\" data=\"%s\"/>\n",
				x, y, mmToTwips(b.Width), mmToTwips(b.Height),
				symCode(bc.Symbology, markupBarcodes), escapeMarkup(it.value))
			continue
		}
		fmt.Fprintf(&buf, "  <draw-text x=\"%d\" y=\"%d\" size=\"%d\"%s>%s</draw-text>\n",
			x, y, int(it.fontPt()*20), markupFontAttrs(it.text()), escapeMarkup(it.value))
	}

	buf.WriteString("</label>\n")
	return buf.Bytes()
}

func markupFontAttrs(t *label.Text) string {
	if t == nil || t.Font == nil {
		return ""
	}
	var attrs string
	if t.Font.Family != "" {
		attrs += fmt.Sprintf(" font=%q", t.Font.Family)
	}
	if t.Font.Bold {
		attrs += ` bold="true"`
	}
	if t.Font.Italic {
		attrs += ` italic="true"`
	}
	return attrs
}

func escapeMarkup(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
