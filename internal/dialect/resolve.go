package dialect

import (
	"github.com/labelpoint/labeld/internal/label"
	"github.com/labelpoint/labeld/internal/symbology"
	"github.com/labelpoint/labeld/internal/units"
)

// resolved is one enabled element with its literal value looked up and its
// position converted to offset-adjusted device dots.
type resolved struct {
	el    label.Element
	value string

	// Device dots, profile offset already applied.
	x, y int
	w, h int // 0 when the element has no explicit size
}

// barcode returns the element as a barcode, or nil.
func (r *resolved) barcode() *label.Barcode {
	b, _ := r.el.(*label.Barcode)
	return b
}

// text returns the element as a text element, or nil.
func (r *resolved) text() *label.Text {
	t, _ := r.el.(*label.Text)
	return t
}

// fontPt returns the requested font size, defaulting to 10pt.
func (r *resolved) fontPt() float64 {
	if t := r.text(); t != nil && t.Font != nil && t.Font.SizePt > 0 {
		return t.Font.SizePt
	}
	return 10
}

// resolve walks the enabled elements in order, looks up each literal value
// in the record, applies prefix/suffix and currency decoration, and converts
// coordinates. Elements that resolve to an empty value are dropped here:
// optional fields are normal, not an error.
func resolve(tpl *label.Template, profile *label.PrinterProfile, rec label.DataRecord) []resolved {
	var out []resolved
	for _, el := range tpl.EnabledElements() {
		value := ElementValue(el, rec)
		if value == "" {
			continue
		}
		b := el.Base()
		out = append(out, resolved{
			el:    el,
			value: value,
			x:     units.MmToDots(b.X, profile.DPI) + profile.OffsetX,
			y:     units.MmToDots(b.Y, profile.DPI) + profile.OffsetY,
			w:     units.MmToDots(b.Width, profile.DPI),
			h:     units.MmToDots(b.Height, profile.DPI),
		})
	}
	return out
}

// ElementValue looks up the literal value an element prints for a record:
// record field or free text, currency decoration for prices, prefix and
// suffix applied last. Empty means the element has nothing to print.
func ElementValue(el label.Element, rec label.DataRecord) string {
	b := el.Base()
	var value string

	switch v := el.(type) {
	case *label.Barcode:
		value = rec.BarcodePayload()
	case *label.Text:
		if v.Kind == label.FieldFreeText {
			value = v.Value
			if value == "" {
				value = rec.Field(label.FieldFreeText)
			}
		} else {
			value = rec.Field(v.Kind)
		}
		if value != "" && v.Kind.IsPrice() && v.Currency != "" {
			value = v.Currency + value
		}
	}

	if value == "" {
		return ""
	}
	return b.Prefix + value + b.Suffix
}

// symCode maps a symbology to a per-dialect directive token.
func symCode(s symbology.Symbology, table map[symbology.Symbology]string) string {
	if code, ok := table[s]; ok {
		return code
	}
	return table[symbology.Code128]
}
