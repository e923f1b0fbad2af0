// Package label defines the data model shared by the dialect compiler, the
// layout advisor and the calibration workflow: templates, elements, printer
// profiles and resolved data records.
package label

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/labelpoint/labeld/internal/symbology"
)

// FieldKind names the product field a text element renders.
type FieldKind string

const (
	FieldName          FieldKind = "name"
	FieldPrice         FieldKind = "price"
	FieldMarkdownPrice FieldKind = "markdown_price"
	FieldSKU           FieldKind = "sku"
	FieldBatch         FieldKind = "batch"
	FieldExpiry        FieldKind = "expiry"
	FieldWeight        FieldKind = "weight"
	FieldFreeText      FieldKind = "text"
)

// IsPrice reports whether the field carries a currency amount.
func (k FieldKind) IsPrice() bool {
	return k == FieldPrice || k == FieldMarkdownPrice
}

// Font describes the typeface request for a text element.
type Font struct {
	Family string  `json:"family,omitempty"`
	SizePt float64 `json:"size,omitempty"`
	Bold   bool    `json:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty"`
}

// Base holds the fields every element carries. Positions and sizes are in
// millimeters relative to the label's top-left corner; Width/Height of zero
// mean "unset".
type Base struct {
	ID      string  `json:"id"`
	Enabled bool    `json:"enabled"`
	Order   int     `json:"order"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Prefix  string  `json:"prefix,omitempty"`
	Suffix  string  `json:"suffix,omitempty"`
}

// Element is the closed set of things a label template can place.
type Element interface {
	Base() *Base
	element()
}

// Text renders a product field (or free text) in a requested font.
type Text struct {
	Common   Base
	Kind     FieldKind
	Font     *Font
	Currency string // prepended to price kinds
	Value    string // literal value for free text
}

func (t *Text) Base() *Base { return &t.Common }
func (t *Text) element()    {}

// Barcode renders the record's barcode payload in a chosen symbology.
type Barcode struct {
	Common    Base
	Symbology symbology.Symbology
}

func (b *Barcode) Base() *Base { return &b.Common }
func (b *Barcode) element()    {}

// Size is a physical label size in millimeters.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Template is an ordered sequence of elements on a label of a given size.
// Produced by the external design surface; read-only here.
type Template struct {
	Size     Size
	Elements []Element
}

// EnabledElements returns the enabled elements in render order.
func (t *Template) EnabledElements() []Element {
	out := make([]Element, 0, len(t.Elements))
	for _, el := range t.Elements {
		if el.Base().Enabled {
			out = append(out, el)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Base().Order < out[j].Base().Order
	})
	return out
}

// elementJSON is the wire form of an element: a tagged union keyed by "type".
type elementJSON struct {
	Base
	Type           string              `json:"type"`
	Font           *Font               `json:"font,omitempty"`
	BarcodeType    symbology.Symbology `json:"barcodeType,omitempty"`
	CurrencySymbol string              `json:"currencySymbol,omitempty"`
	Value          string              `json:"value,omitempty"`
}

type templateJSON struct {
	Size     Size              `json:"size"`
	Elements []json.RawMessage `json:"elements"`
}

// UnmarshalJSON decodes the design surface's wire format into the sum type.
func (t *Template) UnmarshalJSON(data []byte) error {
	var raw templateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.Size = raw.Size
	t.Elements = make([]Element, 0, len(raw.Elements))

	for i, rawEl := range raw.Elements {
		var ej elementJSON
		if err := json.Unmarshal(rawEl, &ej); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		el, err := ej.toElement()
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		t.Elements = append(t.Elements, el)
	}
	return nil
}

// MarshalJSON re-encodes the sum type into the wire format.
func (t *Template) MarshalJSON() ([]byte, error) {
	raw := templateJSON{Size: t.Size}
	for _, el := range t.Elements {
		ej := elementJSON{Base: *el.Base()}
		switch v := el.(type) {
		case *Barcode:
			ej.Type = "barcode"
			ej.BarcodeType = v.Symbology
		case *Text:
			ej.Type = string(v.Kind)
			ej.Font = v.Font
			ej.CurrencySymbol = v.Currency
			ej.Value = v.Value
		default:
			return nil, fmt.Errorf("unknown element type %T", el)
		}
		b, err := json.Marshal(ej)
		if err != nil {
			return nil, err
		}
		raw.Elements = append(raw.Elements, b)
	}
	return json.Marshal(raw)
}

func (ej *elementJSON) toElement() (Element, error) {
	switch ej.Type {
	case "barcode":
		sym := ej.BarcodeType
		if sym == "" {
			sym = symbology.Code128
		}
		switch sym {
		case symbology.Code128, symbology.EAN13, symbology.EAN8, symbology.UPCA, symbology.QR:
		default:
			return nil, fmt.Errorf("unknown barcode type %q", sym)
		}
		return &Barcode{Common: ej.Base, Symbology: sym}, nil
	case string(FieldName), string(FieldPrice), string(FieldMarkdownPrice),
		string(FieldSKU), string(FieldBatch), string(FieldExpiry),
		string(FieldWeight), string(FieldFreeText):
		return &Text{
			Common:   ej.Base,
			Kind:     FieldKind(ej.Type),
			Font:     ej.Font,
			Currency: ej.CurrencySymbol,
			Value:    ej.Value,
		}, nil
	default:
		return nil, fmt.Errorf("unknown element type %q", ej.Type)
	}
}
