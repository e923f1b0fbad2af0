// Package render produces a headless raster preview of a label: the same
// template, record and profile a compile takes, drawn to an in-memory
// image at the profile's dot pitch.
package render

import (
	"fmt"
	"image"
	"io"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/ean"
	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font/basicfont"

	"github.com/labelpoint/labeld/internal/dialect"
	"github.com/labelpoint/labeld/internal/label"
	"github.com/labelpoint/labeld/internal/symbology"
	"github.com/labelpoint/labeld/internal/units"
)

// defaultBarcodeHeightMm matches the compiler's fallback for barcodes
// without an explicit height.
const defaultBarcodeHeightMm = 10.0

// Preview renders the enabled elements of a template for one record onto a
// white canvas sized to the profile's label at its resolution. The profile
// offset shifts elements exactly as the compiled command stream would.
func Preview(tpl *label.Template, profile *label.PrinterProfile, rec label.DataRecord) (image.Image, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	w := units.MmToDots(profile.LabelWidthMm, profile.DPI)
	h := units.MmToDots(profile.LabelHeightMm, profile.DPI)
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetRGB(0, 0, 0)
	dc.SetFontFace(basicfont.Face7x13)

	for _, el := range tpl.EnabledElements() {
		value := dialect.ElementValue(el, rec)
		if value == "" {
			continue
		}
		b := el.Base()
		x := units.MmToDots(b.X, profile.DPI) + profile.OffsetX
		y := units.MmToDots(b.Y, profile.DPI) + profile.OffsetY

		switch v := el.(type) {
		case *label.Barcode:
			bw := units.MmToDots(b.Width, profile.DPI)
			bh := units.MmToDots(b.Height, profile.DPI)
			if bh <= 0 {
				bh = units.MmToDots(defaultBarcodeHeightMm, profile.DPI)
			}
			img, err := barcodeImage(v.Symbology, value, bw, bh)
			if err != nil {
				return nil, fmt.Errorf("render: barcode %q: %w", value, err)
			}
			dc.DrawImage(img, x, y)
		case *label.Text:
			// basicfont has a fixed pitch; the preview shows placement
			// and content, not exact glyph metrics.
			dc.DrawString(value, float64(x), float64(y)+float64(basicfont.Face7x13.Ascent))
		}
	}
	return dc.Image(), nil
}

// WritePNG renders a preview and encodes it as PNG.
func WritePNG(w io.Writer, tpl *label.Template, profile *label.PrinterProfile, rec label.DataRecord) error {
	img, err := Preview(tpl, profile, rec)
	if err != nil {
		return err
	}
	dc := gg.NewContextForImage(img)
	return dc.EncodePNG(w)
}

// barcodeImage rasterizes one symbol at the requested dot size.
func barcodeImage(sym symbology.Symbology, value string, w, h int) (image.Image, error) {
	if sym == symbology.QR {
		side := w
		if side <= 0 || h < side {
			side = h
		}
		if side <= 0 {
			side = 21 * 4
		}
		q, err := qrcode.New(value, qrcode.Medium)
		if err != nil {
			return nil, err
		}
		q.DisableBorder = true
		return q.Image(side), nil
	}

	var (
		code barcode.Barcode
		err  error
	)
	switch sym {
	case symbology.EAN13, symbology.EAN8:
		code, err = ean.Encode(value)
	case symbology.UPCA:
		// UPC-A is EAN-13 with an implied leading zero.
		code, err = ean.Encode("0" + value)
	default:
		code, err = code128.Encode(value)
	}
	if err != nil {
		return nil, err
	}

	minW := symbology.EstimateModuleCount(value, sym)
	if w < minW {
		w = minW
	}
	if h <= 0 {
		h = w / 3
	}
	return barcode.Scale(code, w, h)
}
