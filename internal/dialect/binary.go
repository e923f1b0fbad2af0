package dialect

import (
	"bytes"
	"encoding/binary"

	"github.com/labelpoint/labeld/internal/label"
	"github.com/labelpoint/labeld/internal/symbology"
	"github.com/labelpoint/labeld/internal/units"
)

// Language E: binary escape-sequence stream. Reset and print-info header,
// a little-endian media-size directive, one position escape per element
// followed by barcode-mode or raw text bytes, closed with a form feed.
//
// The barcode-mode select below follows the documented structure but has not
// been verified against vendor documentation on hardware; treat it as a
// structural placeholder until validated.

const (
	esc = 0x1b
	ff  = 0x0c
)

var binaryBarcodes = map[symbology.Symbology]string{
	symbology.Code128: "c",
	symbology.EAN13:   "e",
	symbology.EAN8:    "f",
	symbology.UPCA:    "u",
	symbology.QR:      "q",
}

func compileBinary(tpl *label.Template, profile *label.PrinterProfile, items []resolved) []byte {
	var buf bytes.Buffer

	// Reset, then print-info: dpi class, darkness, speed.
	buf.Write([]byte{esc, '@'})
	buf.Write([]byte{esc, 'i', 'P', byte(profile.DPI / 100), byte(profile.Darkness), byte(profile.Speed)})

	// Media size in dots, little-endian uint16 pairs.
	media := make([]byte, 4)
	binary.LittleEndian.PutUint16(media[0:2], uint16(units.MmToDots(tpl.Size.Width, profile.DPI)))
	binary.LittleEndian.PutUint16(media[2:4], uint16(units.MmToDots(tpl.Size.Height, profile.DPI)))
	buf.Write([]byte{esc, 'i', 'M'})
	buf.Write(media)

	for _, it := range items {
		writeBinaryPosition(&buf, it.x, it.y)
		if bc := it.barcode(); bc != nil {
			writeBinaryBarcode(&buf, &it, bc)
			continue
		}
		buf.WriteString(it.value)
	}

	buf.WriteByte(ff)
	return buf.Bytes()
}

// writeBinaryPosition emits the absolute position escape, both axes as
// little-endian uint16 dots.
func writeBinaryPosition(buf *bytes.Buffer, x, y int) {
	pos := make([]byte, 4)
	binary.LittleEndian.PutUint16(pos[0:2], uint16(x))
	binary.LittleEndian.PutUint16(pos[2:4], uint16(y))
	buf.Write([]byte{esc, '$'})
	buf.Write(pos)
}

// writeBinaryBarcode emits barcode mode select, payload, and mode end.
func writeBinaryBarcode(buf *bytes.Buffer, it *resolved, bc *label.Barcode) {
	code := symCode(bc.Symbology, binaryBarcodes)
	buf.Write([]byte{esc, 'i', 'B', code[0], byte(len(it.value))})
	buf.WriteString(it.value)
	buf.Write([]byte{esc, 'i', 'E'})
}
