package render

import (
	"bytes"
	"image"
	"testing"

	"github.com/labelpoint/labeld/internal/label"
	"github.com/labelpoint/labeld/internal/symbology"
)

func testProfile() *label.PrinterProfile {
	return &label.PrinterProfile{
		Vendor:        label.VendorZebra,
		Model:         "test",
		Language:      label.LanguageA,
		DPI:           203,
		LabelWidthMm:  40,
		LabelHeightMm: 30,
	}
}

func testTemplate() *label.Template {
	return &label.Template{
		Size: label.Size{Width: 40, Height: 30},
		Elements: []label.Element{
			&label.Text{
				Common: label.Base{ID: "name", Enabled: true, Order: 0, X: 2, Y: 2},
				Kind:   label.FieldName,
			},
			&label.Barcode{
				Common:    label.Base{ID: "bc", Enabled: true, Order: 1, X: 2, Y: 12, Width: 30, Height: 10},
				Symbology: symbology.Code128,
			},
		},
	}
}

func testRecord() label.DataRecord {
	return label.DataRecord{
		"name":    "Test Product",
		"barcode": "ABC-123456",
	}
}

func TestPreviewCanvasSize(t *testing.T) {
	img, err := Preview(testTemplate(), testProfile(), testRecord())
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("canvas = %dx%d, want 320x240 for 40x30mm at 203dpi", b.Dx(), b.Dy())
	}
}

func TestPreviewDrawsInk(t *testing.T) {
	img, err := Preview(testTemplate(), testProfile(), testRecord())
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !hasDark(img) {
		t.Error("preview has no dark pixels")
	}
}

func TestPreviewSkipsEmptyValues(t *testing.T) {
	// No record data at all: every element resolves empty and the canvas
	// stays blank, mirroring the compiler's skip behavior.
	img, err := Preview(testTemplate(), testProfile(), label.DataRecord{})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if hasDark(img) {
		t.Error("expected a blank canvas for an empty record")
	}
}

func TestPreviewInvalidProfile(t *testing.T) {
	bad := testProfile()
	bad.DPI = 72
	if _, err := Preview(testTemplate(), bad, testRecord()); err == nil {
		t.Fatal("expected error for invalid profile")
	}
}

func TestPreviewQR(t *testing.T) {
	tpl := &label.Template{
		Size: label.Size{Width: 40, Height: 30},
		Elements: []label.Element{
			&label.Barcode{
				Common:    label.Base{ID: "qr", Enabled: true, Order: 0, X: 5, Y: 5, Width: 15, Height: 15},
				Symbology: symbology.QR,
			},
		},
	}
	img, err := Preview(tpl, testProfile(), testRecord())
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !hasDark(img) {
		t.Error("QR preview has no dark pixels")
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, testTemplate(), testProfile(), testRecord()); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	sig := []byte{0x89, 'P', 'N', 'G'}
	if buf.Len() < 4 || !bytes.Equal(buf.Bytes()[:4], sig) {
		t.Error("output is not a PNG stream")
	}
}

func hasDark(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r < 0x4000 && g < 0x4000 && bl < 0x4000 {
				return true
			}
		}
	}
	return false
}
