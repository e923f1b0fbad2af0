package layout

import (
	"math"
	"testing"

	"github.com/labelpoint/labeld/internal/label"
	"github.com/labelpoint/labeld/internal/symbology"
)

func testProfile() *label.PrinterProfile {
	return &label.PrinterProfile{
		ID: "p1", Vendor: label.VendorZebra, Language: label.LanguageA,
		DPI: 203, LabelWidthMm: 40, LabelHeightMm: 30,
	}
}

func TestComputeSafeZone(t *testing.T) {
	p := testProfile()
	zone := ComputeSafeZone(label.Size{Width: 40, Height: 30}, p)
	if zone.X != 2 || zone.Y != 2 {
		t.Errorf("zone origin = (%v,%v); want (2,2)", zone.X, zone.Y)
	}
	if zone.Width != 36 || zone.Height != 26 {
		t.Errorf("zone size = %vx%v; want 36x26", zone.Width, zone.Height)
	}

	// Offset of one inch worth of dots shifts the zone by 25.4mm
	p.OffsetX = 203
	zone = ComputeSafeZone(label.Size{Width: 40, Height: 30}, p)
	if math.Abs(zone.X-(2+25.4)) > 1e-9 {
		t.Errorf("offset zone X = %v; want %v", zone.X, 2+25.4)
	}
}

func TestCheckDensityTiers(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		sym     symbology.Symbology
		widthMm float64
		want    Severity
	}{
		// 95 modules: 19mm -> 0.2mm/module, 35mm -> 0.368mm/module
		{"upca too narrow", "036000291452", symbology.UPCA, 19, SeverityError},
		{"upca wide enough", "036000291452", symbology.UPCA, 35, SeveritySuccess},
		{"upca marginal", "036000291452", symbology.UPCA, 28, SeverityWarning}, // 0.295
		{"qr too small", "SKU-1", symbology.QR, 8, SeverityError},              // 0.38mm cell
		{"qr marginal", "SKU-1", symbology.QR, 12, SeverityWarning},            // 0.57mm cell
		{"qr fine", "SKU-1", symbology.QR, 20, SeveritySuccess},                // 0.95mm cell
		{"zero width", "036000291452", symbology.UPCA, 0, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckDensity(tt.payload, tt.sym, tt.widthMm)
			if got.Severity != tt.want {
				t.Errorf("CheckDensity(%q, %s, %v) = %s (%s); want %s",
					tt.payload, tt.sym, tt.widthMm, got.Severity, got.Message, tt.want)
			}
		})
	}
}

func TestCheckDensityMinWidth(t *testing.T) {
	got := CheckDensity("036000291452", symbology.UPCA, 19)
	if got.Severity != SeverityError {
		t.Fatalf("severity = %s; want error", got.Severity)
	}
	want := 0.25 * 95
	if math.Abs(got.MinWidthMm-want) > 1e-9 {
		t.Errorf("MinWidthMm = %v; want %v", got.MinWidthMm, want)
	}
}

func tpl(els ...label.Element) *label.Template {
	return &label.Template{Size: label.Size{Width: 40, Height: 30}, Elements: els}
}

func textEl(id string, x, y, w, h float64) *label.Text {
	return &label.Text{Common: label.Base{ID: id, Enabled: true, X: x, Y: y, Width: w, Height: h}, Kind: label.FieldName}
}

func TestSuggestLayoutOverflow(t *testing.T) {
	overflowing := textEl("t1", 38, 5, 10, 4) // runs past the right edge
	sugs := SuggestLayout(tpl(overflowing), testProfile(), label.DataRecord{})

	var found *Suggestion
	for i := range sugs {
		if sugs[i].Fix == FixClampToSafeZone && sugs[i].ElementID == "t1" {
			found = &sugs[i]
		}
	}
	if found == nil {
		t.Fatal("no clamp suggestion for overflowing element")
	}
	if !found.AutoFixable {
		t.Error("clamp suggestion should be auto-fixable")
	}
	if found.X+10 > 2+36+1e-9 {
		t.Errorf("clamped X=%v still overflows", found.X)
	}
}

func TestSuggestLayoutBarcodeDensity(t *testing.T) {
	bc := &label.Barcode{
		Common:    label.Base{ID: "b1", Enabled: true, X: 2, Y: 2, Width: 15, Height: 10},
		Symbology: symbology.UPCA,
	}
	rec := label.DataRecord{"sku": "036000291452"}
	sugs := SuggestLayout(tpl(bc), testProfile(), rec)

	var widen bool
	for _, s := range sugs {
		if s.Fix == FixWidenBarcode && s.ElementID == "b1" {
			widen = true
			if s.Width < 0.25*95-1e-9 {
				t.Errorf("widen target %v below minimum", s.Width)
			}
		}
	}
	if !widen {
		t.Error("no widen suggestion for 15mm UPC-A")
	}
}

func TestSuggestLayoutFont(t *testing.T) {
	over := textEl("t1", 2, 2, 20, 3)
	over.Font = &label.Font{SizePt: 24} // ~8.5mm glyphs in a 3mm container
	sugs := SuggestLayout(tpl(over), testProfile(), label.DataRecord{})

	var shrink *Suggestion
	for i := range sugs {
		if sugs[i].Fix == FixShrinkFont {
			shrink = &sugs[i]
		}
	}
	if shrink == nil {
		t.Fatal("no shrink suggestion for oversized font")
	}
	wantPt := 3.0 * 0.8 / (25.4 / 72.0)
	if math.Abs(shrink.SizePt-wantPt) > 1e-9 {
		t.Errorf("SizePt = %v; want %v", shrink.SizePt, wantPt)
	}
}

func TestSuggestLayoutSkipsDisabled(t *testing.T) {
	off := textEl("t1", 100, 100, 10, 10)
	off.Common.Enabled = false
	sugs := SuggestLayout(tpl(off), testProfile(), label.DataRecord{})
	if len(sugs) != 0 {
		t.Errorf("got %d suggestions for disabled element; want 0", len(sugs))
	}
}

func TestAlignElements(t *testing.T) {
	a := textEl("a", 5, 2, 10, 4)
	b := textEl("b", 12, 10, 8, 4)
	template := tpl(a, b)

	AlignElements(template, AlignLeft)
	if a.Common.X != 5 || b.Common.X != 5 {
		t.Errorf("left align: X = %v,%v; want 5,5", a.Common.X, b.Common.X)
	}

	AlignElements(template, AlignRight)
	if a.Common.X+a.Common.Width != b.Common.X+b.Common.Width {
		t.Errorf("right align: right edges %v vs %v", a.Common.X+a.Common.Width, b.Common.X+b.Common.Width)
	}
}

func TestAlignSingleElementNoop(t *testing.T) {
	a := textEl("a", 5, 2, 10, 4)
	AlignElements(tpl(a), AlignLeft)
	if a.Common.X != 5 {
		t.Errorf("single element moved to %v", a.Common.X)
	}
}

func TestAutoSpace(t *testing.T) {
	a := textEl("a", 2, 2, 10, 4)
	b := textEl("b", 2, 9, 10, 4)
	c := textEl("c", 2, 22, 10, 4)
	AutoSpace(tpl(a, b, c))

	// Extents: top 2, bottom 26; total height 12; gap = (24-12)/2 = 6
	if a.Common.Y != 2 {
		t.Errorf("first Y = %v; want 2", a.Common.Y)
	}
	if b.Common.Y != 12 {
		t.Errorf("middle Y = %v; want 12", b.Common.Y)
	}
	if c.Common.Y != 22 {
		t.Errorf("last Y = %v; want 22", c.Common.Y)
	}
}
