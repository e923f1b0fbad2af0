package label

import "fmt"

// Vendor is the printer maker a profile targets. It selects the discovery
// lookup only; the command language is chosen by Language.
type Vendor string

const (
	VendorZebra   Vendor = "zebra"
	VendorTSC     Vendor = "tsc"
	VendorGodex   Vendor = "godex"
	VendorBrother Vendor = "brother"
	VendorDymo    Vendor = "dymo"
	VendorGeneric Vendor = "generic"
)

// Language identifies one of the five abstracted printer command languages.
type Language string

const (
	// LanguageA is the command-prefixed style ("^"-directives, ZPL-class).
	LanguageA Language = "A"
	// LanguageB is the line-oriented style with bucketed bitmap fonts
	// (EPL-class).
	LanguageB Language = "B"
	// LanguageC is the size/gap declarative style (TSPL-class).
	LanguageC Language = "C"
	// LanguageD is the structured-markup style with twip coordinates.
	LanguageD Language = "D"
	// LanguageE is the binary escape-sequence style.
	LanguageE Language = "E"
)

// Valid reports whether the language is one of the five known dialects.
func (l Language) Valid() bool {
	switch l {
	case LanguageA, LanguageB, LanguageC, LanguageD, LanguageE:
		return true
	}
	return false
}

// PrinterProfile describes a configured physical printer. Only the
// calibration workflow mutates one, and only the offset (optionally
// darkness/speed) on explicit user acceptance.
type PrinterProfile struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Model         string   `json:"model,omitempty"`
	Vendor        Vendor   `json:"vendor"`
	Language      Language `json:"language"`
	DPI           int      `json:"dpi"`
	LabelWidthMm  float64  `json:"labelWidthMm"`
	LabelHeightMm float64  `json:"labelHeightMm"`
	OffsetX       int      `json:"offsetX"` // device dots
	OffsetY       int      `json:"offsetY"` // device dots
	Darkness      int      `json:"darkness"`
	Speed         int      `json:"speed"`
}

// Validate checks the fields the compiler depends on.
func (p *PrinterProfile) Validate() error {
	if !p.Language.Valid() {
		return fmt.Errorf("invalid language %q (use A..E)", p.Language)
	}
	switch p.DPI {
	case 203, 300, 600:
	default:
		return fmt.Errorf("invalid dpi %d (use 203, 300 or 600)", p.DPI)
	}
	if p.LabelWidthMm <= 0 || p.LabelHeightMm <= 0 {
		return fmt.Errorf("invalid label size %vx%vmm", p.LabelWidthMm, p.LabelHeightMm)
	}
	return nil
}

// CalibrationResult is the outcome of one calibration run. Ephemeral: it is
// written into a PrinterProfile only on explicit acceptance.
type CalibrationResult struct {
	Success    bool    `json:"success"`
	OffsetX    int     `json:"offsetX"` // device dots
	OffsetY    int     `json:"offsetY"` // device dots
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`

	// Raw point lists for diagnostics; pixel coordinates in the frame.
	Detected []Point `json:"detected,omitempty"`
	Expected []Point `json:"expected,omitempty"`
}

// Point is a pixel coordinate in a captured calibration frame.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Apply writes the computed offset into the profile. Called only after the
// operator accepts the result.
func (r *CalibrationResult) Apply(p *PrinterProfile) {
	if !r.Success {
		return
	}
	p.OffsetX += r.OffsetX
	p.OffsetY += r.OffsetY
}
