// Package layout checks barcode scannability and proposes corrective layout
// changes. Nothing here is ever applied automatically: every result is a
// structured advisory the caller may accept, prompt on, or ignore.
package layout

import (
	"fmt"

	"github.com/labelpoint/labeld/internal/symbology"
)

// Severity grades a density check result.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Scannability thresholds in millimeters per module (linear) and per cell
// (matrix). Below the low bound most retail scanners misread; between the
// bounds reads are unreliable at distance.
const (
	linearErrorMm = 0.25
	linearWarnMm  = 0.33
	matrixErrorMm = 0.50
	matrixWarnMm  = 0.75
)

// DensityResult reports how scannable a symbol is at a printed width.
type DensityResult struct {
	Severity      Severity `json:"severity"`
	ModuleWidthMm float64  `json:"moduleWidthMm"`
	ModuleCount   int      `json:"moduleCount"`
	MinWidthMm    float64  `json:"minWidthMm,omitempty"` // set on error
	Message       string   `json:"message"`
}

// CheckDensity evaluates the per-module width of a symbol printed at
// widthMm. Matrix codes are graded on cell size with wider thresholds.
func CheckDensity(payload string, sym symbology.Symbology, widthMm float64) DensityResult {
	modules := symbology.EstimateModuleCount(payload, sym)
	if modules <= 0 || widthMm <= 0 {
		return DensityResult{
			Severity: SeverityError,
			Message:  "cannot estimate symbol size",
		}
	}

	perModule := widthMm / float64(modules)
	errAt, warnAt := linearErrorMm, linearWarnMm
	unit := "module"
	if sym.IsMatrix() {
		errAt, warnAt = matrixErrorMm, matrixWarnMm
		unit = "cell"
	}

	res := DensityResult{ModuleWidthMm: perModule, ModuleCount: modules}
	switch {
	case perModule < errAt:
		res.Severity = SeverityError
		res.MinWidthMm = errAt * float64(modules)
		res.Message = fmt.Sprintf("%.3fmm per %s is below the %.2fmm scannable minimum; widen to at least %.1fmm",
			perModule, unit, errAt, res.MinWidthMm)
	case perModule < warnAt:
		res.Severity = SeverityWarning
		res.Message = fmt.Sprintf("%.3fmm per %s may misread at distance (%.2fmm recommended)",
			perModule, unit, warnAt)
	default:
		res.Severity = SeveritySuccess
		res.Message = fmt.Sprintf("%.3fmm per %s", perModule, unit)
	}
	return res
}
