package vision

import (
	"image"
)

// Pixels darker than this grayscale value count as ink.
const darkThreshold = 96

// ScanDetector is the dependency-free strategy. It slides a window across
// the frame and keeps centers whose horizontal and vertical arms are both
// mostly dark, which is the signature of a cross mark.
type ScanDetector struct{}

// NewScanDetector returns the pure-Go strategy.
func NewScanDetector() *ScanDetector { return &ScanDetector{} }

func (d *ScanDetector) Name() string { return "scan" }

// DetectMarks scans for cross-shaped clusters of dark pixels.
func (d *ScanDetector) DetectMarks(img image.Image) ([]Mark, error) {
	gray := toGray(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, nil
	}

	// Arm length scales with the frame so the same pattern works at any
	// capture resolution.
	arm := w / 40
	if arm < 4 {
		arm = 4
	}

	dark := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y < darkThreshold
	}

	var marks []Mark
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !dark(x, y) {
				continue
			}
			hRun := armCoverage(dark, x, y, arm, true)
			vRun := armCoverage(dark, x, y, arm, false)
			if hRun < 0.8 || vRun < 0.8 {
				continue
			}
			marks = append(marks, Mark{X: float64(x), Y: float64(y), Confidence: 0.6})
		}
	}
	return dedupe(marks), nil
}

// armCoverage reports the fraction of dark pixels along one axis through
// (x, y), sampling arm pixels to each side.
func armCoverage(dark func(int, int) bool, x, y, arm int, horizontal bool) float64 {
	total := 2*arm + 1
	hit := 0
	for i := -arm; i <= arm; i++ {
		px, py := x, y
		if horizontal {
			px += i
		} else {
			py += i
		}
		if dark(px, py) {
			hit++
		}
	}
	return float64(hit) / float64(total)
}
