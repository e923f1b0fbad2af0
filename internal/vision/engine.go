package vision

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/labelpoint/labeld/internal/label"
	"github.com/labelpoint/labeld/internal/units"
)

// Minimum matched anchor pairs for a trustworthy offset estimate.
const minMatches = 3

// matchRadiusFrac bounds a valid anchor match to a fraction of the frame
// width. Beyond this the candidate is a different mark or noise.
const matchRadiusFrac = 0.2

// Engine estimates the printer offset from a camera frame of a printed
// calibration sheet. The detector strategy is fixed at construction.
type Engine struct {
	detector Detector
}

// NewEngine builds an engine around the given detection strategy.
func NewEngine(d Detector) *Engine {
	return &Engine{detector: d}
}

// Calibrate locates the reference marks in frame and compares them against
// where the sheet's anchors should appear for a label of the given physical
// size. The returned offsets are device dots at the profile's resolution.
// The profile itself is never modified; callers apply the result explicitly.
func (e *Engine) Calibrate(frame image.Image, profile *label.PrinterProfile) (*label.CalibrationResult, error) {
	if frame == nil {
		return nil, errors.New("vision: nil frame")
	}
	if err := profile.Validate(); err != nil {
		return nil, errors.Wrap(err, "vision: invalid profile")
	}

	b := frame.Bounds()
	frameW := float64(b.Dx())
	frameH := float64(b.Dy())
	if frameW == 0 || frameH == 0 {
		return nil, errors.New("vision: empty frame")
	}

	expected := make([]label.Point, len(label.CalibrationAnchors))
	for i, a := range label.CalibrationAnchors {
		expected[i] = label.Point{X: a.X * frameW, Y: a.Y * frameH}
	}

	marks, err := e.detector.DetectMarks(frame)
	if err != nil {
		return nil, errors.Wrapf(err, "vision: %s detector", e.detector.Name())
	}

	detected := make([]label.Point, len(marks))
	for i, m := range marks {
		detected[i] = label.Point{X: m.X, Y: m.Y}
	}

	pairs := matchAnchors(expected, marks, frameW*matchRadiusFrac)
	if len(pairs) < minMatches {
		return &label.CalibrationResult{
			Success:  false,
			Message:  fmt.Sprintf("matched %d of %d reference marks, need at least %d", len(pairs), len(expected), minMatches),
			Detected: detected,
			Expected: expected,
		}, nil
	}

	// Per-pair error in frame pixels, averaged over the matched anchors.
	dxs := make([]float64, len(pairs))
	dys := make([]float64, len(pairs))
	confs := make([]float64, len(pairs))
	for i, p := range pairs {
		dxs[i] = expected[p.anchor].X - p.mark.X
		dys[i] = expected[p.anchor].Y - p.mark.Y
		confs[i] = p.mark.Confidence
	}
	meanDxPx := stat.Mean(dxs, nil)
	meanDyPx := stat.Mean(dys, nil)

	// Frame pixels to millimeters: the frame spans the full label.
	pxPerMmX := frameW / profile.LabelWidthMm
	pxPerMmY := frameH / profile.LabelHeightMm
	offsetX := units.MmToDots(meanDxPx/pxPerMmX, profile.DPI)
	offsetY := units.MmToDots(meanDyPx/pxPerMmY, profile.DPI)

	return &label.CalibrationResult{
		Success:    true,
		OffsetX:    offsetX,
		OffsetY:    offsetY,
		Confidence: stat.Mean(confs, nil),
		Message:    fmt.Sprintf("matched %d of %d reference marks", len(pairs), len(expected)),
		Detected:   detected,
		Expected:   expected,
	}, nil
}

type pair struct {
	anchor int
	mark   Mark
	dist   float64
}

// matchAnchors pairs each expected anchor with its nearest detected mark,
// greedily by ascending distance, each mark used at most once.
func matchAnchors(expected []label.Point, marks []Mark, maxDist float64) []pair {
	var candidates []pair
	for ai, e := range expected {
		for _, m := range marks {
			d := math.Hypot(e.X-m.X, e.Y-m.Y)
			if d <= maxDist {
				candidates = append(candidates, pair{anchor: ai, mark: m, dist: d})
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })

	usedAnchor := make(map[int]bool)
	usedMark := make(map[[2]float64]bool)
	var out []pair
	for _, c := range candidates {
		key := [2]float64{c.mark.X, c.mark.Y}
		if usedAnchor[c.anchor] || usedMark[key] {
			continue
		}
		usedAnchor[c.anchor] = true
		usedMark[key] = true
		out = append(out, c)
	}
	return out
}
