package vision

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Segment classification: a line within 20 degrees of an axis counts as
// belonging to that axis.
const axisToleranceDeg = 20.0

// CVDetector locates marks with the OpenCV pipeline: grayscale, automatic
// binary threshold, Canny edges, probabilistic line detection, then
// horizontal x vertical segment intersection.
type CVDetector struct{}

// NewCVDetector returns the OpenCV-backed strategy.
func NewCVDetector() *CVDetector { return &CVDetector{} }

func (d *CVDetector) Name() string { return "opencv" }

type segment struct {
	x1, y1, x2, y2 float64
}

func (s segment) angleDeg() float64 {
	a := math.Atan2(s.y2-s.y1, s.x2-s.x1) * 180 / math.Pi
	if a < 0 {
		a += 180
	}
	return a
}

// DetectMarks runs the edge/line pipeline and intersects the classified
// segments into candidate points.
func (d *CVDetector) DetectMarks(img image.Image) ([]Mark, error) {
	mat, err := imageToMat(img)
	if err != nil {
		return nil, err
	}
	defer func() { _ = mat.Close() }()

	binary := gocv.NewMat()
	defer func() { _ = binary.Close() }()
	gocv.Threshold(mat, &binary, 0, 255, gocv.ThresholdBinaryInv+gocv.ThresholdOtsu)

	edges := gocv.NewMat()
	defer func() { _ = edges.Close() }()
	gocv.Canny(binary, &edges, 50, 150)

	lines := gocv.NewMat()
	defer func() { _ = lines.Close() }()
	minLen := float32(img.Bounds().Dx()) * 0.01
	gocv.HoughLinesPWithParams(edges, &lines, 1, math.Pi/180, 30, minLen, 5)

	var horizontal, vertical []segment
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		s := segment{float64(v[0]), float64(v[1]), float64(v[2]), float64(v[3])}
		a := s.angleDeg()
		switch {
		case a <= axisToleranceDeg || a >= 180-axisToleranceDeg:
			horizontal = append(horizontal, s)
		case math.Abs(a-90) <= axisToleranceDeg:
			vertical = append(vertical, s)
		}
	}

	var marks []Mark
	for _, h := range horizontal {
		for _, v := range vertical {
			if pt, ok := intersect(h, v); ok {
				marks = append(marks, Mark{X: pt[0], Y: pt[1], Confidence: 0.9})
			}
		}
	}
	return dedupe(marks), nil
}

// intersect computes the intersection of two segments extended to lines,
// accepting it only when it falls near both segments' extents.
func intersect(a, b segment) ([2]float64, bool) {
	d1x, d1y := a.x2-a.x1, a.y2-a.y1
	d2x, d2y := b.x2-b.x1, b.y2-b.y1
	den := d1x*d2y - d1y*d2x
	if math.Abs(den) < 1e-9 {
		return [2]float64{}, false
	}
	t := ((b.x1-a.x1)*d2y - (b.y1-a.y1)*d2x) / den
	px := a.x1 + t*d1x
	py := a.y1 + t*d1y

	// The crossing must sit near both physical segments; a short reference
	// mark should not match a line on the far side of the frame.
	slack := dedupeRadiusPx
	if !nearSegment(px, py, a, slack) || !nearSegment(px, py, b, slack) {
		return [2]float64{}, false
	}
	return [2]float64{px, py}, true
}

func nearSegment(px, py float64, s segment, slack float64) bool {
	minX := math.Min(s.x1, s.x2) - slack
	maxX := math.Max(s.x1, s.x2) + slack
	minY := math.Min(s.y1, s.y2) - slack
	maxY := math.Max(s.y1, s.y2) + slack
	return px >= minX && px <= maxX && py >= minY && py <= maxY
}

// imageToMat converts a Go image to a single-channel Mat.
func imageToMat(img image.Image) (gocv.Mat, error) {
	gray := toGray(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8U)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mat.SetUCharAt(y, x, gray.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
		}
	}
	return mat, nil
}
