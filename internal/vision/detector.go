// Package vision locates the printed reference marks of a calibration sheet
// in a captured camera frame and derives a device-dot offset correction.
//
// Mark detection is a pluggable capability: the OpenCV-backed detector is
// the primary strategy, the pure-Go density scanner the statically selected
// fallback for hosts without an OpenCV runtime.
package vision

import "image"

// Mark is a candidate reference-mark position in frame pixels, with the
// detector's confidence in [0,1]. Consumed only within one calibration run.
type Mark struct {
	X          float64
	Y          float64
	Confidence float64
}

// Detector finds reference-mark candidates in a frame.
type Detector interface {
	// Name identifies the strategy in logs and results.
	Name() string
	// DetectMarks returns candidate mark positions. An empty slice is a
	// valid outcome against a noisy frame, not an error.
	DetectMarks(img image.Image) ([]Mark, error)
}

// dedupeRadiusPx collapses candidates closer than this to one point.
const dedupeRadiusPx = 20.0

// dedupe merges candidates within dedupeRadiusPx into their cluster
// centroid, carrying the best confidence seen in the cluster.
func dedupe(marks []Mark) []Mark {
	type cluster struct {
		sumX, sumY float64
		n          int
		conf       float64
	}
	var clusters []cluster
	for _, m := range marks {
		merged := false
		for i := range clusters {
			c := &clusters[i]
			dx := c.sumX/float64(c.n) - m.X
			dy := c.sumY/float64(c.n) - m.Y
			if dx*dx+dy*dy <= dedupeRadiusPx*dedupeRadiusPx {
				c.sumX += m.X
				c.sumY += m.Y
				c.n++
				if m.Confidence > c.conf {
					c.conf = m.Confidence
				}
				merged = true
				break
			}
		}
		if !merged {
			clusters = append(clusters, cluster{sumX: m.X, sumY: m.Y, n: 1, conf: m.Confidence})
		}
	}
	out := make([]Mark, 0, len(clusters))
	for _, c := range clusters {
		out = append(out, Mark{
			X:          c.sumX / float64(c.n),
			Y:          c.sumY / float64(c.n),
			Confidence: c.conf,
		})
	}
	return out
}

// toGray converts any image to grayscale, reusing the buffer when the frame
// already is one.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray
}
