package layout

import (
	"sort"

	"github.com/labelpoint/labeld/internal/label"
)

// Alignment axis for AlignElements.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignRight   Alignment = "right"
	AlignTop     Alignment = "top"
	AlignBottom  Alignment = "bottom"
	AlignCenterX Alignment = "center_x"
	AlignCenterY Alignment = "center_y"
)

// AlignElements aligns the enabled elements of a template along the group's
// bounding extents. Pure transform: positions are updated in place, nothing
// else changes. A no-op below two enabled elements.
func AlignElements(tpl *label.Template, align Alignment) {
	els := tpl.EnabledElements()
	if len(els) < 2 {
		return
	}

	minX, minY, maxX, maxY := extents(els)
	for _, el := range els {
		b := el.Base()
		switch align {
		case AlignLeft:
			b.X = minX
		case AlignRight:
			b.X = maxX - b.Width
		case AlignTop:
			b.Y = minY
		case AlignBottom:
			b.Y = maxY - b.Height
		case AlignCenterX:
			b.X = (minX+maxX)/2 - b.Width/2
		case AlignCenterY:
			b.Y = (minY+maxY)/2 - b.Height/2
		}
	}
}

// AutoSpace distributes the enabled elements evenly along the vertical axis
// between the group's top and bottom extents. A no-op below two enabled
// elements.
func AutoSpace(tpl *label.Template) {
	els := tpl.EnabledElements()
	if len(els) < 2 {
		return
	}

	sort.SliceStable(els, func(i, j int) bool {
		return els[i].Base().Y < els[j].Base().Y
	})

	_, minY, _, maxY := extents(els)
	var totalH float64
	for _, el := range els {
		totalH += el.Base().Height
	}

	gap := (maxY - minY - totalH) / float64(len(els)-1)
	if gap < 0 {
		gap = 0
	}

	y := minY
	for _, el := range els {
		b := el.Base()
		b.Y = y
		y += b.Height + gap
	}
}

// extents returns the group bounding box of the elements, honoring widths
// and heights where set.
func extents(els []label.Element) (minX, minY, maxX, maxY float64) {
	first := els[0].Base()
	minX, minY = first.X, first.Y
	maxX, maxY = first.X+first.Width, first.Y+first.Height
	for _, el := range els[1:] {
		b := el.Base()
		if b.X < minX {
			minX = b.X
		}
		if b.Y < minY {
			minY = b.Y
		}
		if b.X+b.Width > maxX {
			maxX = b.X + b.Width
		}
		if b.Y+b.Height > maxY {
			maxY = b.Y + b.Height
		}
	}
	return minX, minY, maxX, maxY
}
