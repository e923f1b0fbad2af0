package label

// CalibrationAnchors are the normalized positions of the five reference
// marks on a calibration sheet: four corners inset 10% plus dead center.
// The pattern generator prints marks here and the vision engine expects
// them here; the two must stay in lockstep.
var CalibrationAnchors = [5]Point{
	{X: 0.1, Y: 0.1},
	{X: 0.9, Y: 0.1},
	{X: 0.1, Y: 0.9},
	{X: 0.9, Y: 0.9},
	{X: 0.5, Y: 0.5},
}
