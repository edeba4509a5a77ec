// Package marks computes crop-mark geometry.
//
// Every card gets eight segments, two per corner. Each segment lies on the
// extension of a trim line and starts Offset millimeters outside the bleed
// box, running Length millimeters away from the card:
//
//	      |         |
//	      |         |
//	 ──   +---------+   ──     <- horizontal marks on the top trim line
//	      | bleed   |
//	      |  +---+  |
//	      |  |   |  |
//
// Coordinates use the sheet's top-left origin, in millimeters.
package marks

import "github.com/matzehuels/cardimposer/pkg/layout"

// Segment is a straight line from (X1, Y1) to (X2, Y2).
type Segment struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Horizontal reports whether the segment is parallel to the x axis.
func (s Segment) Horizontal() bool { return s.Y1 == s.Y2 }

// Style holds the crop-mark settings.
type Style struct {
	Length    float64
	Offset    float64
	Thickness float64
}

// Corner order of the segments returned by ForCard.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// ForCard returns the crop marks for a card with nominal box trim and the
// given bleed. Segment 2*c is the horizontal mark of corner c and
// segment 2*c+1 the vertical one.
func ForCard(trim layout.Box, bleed float64, st Style) [8]Segment {
	bleedBox := trim.Inset(-bleed)
	left := bleedBox.X - st.Offset
	right := bleedBox.Right() + st.Offset
	top := bleedBox.Y - st.Offset
	bottom := bleedBox.Bottom() + st.Offset
	l := st.Length

	return [8]Segment{
		TopLeft * 2:       {X1: left - l, Y1: trim.Y, X2: left, Y2: trim.Y},
		TopLeft*2 + 1:     {X1: trim.X, Y1: top - l, X2: trim.X, Y2: top},
		TopRight * 2:      {X1: right, Y1: trim.Y, X2: right + l, Y2: trim.Y},
		TopRight*2 + 1:    {X1: trim.Right(), Y1: top - l, X2: trim.Right(), Y2: top},
		BottomRight * 2:   {X1: right, Y1: trim.Bottom(), X2: right + l, Y2: trim.Bottom()},
		BottomRight*2 + 1: {X1: trim.Right(), Y1: bottom, X2: trim.Right(), Y2: bottom + l},
		BottomLeft * 2:    {X1: left - l, Y1: trim.Bottom(), X2: left, Y2: trim.Bottom()},
		BottomLeft*2 + 1:  {X1: trim.X, Y1: bottom, X2: trim.X, Y2: bottom + l},
	}
}

// ForLayout returns the marks of every slot in r, in slot order.
func ForLayout(r layout.Result, st Style) [][8]Segment {
	out := make([][8]Segment, len(r.Positions))
	for i, p := range r.Positions {
		out[i] = ForCard(r.Trim(p), r.Bleed, st)
	}
	return out
}
