package layout

import (
	"errors"
	"math"

	errs "github.com/matzehuels/cardimposer/pkg/errors"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

// ErrNoFeasibleLayout is wrapped by [Require] when no card fits.
var ErrNoFeasibleLayout = errors.New("no feasible layout")

// floorEpsilon absorbs floating-point error in exact fits such as
// (200+2)/101 landing just below 2.
const floorEpsilon = 1e-9

// Box is an axis-aligned rectangle in sheet millimeters.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns X+Width.
func (b Box) Right() float64 { return b.X + b.Width }

// Bottom returns Y+Height.
func (b Box) Bottom() float64 { return b.Y + b.Height }

// Inset shrinks the box by d on every side.
func (b Box) Inset(d float64) Box {
	return Box{X: b.X + d, Y: b.Y + d, Width: b.Width - 2*d, Height: b.Height - 2*d}
}

// CardPosition is one slot of a layout: the bleed-inclusive card box.
type CardPosition struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Rotated bool    `json:"rotated"`
	Row     int     `json:"row"`
	Column  int     `json:"column"`
}

// Box returns the bleed box.
func (p CardPosition) Box() Box {
	return Box{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}

// Result is a computed grid. The zero value is the empty layout.
type Result struct {
	Columns       int            `json:"columns"`
	Rows          int            `json:"rows"`
	CardsPerSheet int            `json:"cards_per_sheet"`
	Positions     []CardPosition `json:"positions"`
	Rotated       bool           `json:"rotated"`
	Efficiency    float64        `json:"efficiency"`

	// OffsetX/OffsetY are the sheet coordinates where the occupied block
	// starts; (Offset-margin)*2 + Occupied equals the usable extent.
	OffsetX  float64             `json:"offset_x"`
	OffsetY  float64             `json:"offset_y"`
	Occupied settings.Dimensions `json:"occupied"`

	Sheet  settings.Dimensions `json:"sheet"`
	Usable settings.Dimensions `json:"usable"`
	// Card is the nominal card size in the chosen orientation.
	Card   settings.Dimensions `json:"card"`
	Margin float64             `json:"margin"`
	Bleed  float64             `json:"bleed"`
	Gutter float64             `json:"gutter"`
}

// Empty reports whether no card fits.
func (r Result) Empty() bool { return r.Columns == 0 || r.Rows == 0 }

// SheetsNeeded returns ceil(total/CardsPerSheet), or 0 for an empty layout
// or a non-positive total.
func (r Result) SheetsNeeded(total int) int {
	if r.Empty() || total <= 0 {
		return 0
	}
	return (total + r.CardsPerSheet - 1) / r.CardsPerSheet
}

// Trim returns the nominal card box of a position, without bleed.
func (r Result) Trim(p CardPosition) Box {
	return p.Box().Inset(r.Bleed)
}

// Compute returns the best uniform grid for s. It does not validate s; an
// unusable sheet simply yields the empty result.
func Compute(s settings.PrintSettings) Result {
	best := computeOrientation(s, false)
	if s.RotateAllowed {
		if r := computeOrientation(s, true); r.CardsPerSheet > best.CardsPerSheet {
			best = r
		}
	}
	if best.Empty() {
		return empty(s)
	}
	return best
}

// Require computes the layout and fails with NO_FEASIBLE_LAYOUT when no
// card fits.
func Require(s settings.PrintSettings) (Result, error) {
	r := Compute(s)
	if r.Empty() {
		u := s.Usable()
		bc := s.BleedCard()
		return r, errs.Wrap(errs.ErrCodeNoFeasibleLayout, ErrNoFeasibleLayout,
			"card %gx%g mm with %g mm bleed does not fit usable area %gx%g mm (sheet %s, margin %g mm, rotation allowed: %t)",
			bc.Width, bc.Height, s.Bleed, u.Width, u.Height, s.Sheet, s.Margin, s.RotateAllowed)
	}
	return r, nil
}

func empty(s settings.PrintSettings) Result {
	return Result{
		Positions: []CardPosition{},
		Sheet:     s.Sheet,
		Usable:    s.Usable(),
		Card:      s.Card,
		Margin:    s.Margin,
		Bleed:     s.Bleed,
		Gutter:    s.Gutter,
	}
}

func computeOrientation(s settings.PrintSettings, rotated bool) Result {
	card := s.Card
	if rotated {
		card = card.Swap()
	}
	usable := s.Usable()
	if usable.Width <= 0 || usable.Height <= 0 || card.Width <= 0 || card.Height <= 0 {
		return Result{}
	}

	cols := fit(usable.Width, card.Width, s.Bleed, s.Gutter)
	rows := fit(usable.Height, card.Height, s.Bleed, s.Gutter)
	if cols == 0 || rows == 0 {
		return Result{}
	}

	boxW := card.Width + 2*s.Bleed
	boxH := card.Height + 2*s.Bleed
	occupied := settings.Dimensions{
		Width:  float64(cols)*boxW + float64(cols-1)*s.Gutter,
		Height: float64(rows)*boxH + float64(rows-1)*s.Gutter,
	}
	offX := s.Margin + (usable.Width-occupied.Width)/2
	offY := s.Margin + (usable.Height-occupied.Height)/2
	pitchX := boxW + s.Gutter
	pitchY := boxH + s.Gutter

	positions := make([]CardPosition, 0, cols*rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			positions = append(positions, CardPosition{
				X:       offX + float64(col)*pitchX - s.Bleed,
				Y:       offY + float64(row)*pitchY - s.Bleed,
				Width:   boxW,
				Height:  boxH,
				Rotated: rotated,
				Row:     row,
				Column:  col,
			})
		}
	}

	eff := float64(cols*rows) * card.Area() / s.Sheet.Area()
	eff = math.Max(0, math.Min(1, eff))

	return Result{
		Columns:       cols,
		Rows:          rows,
		CardsPerSheet: cols * rows,
		Positions:     positions,
		Rotated:       rotated,
		Efficiency:    eff,
		OffsetX:       offX,
		OffsetY:       offY,
		Occupied:      occupied,
		Sheet:         s.Sheet,
		Usable:        usable,
		Card:          card,
		Margin:        s.Margin,
		Bleed:         s.Bleed,
		Gutter:        s.Gutter,
	}
}

// fit returns how many boxes of size+2*bleed separated by gutter fit in extent.
func fit(extent, size, bleed, gutter float64) int {
	n := math.Floor((extent+gutter)/(size+2*bleed+gutter) + floorEpsilon)
	if n < 0 {
		return 0
	}
	return int(n)
}
