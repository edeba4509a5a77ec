// Package preview draws a PNG proof of a layout: the sheet, its usable
// area, every card's bleed and trim boxes, optional crop marks and the
// card number placed in each slot.
//
// Proofs show geometry only. No card artwork is loaded.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"

	errs "github.com/matzehuels/cardimposer/pkg/errors"
	"github.com/matzehuels/cardimposer/pkg/layout"
	"github.com/matzehuels/cardimposer/pkg/marks"
	"github.com/matzehuels/cardimposer/pkg/paginate"
)

const (
	// DefaultScale is the proof resolution in pixels per millimeter.
	DefaultScale = 2.0
	// MaxPixels bounds the longer side of a proof.
	MaxPixels = 8000
)

// Colors used in proofs.
const (
	ColorSheet   = "#ffffff"
	ColorBorder  = "#404040"
	ColorUsable  = "#3a7bd5"
	ColorBleed   = "#f4c7c3"
	ColorTrim    = "#d8e4f0"
	ColorRotated = "#d9ead3"
	ColorMark    = "#000000"
	ColorLabel   = "#202020"
)

// Option configures a proof.
type Option func(*options)

type options struct {
	scale  float64
	marks  *marks.Style
	mirror bool
	labels bool
}

// WithScale sets the resolution in pixels per millimeter.
func WithScale(pxPerMM float64) Option {
	return func(o *options) { o.scale = pxPerMM }
}

// WithMarks draws crop marks in the given style.
func WithMarks(st marks.Style) Option {
	return func(o *options) { o.marks = &st }
}

// WithMirror numbers slots as a back sheet, with columns reversed.
func WithMirror(on bool) Option {
	return func(o *options) { o.mirror = on }
}

// WithLabels toggles card numbers. They are on by default.
func WithLabels(on bool) Option {
	return func(o *options) { o.labels = on }
}

// Render draws the proof of r.
func Render(r layout.Result, opts ...Option) (image.Image, error) {
	o := options{scale: DefaultScale, labels: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.scale <= 0 || math.IsNaN(o.scale) || math.IsInf(o.scale, 0) {
		return nil, errs.New(errs.ErrCodeInvalidInput, "preview scale must be positive, got %g", o.scale)
	}
	w, h := pixels(r.Sheet.Width, o.scale), pixels(r.Sheet.Height, o.scale)
	if w < 1 || h < 1 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "sheet %s is empty at scale %g", r.Sheet, o.scale)
	}
	if w > MaxPixels || h > MaxPixels {
		return nil, errs.New(errs.ErrCodeInvalidInput, "preview of %dx%d px exceeds %d px", w, h, MaxPixels)
	}

	p := &proof{dc: gg.NewContext(w, h), scale: o.scale}
	p.dc.SetHexColor(ColorSheet)
	p.dc.Clear()
	p.rect(layout.Box{Width: r.Sheet.Width, Height: r.Sheet.Height}, "", ColorBorder, 2)

	usable := layout.Box{X: r.Margin, Y: r.Margin, Width: r.Usable.Width, Height: r.Usable.Height}
	p.dc.SetDash(6, 4)
	p.rect(usable, "", ColorUsable, 1)
	p.dc.SetDash()

	if r.Empty() {
		p.dc.SetHexColor(ColorLabel)
		p.dc.DrawStringAnchored("no feasible layout", float64(w)/2, float64(h)/2, 0.5, 0.5)
		return p.dc.Image(), nil
	}

	for _, pos := range r.Positions {
		trimColor := ColorTrim
		if pos.Rotated {
			trimColor = ColorRotated
		}
		p.rect(pos.Box(), ColorBleed, "", 0)
		p.rect(r.Trim(pos), trimColor, ColorBorder, 1)
	}

	if o.marks != nil && o.marks.Length > 0 {
		p.dc.SetHexColor(ColorMark)
		p.dc.SetLineWidth(max(1, o.marks.Thickness*o.scale))
		for _, card := range marks.ForLayout(r, *o.marks) {
			for _, s := range card {
				p.dc.DrawLine(s.X1*o.scale, s.Y1*o.scale, s.X2*o.scale, s.Y2*o.scale)
				p.dc.Stroke()
			}
		}
	}

	if o.labels {
		p.dc.SetHexColor(ColorLabel)
		for _, pos := range r.Positions {
			col := pos.Column
			if o.mirror {
				col = paginate.MirrorColumn(col, r.Columns)
			}
			n := pos.Row*r.Columns + col + 1
			t := r.Trim(pos)
			p.dc.DrawStringAnchored(fmt.Sprint(n), (t.X+1)*o.scale+2, (t.Y+1)*o.scale+2, 0, 1)
		}
	}
	return p.dc.Image(), nil
}

// PNG renders the proof of r and encodes it.
func PNG(r layout.Result, opts ...Option) ([]byte, error) {
	img, err := Render(r, opts...)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContextForImage(img)
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode preview")
	}
	return buf.Bytes(), nil
}

func pixels(mm, scale float64) int { return int(math.Ceil(mm * scale)) }

type proof struct {
	dc    *gg.Context
	scale float64
}

// rect fills and/or strokes b, given in millimeters. Empty colors skip the
// corresponding pass.
func (p *proof) rect(b layout.Box, fill, stroke string, width float64) {
	x, y, w, h := b.X*p.scale, b.Y*p.scale, b.Width*p.scale, b.Height*p.scale
	if fill != "" {
		p.dc.SetHexColor(fill)
		p.dc.DrawRectangle(x, y, w, h)
		p.dc.Fill()
	}
	if stroke != "" {
		p.dc.SetHexColor(stroke)
		p.dc.SetLineWidth(width)
		p.dc.DrawRectangle(x, y, w, h)
		p.dc.Stroke()
	}
}
