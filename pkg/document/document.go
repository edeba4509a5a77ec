// Package document holds the paginated output of an imposition run and
// writes it as print-ready PDF.
//
// A [Document] is a list of [Page] values, each a sheet-sized canvas with an
// ordered list of drawing operations in millimeters, origin top-left. The
// assembler builds documents; sinks such as [RenderPDF] serialize them.
// [Inspect] reads a written PDF back and reports its page count and sizes.
package document

import (
	"github.com/matzehuels/cardimposer/pkg/imagefit"
	"github.com/matzehuels/cardimposer/pkg/layout"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

// Side of a physical sheet.
type Side string

const (
	Front Side = "front"
	Back  Side = "back"
)

// Document is an ordered list of pages plus metadata.
type Document struct {
	Title    string
	Subject  string
	Author   string
	Keywords []string
	// JobID identifies the run that produced the document.
	JobID string
	Pages []Page
}

// Page is one printed side of one sheet.
type Page struct {
	Size  settings.Dimensions
	Side  Side
	Sheet int // 0-based sheet index within its side
	Ops   []Op
}

// Op is a drawing operation.
type Op interface{ isOp() }

// Image draws a raster into Box.
type Image struct {
	Box    layout.Box
	Raster imagefit.Raster
}

// Line draws a stroke of the given width.
type Line struct {
	X1, Y1, X2, Y2 float64
	Width          float64
}

// Placeholder marks a card whose image could not be resolved: a grey box
// with a red outline, a cross and a label.
type Placeholder struct {
	Box   layout.Box
	Label string
}

// Text draws a single line with its baseline at (X, Y). Size is in points.
type Text struct {
	X, Y float64
	Size float64
	Text string
}

func (Image) isOp()       {}
func (Line) isOp()        {}
func (Placeholder) isOp() {}
func (Text) isOp()        {}

// Count returns the number of pages per side.
func (d *Document) Count() (front, back int) {
	for _, p := range d.Pages {
		if p.Side == Back {
			back++
		} else {
			front++
		}
	}
	return front, back
}
