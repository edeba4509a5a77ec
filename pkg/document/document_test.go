package document

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	errs "github.com/matzehuels/cardimposer/pkg/errors"
	"github.com/matzehuels/cardimposer/pkg/imagefit"
	"github.com/matzehuels/cardimposer/pkg/layout"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

func raster(t *testing.T, transparent bool) imagefit.Raster {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			a := uint8(255)
			if transparent && x < 10 {
				a = 0
			}
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 6), G: 80, B: 160, A: a})
		}
	}
	r, err := imagefit.Encode(img, 90)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func testDocument(t *testing.T) *Document {
	a4 := settings.SheetA4
	box := layout.Box{X: 20, Y: 30, Width: 90, Height: 50}
	shared := raster(t, false)
	return &Document{
		Title:    "Business cards",
		Subject:  "Imposition",
		Author:   "Zoë",
		Keywords: []string{"cards"},
		JobID:    "6f1c7a52-0000-4000-8000-000000000000",
		Pages: []Page{
			{Size: a4, Side: Front, Sheet: 0, Ops: []Op{
				Image{Box: box, Raster: shared},
				Image{Box: layout.Box{X: 110, Y: 30, Width: 90, Height: 50}, Raster: raster(t, true)},
				Line{X1: 10, Y1: 30, X2: 15, Y2: 30, Width: 0.3},
				Text{X: 10, Y: 290, Size: 7, Text: "Front 1/1 – Zoë"},
			}},
			{Size: a4, Side: Back, Sheet: 0, Ops: []Op{
				Image{Box: box, Raster: shared},
				Placeholder{Box: layout.Box{X: 110, Y: 30, Width: 90, Height: 50}, Label: "very-long-missing-file-name-that-will-not-fit.png"},
			}},
		},
	}
}

func TestRenderPDFAndInspect(t *testing.T) {
	doc := testDocument(t)
	data, err := RenderPDF(doc,
		WithCreator("cardimposer test"),
		WithCreationDate(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)),
	)
	if err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header: %q", data[:min(8, len(data))])
	}

	info, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if info.Pages != 2 || len(info.Sizes) != 2 {
		t.Fatalf("Inspect() pages = %d (%d sizes), want 2", info.Pages, len(info.Sizes))
	}
	for i, s := range info.Sizes {
		if math.Abs(s.Width-210) > 0.1 || math.Abs(s.Height-297) > 0.1 {
			t.Errorf("page %d size = %v, want 210x297", i+1, s)
		}
	}
}

func TestRenderPDFReproducible(t *testing.T) {
	at := WithCreationDate(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	a, err := RenderPDF(testDocument(t), at)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RenderPDF(testDocument(t), at)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("RenderPDF() is not deterministic for a fixed creation date")
	}
}

func TestRenderPDFMixedSizes(t *testing.T) {
	doc := &Document{Pages: []Page{
		{Size: settings.SheetA4, Ops: []Op{Line{X1: 0, Y1: 0, X2: 10, Y2: 10, Width: 0.2}}},
		{Size: settings.SheetSRA3},
	}}
	data, err := RenderPDF(doc, WithCompression(false))
	if err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	info, err := Inspect(data)
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if math.Abs(info.Sizes[1].Width-320) > 0.1 || math.Abs(info.Sizes[1].Height-450) > 0.1 {
		t.Errorf("second page = %v, want 320x450", info.Sizes[1])
	}
}

func TestRenderPDFEmpty(t *testing.T) {
	if _, err := RenderPDF(&Document{}); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("RenderPDF(empty) error = %v, want INVALID_INPUT", err)
	}
}

func TestInspectRejectsGarbage(t *testing.T) {
	if _, err := Inspect([]byte("definitely not a pdf")); err == nil {
		t.Error("Inspect(garbage) error = nil")
	}
}

func TestCount(t *testing.T) {
	front, back := testDocument(t).Count()
	if front != 1 || back != 1 {
		t.Errorf("Count() = %d, %d, want 1, 1", front, back)
	}
}

func TestPageLabel(t *testing.T) {
	tests := []struct {
		side          Side
		sheet, sheets int
		job, want     string
	}{
		{Front, 0, 3, "", "Front 1/3"},
		{Back, 2, 3, "", "Back 3/3"},
		{Front, 1, 2, "Spring run", "Spring run | Front 2/2"},
	}
	for _, tt := range tests {
		if got := PageLabel(tt.side, tt.sheet, tt.sheets, tt.job); got != tt.want {
			t.Errorf("PageLabel() = %q, want %q", got, tt.want)
		}
	}
}

func TestFitLabel(t *testing.T) {
	width := func(s string) float64 { return float64(len([]rune(s))) }
	if got := fitLabel("short", 10, width); got != "short" {
		t.Errorf("fitLabel(short) = %q", got)
	}
	if got := fitLabel("abcdefghijkl", 8, width); got != "abcde..." {
		t.Errorf("fitLabel() = %q, want abcde...", got)
	}
	if got := fitLabel("äöüßäöüß", 6, width); got != "äöü..." {
		t.Errorf("fitLabel(unicode) = %q, want äöü...", got)
	}
}
