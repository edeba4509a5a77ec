package document

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/matzehuels/cardimposer/pkg/cache"
	errs "github.com/matzehuels/cardimposer/pkg/errors"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	creator  string
	created  time.Time
	compress bool
}

// WithCreator sets the PDF Creator metadata.
func WithCreator(s string) PDFOption {
	return func(r *pdfRenderer) { r.creator = s }
}

// WithCreationDate fixes the creation date, making output reproducible.
func WithCreationDate(t time.Time) PDFOption {
	return func(r *pdfRenderer) { r.created = t }
}

// WithCompression toggles stream compression (default on).
func WithCompression(on bool) PDFOption {
	return func(r *pdfRenderer) { r.compress = on }
}

// RenderPDF writes the document as PDF with one page per Page, each sized
// to its sheet.
func RenderPDF(doc *Document, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{compress: true}
	for _, opt := range opts {
		opt(&r)
	}
	if len(doc.Pages) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "document has no pages")
	}

	first := doc.Pages[0].Size
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCompression(r.compress)
	pdf.SetTitle(doc.Title, true)
	pdf.SetSubject(doc.Subject, true)
	pdf.SetAuthor(doc.Author, true)
	keywords := slices.Concat(doc.Keywords, []string{doc.JobID})
	pdf.SetKeywords(strings.TrimSpace(strings.Join(keywords, " ")), true)
	if r.creator != "" {
		pdf.SetCreator(r.creator, true)
	}
	if !r.created.IsZero() {
		pdf.SetCreationDate(r.created)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	registered := make(map[string]bool)
	for _, page := range doc.Pages {
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: page.Size.Width, Ht: page.Size.Height})
		for _, op := range page.Ops {
			switch op := op.(type) {
			case Image:
				name := "img-" + cache.Hash(op.Raster.Data)[:16]
				imgOpts := gofpdf.ImageOptions{ImageType: op.Raster.Format}
				if !registered[name] {
					pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(op.Raster.Data))
					registered[name] = true
				}
				pdf.ImageOptions(name, op.Box.X, op.Box.Y, op.Box.Width, op.Box.Height, false, imgOpts, 0, "")
			case Line:
				pdf.SetDrawColor(0, 0, 0)
				pdf.SetLineWidth(op.Width)
				pdf.Line(op.X1, op.Y1, op.X2, op.Y2)
			case Placeholder:
				drawPlaceholder(pdf, tr, op)
			case Text:
				pdf.SetFont("Helvetica", "", op.Size)
				pdf.SetTextColor(0, 0, 0)
				pdf.Text(op.X, op.Y, tr(op.Text))
			}
		}
		if err := pdf.Error(); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "render %s sheet %d", page.Side, page.Sheet+1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "write pdf")
	}
	return buf.Bytes(), nil
}

func drawPlaceholder(pdf *gofpdf.Fpdf, tr func(string) string, p Placeholder) {
	b := p.Box
	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(220, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Rect(b.X, b.Y, b.Width, b.Height, "FD")
	pdf.Line(b.X, b.Y, b.Right(), b.Bottom())
	pdf.Line(b.Right(), b.Y, b.X, b.Bottom())

	label := p.Label
	if label == "" {
		label = "missing image"
	}
	pdf.SetFont("Helvetica", "B", 6)
	pdf.SetTextColor(220, 0, 0)
	label = fitLabel(label, b.Width-2, func(s string) float64 { return pdf.GetStringWidth(tr(s)) })
	w := pdf.GetStringWidth(tr(label))
	pdf.Text(b.X+(b.Width-w)/2, b.Y+b.Height/2+1, tr(label))
}

// fitLabel shortens s with a trailing ellipsis until width(s) <= max.
func fitLabel(s string, max float64, width func(string) float64) string {
	if width(s) <= max {
		return s
	}
	r := []rune(s)
	for len(r) > 1 && width(string(r)+"...") > max {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

// PageLabel formats the slug of a page, for example "Front 2/5".
func PageLabel(side Side, sheet, sheets int, job string) string {
	name := "Front"
	if side == Back {
		name = "Back"
	}
	label := fmt.Sprintf("%s %d/%d", name, sheet+1, sheets)
	if job != "" {
		label = job + " | " + label
	}
	return label
}
