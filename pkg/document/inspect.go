package document

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	errs "github.com/matzehuels/cardimposer/pkg/errors"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

// pointsPerMM converts PDF user space units to millimeters.
const pointsPerMM = 72 / 25.4

// Info describes a written PDF.
type Info struct {
	Pages int
	// Sizes are the media box dimensions of each page in mm.
	Sizes []settings.Dimensions
}

// Inspect parses and validates a PDF and reports its pages.
func Inspect(data []byte) (Info, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return Info{}, errs.Wrap(errs.ErrCodeInternal, err, "validate pdf")
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return Info{}, errs.Wrap(errs.ErrCodeInternal, err, "count pages")
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return Info{}, errs.Wrap(errs.ErrCodeInternal, err, "read page sizes")
	}
	info := Info{Pages: ctx.PageCount, Sizes: make([]settings.Dimensions, len(dims))}
	for i, d := range dims {
		info.Sizes[i] = settings.Dimensions{Width: d.Width / pointsPerMM, Height: d.Height / pointsPerMM}
	}
	return info, nil
}
