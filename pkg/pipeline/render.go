package pipeline

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/cardimposer/pkg/assemble"
	"github.com/matzehuels/cardimposer/pkg/buildinfo"
	"github.com/matzehuels/cardimposer/pkg/document"
	errs "github.com/matzehuels/cardimposer/pkg/errors"
	"github.com/matzehuels/cardimposer/pkg/layout"
	"github.com/matzehuels/cardimposer/pkg/preview"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

// Report is the JSON export of a run.
type Report struct {
	JobID    string                 `json:"job_id"`
	Name     string                 `json:"name,omitempty"`
	Settings settings.PrintSettings `json:"settings"`
	Layout   layout.Result          `json:"layout"`
	Stats    assemble.Stats         `json:"stats"`
	Warnings []string               `json:"warnings,omitempty"`
}

// ExportPDF writes doc as PDF and verifies the written file.
func ExportPDF(doc *document.Document, created time.Time) ([]byte, document.Info, error) {
	data, err := document.RenderPDF(doc,
		document.WithCreator(buildinfo.Producer()),
		document.WithCreationDate(created),
	)
	if err != nil {
		return nil, document.Info{}, err
	}
	info, err := document.Inspect(data)
	if err != nil {
		return nil, document.Info{}, err
	}
	if info.Pages != len(doc.Pages) {
		return nil, info, errs.New(errs.ErrCodeInternal, "exported pdf has %d pages, want %d", info.Pages, len(doc.Pages))
	}
	return data, info, nil
}

// export renders every requested format of a finished run.
func export(res *Result, opts Options, created time.Time) error {
	for _, format := range opts.Formats {
		switch format {
		case FormatPDF:
			data, info, err := ExportPDF(res.Document, created)
			if err != nil {
				return err
			}
			res.Artifacts[FormatPDF], res.PDF = data, info
		case FormatPNG:
			data, err := preview.PNG(res.Layout, previewOptions(opts.Settings, PreviewOptions{Scale: opts.PreviewScale})...)
			if err != nil {
				return err
			}
			res.Artifacts[FormatPNG] = data
		case FormatJSON:
			data, err := json.MarshalIndent(Report{
				JobID:    res.JobID,
				Name:     opts.Name,
				Settings: opts.Settings,
				Layout:   res.Layout,
				Stats:    res.Stats,
				Warnings: res.Warnings,
			}, "", "  ")
			if err != nil {
				return errs.Wrap(errs.ErrCodeInternal, err, "encode report")
			}
			res.Artifacts[FormatJSON] = data
		}
	}
	return nil
}
