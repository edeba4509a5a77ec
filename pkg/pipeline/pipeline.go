// Package pipeline runs a complete imposition job.
//
// This package implements the validate → expand → layout → render → export
// pipeline used by the CLI and the HTTP server, so every entry point
// imposes cards the same way.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Expand: turn parties into index-aligned front and back sequences
//  2. Layout: compute the card grid for the print settings
//  3. Render: place fitted card images and crop marks on every sheet
//  4. Export: write the requested formats (PDF, PNG proof, JSON report)
//
// Progress is reported through a caller-owned callback as [Event] values.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Name:     "open-day",
//	    Settings: settings.Default(),
//	    Parties:  parties,
//	    Formats:  []string{pipeline.FormatPDF},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pdf := result.Artifacts[pipeline.FormatPDF]
//
// Run individual stages:
//
//	seq, warnings, err := pipeline.Expand(opts)
//	l, err := pipeline.ComputeLayout(opts.Settings)
//	png, hit, err := runner.Preview(ctx, opts.Settings, previewOpts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/cardimposer/pkg/assemble"
	"github.com/matzehuels/cardimposer/pkg/document"
	errs "github.com/matzehuels/cardimposer/pkg/errors"
	"github.com/matzehuels/cardimposer/pkg/expand"
	"github.com/matzehuels/cardimposer/pkg/layout"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

const (
	// DefaultConcurrency is the number of sheets rendered in parallel.
	DefaultConcurrency = 4

	// DefaultPreviewScale is the proof resolution in pixels per mm.
	DefaultPreviewScale = 2.0
)

// Format constants for output formats.
const (
	FormatPDF  = "pdf"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPDF:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid format: %q (must be one of: pdf, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options contains all configuration for one imposition run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Name     string                 `json:"name,omitempty"`
	JobID    string                 `json:"job_id,omitempty"`
	Settings settings.PrintSettings `json:"settings"`
	Parties  []expand.Party         `json:"parties"`

	Formats      []string `json:"formats,omitempty"`
	Concurrency  int      `json:"concurrency,omitempty"`
	PreviewScale float64  `json:"preview_scale,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger `json:"-"`
	Progress func(Event) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.Settings.Validate(); err != nil {
		return err
	}
	if len(o.Parties) == 0 {
		return errs.Wrap(errs.ErrCodeEmptyBatch, expand.ErrEmptyBatch, "no parties to impose")
	}
	if err := errs.ValidatePartyName(o.Name); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPDF}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.JobID == "" {
		o.JobID = uuid.NewString()
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.PreviewScale <= 0 {
		o.PreviewScale = DefaultPreviewScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	JobID string

	// Sequence is the expanded card list.
	Sequence expand.Sequence

	// Layout is the grid used on every sheet.
	Layout layout.Result

	// Document is the assembled sheet sequence.
	Document *document.Document

	// Stats summarizes the assembled document.
	Stats assemble.Stats

	// PDF describes the exported PDF when FormatPDF was requested.
	PDF document.Info

	// Artifacts contains exported outputs keyed by format.
	Artifacts map[string][]byte

	// Warnings lists non-fatal findings such as lenient scheme mismatches.
	Warnings []string

	Timings Timings
}

// Timings records the duration of each stage.
type Timings struct {
	Expand time.Duration
	Layout time.Duration
	Render time.Duration
	Export time.Duration
}

// Total returns the summed duration of all stages.
func (t Timings) Total() time.Duration {
	return t.Expand + t.Layout + t.Render + t.Export
}

func (t Timings) String() string {
	return fmt.Sprintf("expand %s, layout %s, render %s, export %s",
		t.Expand.Round(time.Millisecond), t.Layout.Round(time.Millisecond),
		t.Render.Round(time.Millisecond), t.Export.Round(time.Millisecond))
}
