package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/cardimposer/pkg/assemble"
	"github.com/matzehuels/cardimposer/pkg/cache"
	"github.com/matzehuels/cardimposer/pkg/imagefit"
	"github.com/matzehuels/cardimposer/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating the stage wiring.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Images overrides the image source. When nil each run uses an
	// imagefit.Preparer backed by Cache.
	Images assemble.ImageSource
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete validate → expand → layout → render → export
// pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if opts.JobID == "" {
		opts.JobID = uuid.NewString()
	}
	rep := &reporter{jobID: opts.JobID, fn: opts.Progress}
	rep.emit(StageInitializing, 0, "starting")

	rep.emit(StageValidating, 5, "validating settings")
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger.With("job", opts.JobID)

	result := &Result{JobID: opts.JobID, Artifacts: make(map[string][]byte)}

	// Stage 1: Expand
	rep.emit(StageExpanding, 10, "expanding parties")
	start := time.Now()
	seq, warnings, err := Expand(opts)
	result.Timings.Expand = time.Since(start)
	observability.Pipeline().OnExpandComplete(ctx, len(opts.Parties), seq.Len(), result.Timings.Expand, err)
	if err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}
	result.Sequence, result.Warnings = seq, warnings
	for _, w := range warnings {
		logger.Warn(w)
	}
	logger.Info("expanded parties",
		"parties", len(opts.Parties),
		"cards", seq.Len(),
		"double_sided", seq.HasBacks(),
		"duration", result.Timings.Expand)

	// Stage 2: Layout
	rep.emit(StageLayout, 20, "computing layout")
	start = time.Now()
	l, err := ComputeLayout(opts.Settings)
	result.Timings.Layout = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	logger.Info("computed layout",
		"columns", l.Columns,
		"rows", l.Rows,
		"rotated", l.Rotated,
		"sheets", l.SheetsNeeded(seq.Len()),
		"efficiency", fmt.Sprintf("%.1f%%", l.Efficiency*100))

	// Stage 3: Render
	rep.emit(StageRendering, renderStart, "rendering sheets")
	start = time.Now()
	asm := assemble.New(r.imageSource(opts),
		assemble.WithLogger(logger),
		assemble.WithConcurrency(opts.Concurrency),
		assemble.WithJob(opts.Name, opts.JobID),
		assemble.WithProgress(rep.sheets),
	)
	doc, stats, err := asm.Assemble(ctx, seq.Fronts, seq.Backs, opts.Settings)
	result.Timings.Render = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Document, result.Stats = doc, stats

	// Stage 4: Export
	rep.emit(StageExporting, 90, "exporting "+fmt.Sprint(opts.Formats))
	start = time.Now()
	err = export(result, opts, start)
	result.Timings.Export = time.Since(start)
	size := 0
	for _, data := range result.Artifacts {
		size += len(data)
	}
	observability.Pipeline().OnExportComplete(ctx, fmt.Sprint(opts.Formats), size, result.Timings.Export, err)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	logger.Info("exported outputs",
		"formats", opts.Formats,
		"bytes", size,
		"duration", result.Timings.Export)

	rep.emit(StageComplete, 100, fmt.Sprintf("%d sheets, %d cards", stats.TotalSheets, stats.TotalCards))
	return result, nil
}

// imageSource returns the configured source or a cached Preparer for the
// run's resolution and fit mode.
func (r *Runner) imageSource(opts Options) assemble.ImageSource {
	if r.Images != nil {
		return r.Images
	}
	return imagefit.NewPreparer(
		imagefit.WithCache(r.Cache),
		imagefit.WithKeyer(r.Keyer),
		imagefit.WithDPI(opts.Settings.DPI),
		imagefit.WithFitMode(opts.Settings.FitMode),
	)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
