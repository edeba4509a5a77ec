package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/cardimposer/pkg/errors"
	"github.com/matzehuels/cardimposer/pkg/expand"
	"github.com/matzehuels/cardimposer/pkg/job"
	"github.com/matzehuels/cardimposer/pkg/pipeline"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

// defaultOutput is the output base name when neither a job file nor -o names one.
const defaultOutput = "cards"

// runOpts holds the command-line flags for the run command.
type runOpts struct {
	output      string // output file (single format) or base path (multiple)
	formats     string // comma-separated output formats
	name        string // job name shown in the slug and PDF metadata
	fronts      string // directory of front images
	backs       string // directory of back images
	noCache     bool   // disable the image cache
	tui         bool   // show an interactive progress view
	concurrency int    // sheets rendered in parallel
	settings    settingsFlags
}

// runCommand creates the run command that imposes a batch into output files.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run [job.toml]",
		Short: "Impose a batch of cards into a print-ready PDF",
		Long: `Impose a batch of cards into a print-ready PDF.

The batch comes either from a job file listing parties and settings, or from
image directories given with --fronts and --backs. Flags override the job's
settings.

Examples:
  impose run party.toml
  impose run --fronts fronts --backs backs --scheme 1:N -o cards.pdf
  impose run party.toml -f pdf,png,json --crop-marks`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRun(cmd, input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): pdf (default), png, json (comma-separated)")
	cmd.Flags().StringVar(&opts.name, "name", "", "job name (default: job file name)")
	cmd.Flags().StringVar(&opts.fronts, "fronts", "", "directory of front images")
	cmd.Flags().StringVar(&opts.backs, "backs", "", "directory of back images")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.tui, "progress", false, "show an interactive progress view")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "sheets rendered in parallel (default: from config)")
	opts.settings.register(cmd)

	return cmd
}

// batch is the resolved input of a run.
type batch struct {
	name     string
	base     string
	settings settings.PrintSettings
	parties  []expand.Party
	warnings []string
}

// loadBatch reads the job file or scans the image directories and applies
// flag overrides.
func (c *CLI) loadBatch(cmd *cobra.Command, input string, opts *runOpts) (*batch, error) {
	if input != "" && opts.fronts != "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "use a job file or --fronts, not both")
	}

	b := &batch{name: opts.name}
	switch {
	case input != "":
		j, err := job.Load(input)
		if err != nil {
			return nil, err
		}
		if b.settings, err = opts.settings.apply(cmd, j.Settings); err != nil {
			return nil, err
		}
		b.parties, b.warnings = j.Parties, j.Warnings
		if b.name == "" {
			b.name = j.Name
		}
		out := opts.output
		if out == "" && j.Output != "" {
			out = j.Output
			if !filepath.IsAbs(out) {
				out = filepath.Join(j.Dir, out)
			}
		}
		b.base = basePath(out, input)
	case opts.fronts != "":
		s, err := opts.settings.apply(cmd, c.baseSettings())
		if err != nil {
			return nil, err
		}
		b.settings = s
		if b.parties, b.warnings, err = job.Scan(opts.fronts, opts.backs, s); err != nil {
			return nil, err
		}
		b.base = basePath(opts.output, defaultOutput)
		if b.name == "" {
			b.name = filepath.Base(b.base)
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "nothing to impose: pass a job file or --fronts")
	}
	return b, nil
}

// runRun imposes the batch and writes one file per requested format.
func (c *CLI) runRun(cmd *cobra.Command, input string, opts *runOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	formats := parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}
	b, err := c.loadBatch(cmd, input, opts)
	if err != nil {
		return err
	}
	for _, w := range b.warnings {
		printWarning("%s", w)
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	concurrency := opts.concurrency
	if concurrency <= 0 && c.Config != nil {
		concurrency = c.Config.Concurrency
	}
	popts := pipeline.Options{
		Name:        b.name,
		Settings:    b.settings,
		Parties:     b.parties,
		Formats:     formats,
		Concurrency: concurrency,
		Logger:      logger,
	}

	prog := newProgress(logger)
	var result *pipeline.Result
	if opts.tui {
		result, err = runWithProgressView(ctx, runner, popts)
	} else {
		result, err = runWithSpinner(ctx, runner, popts)
	}
	if err != nil {
		return err
	}
	prog.done("imposed", "job", result.JobID, "cards", result.Stats.TotalCards, "sheets", result.Stats.TotalSheets)

	paths, err := writeArtifacts(result, formats, b.base)
	if err != nil {
		return err
	}

	printSuccess("Imposed %s", StyleValue.Render(b.name))
	printStats(result.Stats)
	for _, w := range result.Warnings {
		printWarning("%s", w)
	}
	for _, p := range paths {
		printFile(p)
	}
	printDetail("%s", result.Timings)
	return nil
}

// runWithSpinner executes the pipeline behind a spinner that follows the
// progress events.
func runWithSpinner(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Result, error) {
	spinner := newSpinnerWithContext(ctx, "Imposing cards...")
	spinner.Start()
	defer spinner.Stop()

	opts.Progress = func(e pipeline.Event) {
		spinner.SetMessage(eventLine(e))
	}
	return runner.Execute(ctx, opts)
}

// eventLine formats a progress event for a single status line.
func eventLine(e pipeline.Event) string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Stage)
	}
	return fmt.Sprintf("%3.0f%% %s", e.Percent, msg)
}

// writeArtifacts writes every exported format next to base and returns the
// written paths in format order.
func writeArtifacts(result *pipeline.Result, formats []string, base string) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "create output directory %s", dir)
		}
	}
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := result.Artifacts[f]
		if !ok {
			continue
		}
		path := base + "." + f
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, errs.Wrap(errs.ErrCodeInvalidPath, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input. A known format
// extension on output is stripped as well.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(strings.ToLower(ext), ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
