package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/cardimposer/pkg/errors"
	"github.com/matzehuels/cardimposer/pkg/job"
	"github.com/matzehuels/cardimposer/pkg/pipeline"
)

// previewCommand creates the preview command that draws a PNG layout proof.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		opts    pipeline.PreviewOptions
		flags   settingsFlags
	)

	cmd := &cobra.Command{
		Use:   "preview [job.toml]",
		Short: "Draw a PNG proof of the layout geometry",
		Long: `Draw a PNG proof of the layout geometry.

The proof shows the sheet, the usable area, every bleed and trim box and the
crop marks. --mirror draws the back side, whose columns are mirrored for
duplex printing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			base := c.baseSettings()
			if len(args) == 1 {
				j, err := job.Load(args[0])
				if err != nil {
					return err
				}
				base = j.Settings
			}
			s, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			data, hit, err := runner.Preview(ctx, s, opts)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidPath, err, "write %s", output)
			}

			l, _ := pipeline.ComputeLayout(s)
			printSuccess("Preview complete")
			printFile(output)
			status := iconFresh
			if hit {
				status = iconCached
			}
			printDetail("%d x %d grid · %d per sheet · %s", l.Columns, l.Rows, l.CardsPerSheet, status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "preview.png", "output PNG file")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultPreviewScale, "pixels per mm")
	cmd.Flags().BoolVar(&opts.Mirror, "mirror", false, "draw the mirrored back side")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}
