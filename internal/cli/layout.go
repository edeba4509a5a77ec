package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardimposer/pkg/job"
	"github.com/matzehuels/cardimposer/pkg/layout"
	"github.com/matzehuels/cardimposer/pkg/pipeline"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

// layoutReport is the JSON form of the layout command's output.
type layoutReport struct {
	Settings settings.PrintSettings `json:"settings"`
	Layout   layout.Result          `json:"layout"`
	Cards    int                    `json:"cards,omitempty"`
	Sheets   int                    `json:"sheets,omitempty"`
}

// layoutCommand creates the layout command for inspecting the card grid.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		asJSON    bool
		positions bool
		count     int
		flags     settingsFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [job.toml]",
		Short: "Print the card grid for a set of print settings",
		Long: `Print the card grid for a set of print settings.

Settings come from the flags, applied on top of the job file when one is given.
With a job file or --count the number of sheets needed is shown as well.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := c.baseSettings()
			if len(args) == 1 {
				j, err := job.Load(args[0])
				if err != nil {
					return err
				}
				base = j.Settings
				if !cmd.Flags().Changed("count") {
					seq, err := j.Sequence()
					if err != nil {
						return err
					}
					count = seq.Len()
				}
			}
			s, err := flags.apply(cmd, base)
			if err != nil {
				return err
			}
			l, err := pipeline.ComputeLayout(s)
			if err != nil {
				return err
			}

			report := layoutReport{Settings: s, Layout: l}
			if count > 0 {
				report.Cards, report.Sheets = count, l.SheetsNeeded(count)
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printLayout(report, positions)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	cmd.Flags().BoolVar(&positions, "positions", false, "list every card position")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of cards to print (shows sheets needed)")
	flags.register(cmd)

	return cmd
}

// printLayout renders a layout report for the terminal.
func printLayout(r layoutReport, positions bool) {
	fmt.Println(StyleTitle.Render("Layout"))
	fmt.Println(layoutTable(r.Layout))
	if r.Cards > 0 {
		printKeyValue("cards", StyleNumber.Render(fmt.Sprint(r.Cards)))
		printKeyValue("sheets", StyleNumber.Render(fmt.Sprint(r.Sheets)))
	}
	if positions {
		fmt.Println(positionsTable(r.Layout))
	}
	printNextStep("Proof", "impose preview -o layout.png")
}
