package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardimposer/pkg/settings"
)

// presetEntry is one named size.
type presetEntry struct {
	Kind string              `json:"kind"`
	Name string              `json:"name"`
	Size settings.Dimensions `json:"size"`
}

// presetEntries lists all sheet presets followed by all card presets.
func presetEntries() []presetEntry {
	var out []presetEntry
	for _, name := range settings.SheetPresets() {
		d, _ := settings.SheetPreset(name)
		out = append(out, presetEntry{Kind: "sheet", Name: name, Size: d})
	}
	for _, name := range settings.CardPresets() {
		d, _ := settings.CardPreset(name)
		out = append(out, presetEntry{Kind: "card", Name: name, Size: d})
	}
	return out
}

func (c *CLI) presetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in sheet and card sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(presetsTable(presetEntries()))
			printNextStep("Custom sizes", "impose layout --sheet 320x450 --card 85x55")
			return nil
		},
	}
}

func presetsTable(entries []presetEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Kind, e.Name, e.Size.String()})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("Kind", "Name", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return styleHeader
			case col == 0:
				return StyleDim
			}
			return StyleValue
		}).
		Render()
}
