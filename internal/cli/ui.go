package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cardimposer/pkg/assemble"
	"github.com/matzehuels/cardimposer/pkg/layout"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleBorder  = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Stats Display
// =============================================================================

// statsLine renders run statistics on a single line.
func statsLine(s assemble.Stats) string {
	parts := []string{
		fmt.Sprintf("%d cards", s.TotalCards),
		fmt.Sprintf("%d sheets", s.TotalSheets),
		fmt.Sprintf("%d per sheet", s.CardsPerSheet),
	}
	if s.BackSheets > 0 {
		parts = append(parts, fmt.Sprintf("%d front / %d back", s.FrontSheets, s.BackSheets))
	}

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	if s.Rotated {
		line += StyleDim.Render(" · ") + StyleDim.Render("rotated")
	}
	return line
}

// printStats prints run statistics and the unresolved images, if any.
func printStats(s assemble.Stats) {
	fmt.Println(statsLine(s))
	if s.UnresolvedImages == 0 {
		return
	}
	printWarning("%d image(s) could not be loaded and were replaced by placeholders", s.UnresolvedImages)
	for _, u := range s.Unresolved {
		printDetail("%s sheet %d slot %d: %s (%s)", u.Side, u.Sheet+1, u.Slot+1, u.Ref, u.Reason)
	}
}

// headerRow is the row index lipgloss tables pass for the header.
const headerRow = -1

// layoutTable renders the geometry of a layout.
func layoutTable(l layout.Result) string {
	mm := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + " mm" }
	rows := [][]string{
		{"sheet", l.Sheet.String()},
		{"usable area", l.Usable.String()},
		{"card", l.Card.String()},
		{"margin", mm(l.Margin)},
		{"bleed", mm(l.Bleed)},
		{"gutter", mm(l.Gutter)},
		{"grid", fmt.Sprintf("%d x %d", l.Columns, l.Rows)},
		{"cards/sheet", strconv.Itoa(l.CardsPerSheet)},
		{"rotated", strconv.FormatBool(l.Rotated)},
		{"offset", fmt.Sprintf("%.2f, %.2f mm", l.OffsetX, l.OffsetY)},
		{"efficiency", fmt.Sprintf("%.1f%%", l.Efficiency*100)},
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("Property", "Value").
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

// positionsTable renders the card positions of a layout.
func positionsTable(l layout.Result) string {
	rows := make([][]string, 0, len(l.Positions))
	for i, p := range l.Positions {
		t := l.Trim(p)
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%d,%d", p.Row+1, p.Column+1),
			fmt.Sprintf("%.2f", p.X), fmt.Sprintf("%.2f", p.Y),
			fmt.Sprintf("%.2f", t.X), fmt.Sprintf("%.2f", t.Y),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("#", "Row,Col", "Bleed X", "Bleed Y", "Trim X", "Trim Y").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			return StyleNumber
		}).
		Render()
}
