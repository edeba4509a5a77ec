package layout_test

import (
	"fmt"

	"github.com/matzehuels/cardimposer/pkg/layout"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

func ExampleCompute() {
	s := settings.Default()
	s.Sheet = settings.SheetA4
	s.Card = settings.CardStandard
	s.Margin = 5
	s.Bleed = 3
	s.Gutter = 2

	r := layout.Compute(s)
	fmt.Printf("%d columns x %d rows = %d cards, rotated: %t\n", r.Columns, r.Rows, r.CardsPerSheet, r.Rotated)
	fmt.Printf("first card at (%.1f, %.1f)\n", r.Positions[0].X, r.Positions[0].Y)
	fmt.Println("sheets for 100 cards:", r.SheetsNeeded(100))
	// Output:
	// 2 columns x 4 rows = 8 cards, rotated: false
	// first card at (5.0, 30.5)
	// sheets for 100 cards: 13
}

func ExampleRequire() {
	s := settings.Default()
	s.Card = settings.Dimensions{Width: 300, Height: 300}

	_, err := layout.Require(s)
	fmt.Println(err != nil)
	// Output:
	// true
}
