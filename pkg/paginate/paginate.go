// Package paginate groups a flat image sequence into sheets of a layout.
//
// Sheet s holds items [s*n, min((s+1)*n, len)) where n is the layout's
// cards per sheet; the last sheet uses a prefix of the grid. Back sides are
// paginated with mirroring so that, once the sheet is flipped about its
// vertical axis, each back lands behind its front: the column of every item
// becomes columns-1-column while the row is unchanged.
package paginate

import "github.com/matzehuels/cardimposer/pkg/layout"

// Item is one image placed on a sheet.
type Item struct {
	// Index is the position of the image in the input sequence.
	Index    int                 `json:"index"`
	Slot     int                 `json:"slot"`
	Position layout.CardPosition `json:"position"`
	Ref      string              `json:"ref"`
}

// SheetPlan is the content of one side of one physical sheet.
type SheetPlan struct {
	Index    int    `json:"index"`
	Mirrored bool   `json:"mirrored"`
	Items    []Item `json:"items"`
}

// MirrorColumn maps a column to its mirror image in a grid of the given
// width. It is its own inverse.
func MirrorColumn(col, columns int) int {
	return columns - 1 - col
}

// Paginate lays refs onto consecutive sheets. It returns nil for an empty
// sequence or an empty layout.
func Paginate(refs []string, l layout.Result, mirror bool) []SheetPlan {
	return paginate(len(refs), func(i int) string { return refs[i] }, l, mirror)
}

// Repeat paginates a single image count times, as used for one shared back
// image behind every front.
func Repeat(ref string, count int, l layout.Result, mirror bool) []SheetPlan {
	return paginate(count, func(int) string { return ref }, l, mirror)
}

func paginate(n int, refAt func(int) string, l layout.Result, mirror bool) []SheetPlan {
	per := l.Columns * l.Rows
	if n <= 0 || per == 0 || len(l.Positions) < per {
		return nil
	}

	sheets := make([]SheetPlan, 0, (n+per-1)/per)
	for start := 0; start < n; start += per {
		end := min(start+per, n)
		plan := SheetPlan{
			Index:    len(sheets),
			Mirrored: mirror,
			Items:    make([]Item, 0, end-start),
		}
		for i := start; i < end; i++ {
			slot := Slot(i-start, l.Columns, mirror)
			plan.Items = append(plan.Items, Item{
				Index:    i,
				Slot:     slot,
				Position: l.Positions[slot],
				Ref:      refAt(i),
			})
		}
		sheets = append(sheets, plan)
	}
	return sheets
}

// Slot returns the grid slot of the k-th item on a sheet.
func Slot(k, columns int, mirror bool) int {
	row, col := k/columns, k%columns
	if mirror {
		col = MirrorColumn(col, columns)
	}
	return row*columns + col
}
