package paginate

import (
	"fmt"
	"testing"

	"github.com/matzehuels/cardimposer/pkg/layout"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

func grid(cols, rows int) layout.Result {
	s := settings.Default()
	s.Margin, s.Bleed, s.Gutter = 0, 0, 0
	s.RotateAllowed = false
	s.Card = settings.Dimensions{Width: 10, Height: 10}
	s.Sheet = settings.Dimensions{Width: float64(cols) * 10, Height: float64(rows) * 10}
	return layout.Compute(s)
}

func refs(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("card-%02d.png", i)
	}
	return out
}

func TestPaginateTenOnEight(t *testing.T) {
	l := grid(2, 4)
	sheets := Paginate(refs(10), l, false)

	if len(sheets) != 2 {
		t.Fatalf("len(sheets) = %d, want 2", len(sheets))
	}
	if len(sheets[0].Items) != 8 {
		t.Errorf("len(sheets[0].Items) = %d, want 8", len(sheets[0].Items))
	}
	second := sheets[1]
	if second.Index != 1 || len(second.Items) != 2 {
		t.Fatalf("sheets[1] = index %d with %d items, want index 1 with 2", second.Index, len(second.Items))
	}
	for k, it := range second.Items {
		if it.Slot != k || it.Position != l.Positions[k] {
			t.Errorf("second sheet item %d at slot %d, want %d", k, it.Slot, k)
		}
		if want := fmt.Sprintf("card-%02d.png", 8+k); it.Ref != want || it.Index != 8+k {
			t.Errorf("second sheet item %d = %s (#%d), want %s", k, it.Ref, it.Index, want)
		}
	}
}

func TestPaginateMirror(t *testing.T) {
	l := grid(3, 2)
	sheets := Paginate(refs(5), l, true)
	if len(sheets) != 1 || !sheets[0].Mirrored {
		t.Fatalf("sheets = %+v, want one mirrored sheet", sheets)
	}
	wantSlots := []int{2, 1, 0, 5, 4}
	for k, it := range sheets[0].Items {
		if it.Slot != wantSlots[k] {
			t.Errorf("item %d slot = %d, want %d", k, it.Slot, wantSlots[k])
		}
		if it.Position.Row != k/3 {
			t.Errorf("item %d row = %d, want %d", k, it.Position.Row, k/3)
		}
	}

	front := Paginate(refs(5), l, false)[0]
	for k := range front.Items {
		f, b := front.Items[k].Position, sheets[0].Items[k].Position
		if f.Row != b.Row || b.Column != MirrorColumn(f.Column, l.Columns) {
			t.Errorf("item %d: front (%d,%d) back (%d,%d) not mirrored", k, f.Row, f.Column, b.Row, b.Column)
		}
	}
}

func TestPaginateCompleteness(t *testing.T) {
	for cols := 1; cols <= 4; cols++ {
		for rows := 1; rows <= 4; rows++ {
			l := grid(cols, rows)
			per := cols * rows
			for n := 1; n <= 3*per+1; n++ {
				for _, mirror := range []bool{false, true} {
					sheets := Paginate(refs(n), l, mirror)
					total := 0
					seen := make(map[int]bool)
					for _, sh := range sheets {
						total += len(sh.Items)
						for _, it := range sh.Items {
							seen[it.Index] = true
						}
					}
					if total != n || len(seen) != n {
						t.Fatalf("%dx%d n=%d mirror=%t: placed %d (%d distinct), want %d", cols, rows, n, mirror, total, len(seen), n)
					}
					if want := (n + per - 1) / per; len(sheets) != want {
						t.Fatalf("%dx%d n=%d: %d sheets, want %d", cols, rows, n, len(sheets), want)
					}
				}
			}
		}
	}
}

func TestMirrorRoundTrip(t *testing.T) {
	for cols := 1; cols <= 12; cols++ {
		for c := 0; c < cols; c++ {
			m := MirrorColumn(c, cols)
			if m < 0 || m >= cols {
				t.Errorf("MirrorColumn(%d, %d) = %d out of range", c, cols, m)
			}
			if got := MirrorColumn(m, cols); got != c {
				t.Errorf("MirrorColumn(MirrorColumn(%d, %d)) = %d", c, cols, got)
			}
		}
	}
}

func TestRepeat(t *testing.T) {
	l := grid(2, 2)
	sheets := Repeat("logo.png", 6, l, true)
	if len(sheets) != 2 || len(sheets[1].Items) != 2 {
		t.Fatalf("Repeat() = %d sheets, want 2 with 2 items on the last", len(sheets))
	}
	for _, sh := range sheets {
		for _, it := range sh.Items {
			if it.Ref != "logo.png" {
				t.Errorf("Ref = %q, want logo.png", it.Ref)
			}
		}
	}
	if sheets[1].Items[0].Slot != 1 || sheets[1].Items[1].Slot != 0 {
		t.Errorf("last sheet slots = %d,%d, want 1,0", sheets[1].Items[0].Slot, sheets[1].Items[1].Slot)
	}
}

func TestPaginateEmpty(t *testing.T) {
	if got := Paginate(nil, grid(2, 2), false); got != nil {
		t.Errorf("Paginate(nil) = %v, want nil", got)
	}
	if got := Paginate(refs(3), layout.Result{}, false); got != nil {
		t.Errorf("Paginate(empty layout) = %v, want nil", got)
	}
	if got := Repeat("x", 0, grid(2, 2), false); got != nil {
		t.Errorf("Repeat(0) = %v, want nil", got)
	}
}
