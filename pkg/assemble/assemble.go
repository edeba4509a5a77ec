package assemble

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/cardimposer/pkg/errors"
	"github.com/matzehuels/cardimposer/pkg/document"
	"github.com/matzehuels/cardimposer/pkg/expand"
	"github.com/matzehuels/cardimposer/pkg/imagefit"
	"github.com/matzehuels/cardimposer/pkg/layout"
	"github.com/matzehuels/cardimposer/pkg/marks"
	"github.com/matzehuels/cardimposer/pkg/observability"
	"github.com/matzehuels/cardimposer/pkg/paginate"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

// ImageSource resolves an image reference into a raster fitted to a box in
// millimeters. *imagefit.Preparer implements it.
type ImageSource interface {
	Prepare(ctx context.Context, ref string, box settings.Dimensions, turn imagefit.Turn) (imagefit.Raster, error)
}

// artworkTurn is the quarter turn for a card in a slot. Rotated backs turn
// clockwise so a pair stays head to head once the sheet is flipped about its
// vertical axis.
func artworkTurn(side document.Side, rotated bool) imagefit.Turn {
	switch {
	case !rotated:
		return imagefit.NoTurn
	case side == document.Back:
		return imagefit.TurnRight
	}
	return imagefit.TurnLeft
}

// UnresolvedImage records a card drawn as a placeholder.
type UnresolvedImage struct {
	Ref    string        `json:"ref"`
	Side   document.Side `json:"side"`
	Sheet  int           `json:"sheet"`
	Slot   int           `json:"slot"`
	Code   errs.Code     `json:"code"`
	Reason string        `json:"reason"`
}

// Stats summarizes an assembled document.
type Stats struct {
	JobID         string  `json:"job_id,omitempty"`
	TotalSheets   int     `json:"total_sheets"`
	FrontSheets   int     `json:"front_sheets"`
	BackSheets    int     `json:"back_sheets"`
	CardsPerSheet int     `json:"cards_per_sheet"`
	TotalCards    int     `json:"total_cards"`
	Columns       int     `json:"columns"`
	Rows          int     `json:"rows"`
	Rotated       bool    `json:"rotated"`
	Efficiency    float64 `json:"efficiency"`

	UnresolvedImages int               `json:"unresolved_images"`
	Unresolved       []UnresolvedImage `json:"unresolved,omitempty"`
}

// Assembler renders imposition documents. An Assembler serializes its
// Assemble calls.
type Assembler struct {
	mu          sync.Mutex
	source      ImageSource
	logger      *log.Logger
	concurrency int
	jobName     string
	jobID       string
	progress    func(done, total int)
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger; the default discards output.
func WithLogger(l *log.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithConcurrency bounds the number of sheets rendered in parallel.
func WithConcurrency(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithJob names the run; the name appears in page labels and the ID in
// document metadata and stats.
func WithJob(name, id string) Option {
	return func(a *Assembler) { a.jobName, a.jobID = name, id }
}

// WithProgress registers a callback invoked after each rendered sheet.
// Calls are serialized and done increases by one each time.
func WithProgress(fn func(done, total int)) Option {
	return func(a *Assembler) { a.progress = fn }
}

// New creates an Assembler drawing images from source.
func New(source ImageSource, opts ...Option) *Assembler {
	a := &Assembler{
		source:      source,
		logger:      log.New(io.Discard),
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble lays out fronts and backs and renders them. backs is either
// empty or index-aligned with fronts, with expand.NoBack for single-sided
// cards.
//
// It fails with DEGENERATE_SETTINGS, EMPTY_BATCH, INVALID_INPUT or
// NO_FEASIBLE_LAYOUT before rendering anything. Unloadable images are
// reported in Stats, not as errors.
func (a *Assembler) Assemble(ctx context.Context, fronts, backs []string, s settings.PrintSettings) (*document.Document, Stats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := s.Validate(); err != nil {
		return nil, Stats{}, err
	}
	if len(fronts) == 0 {
		return nil, Stats{}, errs.Wrap(errs.ErrCodeEmptyBatch, expand.ErrEmptyBatch, "no front images to assemble")
	}
	if len(backs) != 0 && len(backs) != len(fronts) {
		return nil, Stats{}, errs.New(errs.ErrCodeInvalidInput, "%d backs do not align with %d fronts", len(backs), len(fronts))
	}

	start := time.Now()
	l, err := layout.Require(s)
	observability.Pipeline().OnLayoutComplete(ctx, l.Columns, l.Rows, l.Rotated, time.Since(start), err)
	if err != nil {
		return nil, Stats{}, err
	}
	a.logger.Debug("computed layout", "columns", l.Columns, "rows", l.Rows, "rotated", l.Rotated, "efficiency", l.Efficiency)

	frontPlans := paginate.Paginate(fronts, l, false)
	backPlans := a.paginateBacks(fronts, backs, l, s.Scheme)

	r := &renderer{
		a:        a,
		s:        s,
		l:        l,
		sheets:   map[document.Side]int{document.Front: len(frontPlans), document.Back: len(backPlans)},
		total:    len(frontPlans) + len(backPlans),
		progress: a.progress,
	}
	frontPages, frontMissing, err := r.renderSide(ctx, document.Front, frontPlans)
	if err != nil {
		return nil, Stats{}, err
	}
	backPages, backMissing, err := r.renderSide(ctx, document.Back, backPlans)
	if err != nil {
		return nil, Stats{}, err
	}

	doc := &document.Document{
		Title:    a.jobName,
		Subject:  "Card imposition",
		Keywords: []string{"imposition", string(s.Scheme)},
		JobID:    a.jobID,
		Pages:    Interleave(frontPages, backPages),
	}
	unresolved := append(frontMissing, backMissing...)
	stats := Stats{
		JobID:            a.jobID,
		TotalSheets:      len(frontPages) + len(backPages),
		FrontSheets:      len(frontPages),
		BackSheets:       len(backPages),
		CardsPerSheet:    l.CardsPerSheet,
		TotalCards:       len(fronts),
		Columns:          l.Columns,
		Rows:             l.Rows,
		Rotated:          l.Rotated,
		Efficiency:       l.Efficiency,
		UnresolvedImages: len(unresolved),
		Unresolved:       unresolved,
	}
	observability.Pipeline().OnAssembleComplete(ctx, stats.TotalSheets, stats.UnresolvedImages, time.Since(start), nil)
	a.logger.Info("assembled document",
		"sheets", stats.TotalSheets, "cards", stats.TotalCards, "per_sheet", stats.CardsPerSheet,
		"unresolved", stats.UnresolvedImages)
	return doc, stats, nil
}

// paginateBacks returns the mirrored back plans, or nil when no card has a
// back. A one-to-many run whose cards all share one back repeats that image
// for the front count.
func (a *Assembler) paginateBacks(fronts, backs []string, l layout.Result, scheme settings.Scheme) []paginate.SheetPlan {
	seq := expand.Sequence{Fronts: fronts, Backs: backs}
	if !seq.HasBacks() {
		return nil
	}
	if back, ok := seq.SingleBack(); ok && scheme == settings.OneToMany {
		return paginate.Repeat(back, len(fronts), l, true)
	}
	return paginate.Paginate(backs, l, true)
}

// Interleave merges front and back pages as f1, b1, f2, b2, ... and appends
// the surplus of the longer side.
func Interleave(front, back []document.Page) []document.Page {
	out := make([]document.Page, 0, len(front)+len(back))
	for i := 0; i < max(len(front), len(back)); i++ {
		if i < len(front) {
			out = append(out, front[i])
		}
		if i < len(back) {
			out = append(out, back[i])
		}
	}
	return out
}

type renderer struct {
	a      *Assembler
	s      settings.PrintSettings
	l      layout.Result
	sheets map[document.Side]int
	total  int

	mu       sync.Mutex
	done     int
	progress func(done, total int)
}

// renderSide renders plans concurrently, keeping their order.
func (r *renderer) renderSide(ctx context.Context, side document.Side, plans []paginate.SheetPlan) ([]document.Page, []UnresolvedImage, error) {
	pages := make([]document.Page, len(plans))
	missing := make([][]UnresolvedImage, len(plans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.a.concurrency)
	for i, plan := range plans {
		g.Go(func() error {
			start := time.Now()
			page, miss, err := r.renderSheet(gctx, side, plan)
			if err != nil {
				return err
			}
			pages[i], missing[i] = page, miss
			observability.Pipeline().OnSheetRendered(gctx, string(side), plan.Index, len(plan.Items), time.Since(start))
			r.tick()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var all []UnresolvedImage
	for _, m := range missing {
		all = append(all, m...)
	}
	return pages, all, nil
}

func (r *renderer) tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
	if r.progress != nil {
		r.progress(r.done, r.total)
	}
}

func (r *renderer) renderSheet(ctx context.Context, side document.Side, plan paginate.SheetPlan) (document.Page, []UnresolvedImage, error) {
	page := document.Page{Size: r.s.Sheet, Side: side, Sheet: plan.Index}
	var missing []UnresolvedImage
	var lines []document.Op

	style := marks.Style{Length: r.s.MarkLength, Offset: r.s.MarkOffset, Thickness: r.s.MarkThickness}
	for _, it := range plan.Items {
		if it.Ref == expand.NoBack {
			continue
		}
		if err := ctx.Err(); err != nil {
			return page, nil, err
		}

		trim := r.l.Trim(it.Position)
		raster, err := r.a.source.Prepare(ctx, it.Ref, r.l.Card, artworkTurn(side, it.Position.Rotated))
		if err != nil {
			if ctx.Err() != nil {
				return page, nil, ctx.Err()
			}
			code := errs.GetCode(err)
			if code == "" {
				code = errs.ErrCodeUnresolvedImage
			}
			missing = append(missing, UnresolvedImage{
				Ref: it.Ref, Side: side, Sheet: plan.Index, Slot: it.Slot,
				Code: code, Reason: errs.UserMessage(err),
			})
			r.a.logger.Warn("unresolved image, drawing placeholder",
				"ref", it.Ref, "side", side, "sheet", plan.Index+1, "slot", it.Slot, "err", err)
			page.Ops = append(page.Ops, document.Placeholder{Box: trim, Label: filepath.Base(it.Ref)})
		} else {
			page.Ops = append(page.Ops, document.Image{Box: trim, Raster: raster})
		}

		if r.s.CropMarks && style.Length > 0 {
			for _, seg := range marks.ForCard(trim, r.l.Bleed, style) {
				lines = append(lines, document.Line{X1: seg.X1, Y1: seg.Y1, X2: seg.X2, Y2: seg.Y2, Width: style.Thickness})
			}
		}
	}
	// Marks go on top so neighbouring artwork never hides them.
	page.Ops = append(page.Ops, lines...)

	if r.s.Slug {
		page.Ops = append(page.Ops, document.Text{
			X:    max(r.s.Margin, 3),
			Y:    r.s.Sheet.Height - max(r.s.Margin/2, 2),
			Size: 7,
			Text: document.PageLabel(side, plan.Index, r.sheets[side], r.a.jobName),
		})
	}
	return page, missing, nil
}
