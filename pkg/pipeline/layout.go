package pipeline

import (
	"context"

	"github.com/matzehuels/cardimposer/pkg/cache"
	"github.com/matzehuels/cardimposer/pkg/layout"
	"github.com/matzehuels/cardimposer/pkg/marks"
	"github.com/matzehuels/cardimposer/pkg/preview"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

// ComputeLayout validates s and returns its card grid. Unlike
// [layout.Compute] it fails with NO_FEASIBLE_LAYOUT when no card fits.
func ComputeLayout(s settings.PrintSettings) (layout.Result, error) {
	if err := s.Validate(); err != nil {
		return layout.Result{}, err
	}
	return layout.Require(s)
}

// PreviewOptions configures a layout proof.
type PreviewOptions struct {
	Scale  float64 `json:"scale,omitempty"`
	Mirror bool    `json:"mirror,omitempty"`
}

// RenderPreview draws a PNG proof of the layout for s, with crop marks
// when s enables them. An infeasible layout is drawn as an empty sheet.
func RenderPreview(s settings.PrintSettings, opts PreviewOptions) ([]byte, layout.Result, error) {
	if err := s.Validate(); err != nil {
		return nil, layout.Result{}, err
	}
	if opts.Scale <= 0 {
		opts.Scale = DefaultPreviewScale
	}
	l := layout.Compute(s)
	data, err := preview.PNG(l, previewOptions(s, opts)...)
	return data, l, err
}

func previewOptions(s settings.PrintSettings, opts PreviewOptions) []preview.Option {
	po := []preview.Option{preview.WithScale(opts.Scale), preview.WithMirror(opts.Mirror)}
	if s.CropMarks {
		po = append(po, preview.WithMarks(marks.Style{Length: s.MarkLength, Offset: s.MarkOffset, Thickness: s.MarkThickness}))
	}
	return po
}

// Preview renders a layout proof with caching and returns cache hit info.
// Proofs depend only on the settings, so they are keyed by their hash.
func (r *Runner) Preview(ctx context.Context, s settings.PrintSettings, opts PreviewOptions) ([]byte, bool, error) {
	if opts.Scale <= 0 {
		opts.Scale = DefaultPreviewScale
	}
	key := r.Keyer.ArtifactKey(cache.HashValue(s), cache.ArtifactKeyOpts{
		Format: FormatPNG,
		Scale:  opts.Scale,
		Sheet:  mirrorSheet(opts.Mirror),
	})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		return data, true, nil
	}

	data, _, err := RenderPreview(s, opts)
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		r.Logger.Debug("cache preview", "err", err)
	}
	return data, false, nil
}

// mirrorSheet distinguishes front and back proofs in artifact keys.
func mirrorSheet(mirror bool) int {
	if mirror {
		return 1
	}
	return 0
}
