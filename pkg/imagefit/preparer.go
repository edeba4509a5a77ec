package imagefit

import (
	"context"
	"image"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/cardimposer/pkg/cache"
	"github.com/matzehuels/cardimposer/pkg/observability"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

// Turn is the quarter turn applied to artwork before it is fitted.
type Turn int

const (
	NoTurn    Turn = 0
	TurnLeft  Turn = 90  // counter-clockwise
	TurnRight Turn = 270 // clockwise
)

func (t Turn) apply(img image.Image) image.Image {
	switch t {
	case TurnLeft:
		return imaging.Rotate90(img)
	case TurnRight:
		return imaging.Rotate270(img)
	}
	return img
}

// Preparer turns image references into encoded rasters sized for a card box.
// It is safe for concurrent use when its cache is.
type Preparer struct {
	cache   cache.Cache
	keyer   cache.Keyer
	dpi     int
	mode    settings.FitMode
	quality int
}

// Option configures a Preparer.
type Option func(*Preparer)

// WithCache stores prepared rasters in c.
func WithCache(c cache.Cache) Option { return func(p *Preparer) { p.cache = c } }

// WithKeyer overrides the cache key generator.
func WithKeyer(k cache.Keyer) Option { return func(p *Preparer) { p.keyer = k } }

// WithDPI sets the resample resolution.
func WithDPI(dpi int) Option { return func(p *Preparer) { p.dpi = dpi } }

// WithFitMode sets how images are scaled into boxes.
func WithFitMode(m settings.FitMode) Option { return func(p *Preparer) { p.mode = m } }

// WithJPEGQuality sets the JPEG quality (1-100) for opaque rasters.
func WithJPEGQuality(q int) Option { return func(p *Preparer) { p.quality = q } }

// NewPreparer returns a Preparer with 300 DPI, fit-proportional scaling and
// no cache unless overridden.
func NewPreparer(opts ...Option) *Preparer {
	p := &Preparer{
		cache:   cache.NewNullCache(),
		keyer:   cache.NewDefaultKeyer(),
		dpi:     300,
		mode:    settings.FitProportional,
		quality: 92,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare loads ref, applies turn and fits it into a box of the given size
// in mm. Errors carry the FILE_NOT_FOUND, UNSUPPORTED or UNRESOLVED_IMAGE
// code.
func (p *Preparer) Prepare(ctx context.Context, ref string, box settings.Dimensions, turn Turn) (Raster, error) {
	w, h := PixelSize(box.Width, p.dpi), PixelSize(box.Height, p.dpi)

	info, err := stat(ref)
	if err != nil {
		return Raster{}, err
	}
	key := p.keyer.ImageKey(
		cache.ImageSource{Path: ref, Size: info.Size(), ModTime: info.ModTime()},
		cache.ImageKeyOpts{Width: w, Height: h, FitMode: string(p.mode), Turn: int(turn)},
	)
	if data, ok, err := p.cache.Get(ctx, key); err == nil && ok {
		if r, err := decodeRaster(data); err == nil {
			observability.Cache().OnCacheHit(ctx, "image")
			return r, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "image")

	img, err := Load(ref)
	if err != nil {
		return Raster{}, err
	}
	r, err := Encode(Fit(turn.apply(img), w, h, p.mode), p.quality)
	if err != nil {
		return Raster{}, err
	}

	if err := p.cache.Set(ctx, key, r.Data, cache.TTLImage); err == nil {
		observability.Cache().OnCacheSet(ctx, "image", len(r.Data))
	}
	return r, nil
}
