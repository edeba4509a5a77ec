package cache

// ScopedKeyer wraps a Keyer with a prefix, isolating the keys of one job
// or tenant from another sharing the same backend:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "shop-42:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ImageKey generates a prefixed key for a prepared raster.
func (k *ScopedKeyer) ImageKey(src ImageSource, opts ImageKeyOpts) string {
	return k.prefix + k.inner.ImageKey(src, opts)
}

// ArtifactKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
