// Package cache stores prepared card rasters and rendered artifacts.
//
// Fitting a large photo into a card box at print resolution is the most
// expensive step of an imposition run. Results are keyed by the source file
// identity (path, size, modification time) and the target geometry, so a
// re-run with unchanged artwork and settings reuses them.
//
// Three backends implement [Cache]:
//
//   - [NullCache]: never stores anything
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for `impose serve` deployments
//
// Keys are produced by a [Keyer]; [NewScopedKeyer] prefixes them for
// isolation between tenants or jobs.
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	TTLImage    = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value; ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop all their entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// ImageSource identifies the bytes of a source image.
type ImageSource struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// ImageKeyOpts is the target geometry of a prepared raster.
type ImageKeyOpts struct {
	Width   int    `json:"w"`
	Height  int    `json:"h"`
	FitMode string `json:"fit"`
	Turn    int    `json:"turn,omitempty"`
}

// ArtifactKeyOpts describes a rendered artifact such as a preview PNG.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
	Sheet  int     `json:"sheet,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	ImageKey(src ImageSource, opts ImageKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ImageKey returns "image:<hash>".
func (DefaultKeyer) ImageKey(src ImageSource, opts ImageKeyOpts) string {
	return hashKey("image", src.Path, src.Size, src.ModTime.UnixNano(), opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
