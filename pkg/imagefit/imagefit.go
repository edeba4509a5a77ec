// Package imagefit loads card artwork and scales it into card boxes.
//
// Two fit modes are supported. [settings.FitProportional] scales the image
// uniformly by the larger of the two axis ratios, so it covers the box, and
// crops the overflow around the center. [settings.Stretch] scales each axis
// independently and ignores the aspect ratio.
//
// Boxes are given in millimeters and resampled at the configured DPI.
// [Preparer] combines loading, rotation, fitting and encoding, and caches
// the encoded result.
package imagefit

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	errs "github.com/matzehuels/cardimposer/pkg/errors"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

// Raster formats produced by Encode.
const (
	FormatJPEG = "JPG"
	FormatPNG  = "PNG"
)

// SupportedExtensions lists the raster formats Load accepts.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".tif", ".tiff", ".bmp", ".webp"}

// Supported reports whether path has a supported raster extension.
func Supported(path string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(path)))
}

// Load decodes the image at path, applying its EXIF orientation.
func Load(path string) (image.Image, error) {
	if !Supported(path) {
		return nil, errs.New(errs.ErrCodeUnsupported, "unsupported image format %q for %s", filepath.Ext(path), filepath.Base(path))
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "image %s not found", path)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeUnresolvedImage, err, "decode %s", filepath.Base(path))
	}
	return img, nil
}

// PixelSize converts a length in millimeters to pixels at dpi, at least 1.
func PixelSize(mm float64, dpi int) int {
	return max(1, int(math.Round(mm/25.4*float64(dpi))))
}

// Fit scales img to exactly w x h pixels.
func Fit(img image.Image, w, h int, mode settings.FitMode) *image.NRGBA {
	if mode == settings.Stretch {
		return imaging.Resize(img, w, h, imaging.Lanczos)
	}
	return imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
}

// Raster is an encoded, fitted image.
type Raster struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// Encode writes img as JPEG when it is fully opaque and as PNG otherwise.
func Encode(img *image.NRGBA, quality int) (Raster, error) {
	var buf bytes.Buffer
	format := FormatPNG
	var err error
	if img.Opaque() {
		format = FormatJPEG
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	} else {
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression))
	}
	if err != nil {
		return Raster{}, errs.Wrap(errs.ErrCodeInternal, err, "encode raster")
	}
	b := img.Bounds()
	return Raster{Data: buf.Bytes(), Format: format, Width: b.Dx(), Height: b.Dy()}, nil
}

// decodeRaster rebuilds a Raster from cached bytes.
func decodeRaster(data []byte) (Raster, error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Raster{}, err
	}
	format := FormatJPEG
	if name == "png" {
		format = FormatPNG
	}
	return Raster{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// stat returns the identity of a source file.
func stat(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "image %s not found", path)
	}
	return info, err
}
