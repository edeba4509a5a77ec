package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/cardimposer/pkg/errors"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

// settingsFlags binds print settings to command-line flags. Only flags the
// user set override the base settings.
type settingsFlags struct {
	sheet         string
	card          string
	margin        float64
	bleed         float64
	gutter        float64
	rotate        bool
	cropMarks     bool
	markLength    float64
	markOffset    float64
	markThickness float64
	scheme        string
	fit           string
	matchByName   bool
	lenient       bool
	dpi           int
	slug          bool
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	d := settings.Default()
	fs := cmd.Flags()
	fs.StringVar(&f.sheet, "sheet", "a4", "sheet preset ("+strings.Join(settings.SheetPresets(), ", ")+") or WxH in mm")
	fs.StringVar(&f.card, "card", "standard", "card preset ("+strings.Join(settings.CardPresets(), ", ")+") or WxH in mm")
	fs.Float64Var(&f.margin, "margin", d.Margin, "sheet margin in mm")
	fs.Float64Var(&f.bleed, "bleed", d.Bleed, "bleed around each card in mm")
	fs.Float64Var(&f.gutter, "gutter", d.Gutter, "gap between bleed boxes in mm")
	fs.BoolVar(&f.rotate, "rotate", d.RotateAllowed, "allow rotating cards by 90 degrees")
	fs.BoolVar(&f.cropMarks, "crop-marks", d.CropMarks, "draw crop marks")
	fs.Float64Var(&f.markLength, "mark-length", d.MarkLength, "crop mark length in mm")
	fs.Float64Var(&f.markOffset, "mark-offset", d.MarkOffset, "crop mark distance from the bleed box in mm")
	fs.Float64Var(&f.markThickness, "mark-thickness", d.MarkThickness, "crop mark stroke width in mm")
	fs.StringVar(&f.scheme, "scheme", string(d.Scheme), "matching scheme: 1:1, 1:N, M:N")
	fs.StringVar(&f.fit, "fit", string(d.FitMode), "image fit: fit-proportional, stretch")
	fs.BoolVar(&f.matchByName, "match-by-name", d.MatchByName, "pair scanned fronts and backs by file name")
	fs.BoolVar(&f.lenient, "lenient", d.Lenient, "downgrade scheme mismatches to warnings")
	fs.IntVar(&f.dpi, "dpi", d.DPI, "raster resolution of card images")
	fs.BoolVar(&f.slug, "slug", d.Slug, "print a page label in the bottom margin")
}

// apply overrides base with the flags set on cmd and validates the result.
func (f *settingsFlags) apply(cmd *cobra.Command, base settings.PrintSettings) (settings.PrintSettings, error) {
	s := base
	changed := cmd.Flags().Changed
	var err error

	if changed("sheet") {
		if s.Sheet, err = parseSize(f.sheet, settings.SheetPreset); err != nil {
			return s, err
		}
	}
	if changed("card") {
		if s.Card, err = parseSize(f.card, settings.CardPreset); err != nil {
			return s, err
		}
	}
	if changed("scheme") {
		if s.Scheme, err = settings.ParseScheme(f.scheme); err != nil {
			return s, err
		}
	}
	if changed("fit") {
		if s.FitMode, err = settings.ParseFitMode(f.fit); err != nil {
			return s, err
		}
	}

	floats := []struct {
		name string
		dst  *float64
		val  float64
	}{
		{"margin", &s.Margin, f.margin},
		{"bleed", &s.Bleed, f.bleed},
		{"gutter", &s.Gutter, f.gutter},
		{"mark-length", &s.MarkLength, f.markLength},
		{"mark-offset", &s.MarkOffset, f.markOffset},
		{"mark-thickness", &s.MarkThickness, f.markThickness},
	}
	for _, fl := range floats {
		if changed(fl.name) {
			*fl.dst = fl.val
		}
	}
	bools := []struct {
		name string
		dst  *bool
		val  bool
	}{
		{"rotate", &s.RotateAllowed, f.rotate},
		{"crop-marks", &s.CropMarks, f.cropMarks},
		{"match-by-name", &s.MatchByName, f.matchByName},
		{"lenient", &s.Lenient, f.lenient},
		{"slug", &s.Slug, f.slug},
	}
	for _, fl := range bools {
		if changed(fl.name) {
			*fl.dst = fl.val
		}
	}
	if changed("dpi") {
		s.DPI = f.dpi
	}

	return s, s.Validate()
}

// parseSize accepts a preset name or "WxH" in millimeters.
func parseSize(v string, preset func(string) (settings.Dimensions, error)) (settings.Dimensions, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(v)), "x")
	if !ok {
		return preset(v)
	}
	width, werr := strconv.ParseFloat(strings.TrimSpace(w), 64)
	height, herr := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if werr != nil || herr != nil {
		return preset(v)
	}
	if width <= 0 || height <= 0 {
		return settings.Dimensions{}, errs.Wrap(errs.ErrCodeDegenerateSettings, settings.ErrDegenerate, "size %q must be positive", v)
	}
	return settings.Dimensions{Width: width, Height: height}, nil
}

// baseSettings returns the defaults adjusted by the application config.
func (c *CLI) baseSettings() settings.PrintSettings {
	s := settings.Default()
	if c.Config != nil {
		s.DPI = c.Config.DPI
	}
	return s
}
