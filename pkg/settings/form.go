package settings

import (
	"fmt"
	"strconv"
	"strings"

	errs "github.com/matzehuels/cardimposer/pkg/errors"
)

// Recognized form keys.
const (
	KeySheetSize         = "sheet_size"
	KeyCustomSheetWidth  = "custom_sheet_width"
	KeyCustomSheetHeight = "custom_sheet_height"
	KeyCardSize          = "card_size"
	KeyCustomCardWidth   = "custom_card_width"
	KeyCustomCardHeight  = "custom_card_height"
	KeyMargin            = "margin"
	KeyBleed             = "bleed"
	KeyGutter            = "gutter"
	KeyRotateCards       = "rotate_cards"
	KeyAddCropMarks      = "add_crop_marks"
	KeyMarkLength        = "mark_length"
	KeyMarkOffset        = "mark_offset"
	KeyMarkThickness     = "mark_thickness"
	KeyMatchingScheme    = "matching_scheme"
	KeyFitProportions    = "fit_proportions"
	KeyMatchByName       = "match_by_name"
	KeyLenient           = "lenient"
	KeyDPI               = "dpi"
	KeySlug              = "slug"
)

// FormFromValues converts decoded TOML or JSON values into form values.
// Strings, numbers and booleans are accepted; anything else is
// INVALID_INPUT.
func FormFromValues(m map[string]any) (map[string]string, error) {
	form := make(map[string]string, len(m))
	for k, v := range m {
		switch v.(type) {
		case string, bool, int, int64, float64:
			form[k] = fmt.Sprint(v)
		default:
			return nil, errs.New(errs.ErrCodeInvalidInput, "setting %q must be a string, number or boolean", k)
		}
	}
	return form, nil
}

// FromForm builds settings from a flat key/value form, starting from
// Default. Missing keys keep their defaults and unknown keys are ignored.
// The result is validated.
func FromForm(form map[string]string) (PrintSettings, error) {
	s := Default()
	f := formReader{form: form}

	if name, ok := f.str(KeySheetSize); ok && !strings.EqualFold(name, Custom) {
		d, err := SheetPreset(name)
		if err != nil {
			return PrintSettings{}, err
		}
		s.Sheet = d
	} else if ok {
		s.Sheet = Dimensions{
			Width:  f.float(KeyCustomSheetWidth, 0),
			Height: f.float(KeyCustomSheetHeight, 0),
		}
	}

	if name, ok := f.str(KeyCardSize); ok && !strings.EqualFold(name, Custom) {
		d, err := CardPreset(name)
		if err != nil {
			return PrintSettings{}, err
		}
		s.Card = d
	} else if ok {
		s.Card = Dimensions{
			Width:  f.float(KeyCustomCardWidth, 0),
			Height: f.float(KeyCustomCardHeight, 0),
		}
	}

	s.Margin = f.float(KeyMargin, s.Margin)
	s.Bleed = f.float(KeyBleed, s.Bleed)
	s.Gutter = f.float(KeyGutter, s.Gutter)
	s.RotateAllowed = f.bool(KeyRotateCards, s.RotateAllowed)
	s.CropMarks = f.bool(KeyAddCropMarks, s.CropMarks)
	s.MarkLength = f.float(KeyMarkLength, s.MarkLength)
	s.MarkOffset = f.float(KeyMarkOffset, s.MarkOffset)
	s.MarkThickness = f.float(KeyMarkThickness, s.MarkThickness)
	s.MatchByName = f.bool(KeyMatchByName, s.MatchByName)
	s.Lenient = f.bool(KeyLenient, s.Lenient)
	s.Slug = f.bool(KeySlug, s.Slug)
	s.DPI = f.int(KeyDPI, s.DPI)
	if f.bool(KeyFitProportions, true) {
		s.FitMode = FitProportional
	} else {
		s.FitMode = Stretch
	}
	if v, ok := f.str(KeyMatchingScheme); ok {
		sc, err := ParseScheme(v)
		if err != nil {
			return PrintSettings{}, err
		}
		s.Scheme = sc
	}

	if f.err != nil {
		return PrintSettings{}, f.err
	}
	if err := s.Validate(); err != nil {
		return PrintSettings{}, err
	}
	return s, nil
}

// formReader records the first parse failure so FromForm can read all
// fields linearly.
type formReader struct {
	form map[string]string
	err  error
}

func (f *formReader) str(key string) (string, bool) {
	v, ok := f.form[key]
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (f *formReader) float(key string, def float64) float64 {
	v, ok := f.str(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		f.fail(key, v, "a number")
		return def
	}
	return n
}

func (f *formReader) int(key string, def int) int {
	v, ok := f.str(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f.fail(key, v, "an integer")
		return def
	}
	return n
}

func (f *formReader) bool(key string, def bool) bool {
	v, ok := f.str(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "on", "yes", "y":
		return true
	case "off", "no", "n":
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		f.fail(key, v, "a boolean")
		return def
	}
	return b
}

func (f *formReader) fail(key, value, want string) {
	if f.err == nil {
		f.err = errs.New(errs.ErrCodeInvalidInput, "%s=%q: want %s", key, value, want)
	}
}
