package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	errs "github.com/matzehuels/cardimposer/pkg/errors"
)

// ErrDegenerate is wrapped by every settings validation failure.
var ErrDegenerate = errors.New("degenerate settings")

// Dimensions is a width/height pair in millimeters.
type Dimensions struct {
	Width  float64 `json:"width" toml:"width" validate:"gt=0"`
	Height float64 `json:"height" toml:"height" validate:"gt=0"`
}

// Swap returns the dimensions rotated by 90 degrees.
func (d Dimensions) Swap() Dimensions { return Dimensions{Width: d.Height, Height: d.Width} }

// Area returns Width*Height.
func (d Dimensions) Area() float64 { return d.Width * d.Height }

func (d Dimensions) String() string { return fmt.Sprintf("%gx%g mm", d.Width, d.Height) }

// Scheme is the rule mapping front designs to back designs.
type Scheme string

const (
	OneToOne   Scheme = "1:1" // paired by index
	OneToMany  Scheme = "1:N" // one shared back per party
	ManyToMany Scheme = "M:N" // backs cycled over the fronts
)

// ParseScheme accepts the canonical forms and the long aliases
// "one-to-one", "one-to-many" and "many-to-many" (case-insensitive, '_' or '-').
func ParseScheme(s string) (Scheme, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-") {
	case "1:1", "one-to-one", "":
		return OneToOne, nil
	case "1:n", "one-to-many":
		return OneToMany, nil
	case "m:n", "many-to-many":
		return ManyToMany, nil
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "unknown matching scheme %q (want 1:1, 1:N or M:N)", s)
}

// FitMode controls how an image is scaled into the card box.
type FitMode string

const (
	// FitProportional scales uniformly to cover the box and center-crops the overflow.
	FitProportional FitMode = "fit-proportional"
	// Stretch scales each axis independently.
	Stretch FitMode = "stretch"
)

// ParseFitMode parses a fit mode name.
func ParseFitMode(s string) (FitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fit-proportional", "fit", "proportional", "cover", "":
		return FitProportional, nil
	case "stretch":
		return Stretch, nil
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "unknown fit mode %q (want fit-proportional or stretch)", s)
}

// PrintSettings is the complete configuration of one imposition run.
type PrintSettings struct {
	Sheet Dimensions `json:"sheet" toml:"sheet"`
	Card  Dimensions `json:"card" toml:"card"`

	Margin float64 `json:"margin" toml:"margin" validate:"gte=0"`
	Bleed  float64 `json:"bleed" toml:"bleed" validate:"gte=0"`
	Gutter float64 `json:"gutter" toml:"gutter" validate:"gte=0"`

	CropMarks     bool    `json:"crop_marks" toml:"crop_marks"`
	MarkLength    float64 `json:"mark_length" toml:"mark_length" validate:"gte=0"`
	MarkOffset    float64 `json:"mark_offset" toml:"mark_offset" validate:"gte=0"`
	MarkThickness float64 `json:"mark_thickness" toml:"mark_thickness" validate:"gte=0"`

	RotateAllowed bool    `json:"rotate_allowed" toml:"rotate_allowed"`
	Scheme        Scheme  `json:"scheme" toml:"scheme" validate:"oneof=1:1 1:N M:N"`
	FitMode       FitMode `json:"fit_mode" toml:"fit_mode" validate:"oneof=fit-proportional stretch"`

	// MatchByName pairs fronts and backs by file name when parties are
	// built from directories.
	MatchByName bool `json:"match_by_name" toml:"match_by_name"`
	// Lenient downgrades scheme mismatches to warnings.
	Lenient bool `json:"lenient" toml:"lenient"`

	// DPI is the raster resolution card images are resampled to.
	DPI int `json:"dpi" toml:"dpi" validate:"gte=72,lte=2400"`

	// Slug draws a page label in the bottom margin.
	Slug bool `json:"slug" toml:"slug"`
}

// Default returns the default settings: A4 sheet, 90x50 mm cards, 10 mm
// margin, 3 mm bleed, 2 mm gutter, crop marks on.
func Default() PrintSettings {
	return PrintSettings{
		Sheet:         SheetA4,
		Card:          CardStandard,
		Margin:        10,
		Bleed:         3,
		Gutter:        2,
		CropMarks:     true,
		MarkLength:    5,
		MarkOffset:    2,
		MarkThickness: 0.3,
		RotateAllowed: true,
		Scheme:        OneToOne,
		FitMode:       FitProportional,
		MatchByName:   true,
		DPI:           300,
	}
}

// Option configures PrintSettings in New.
type Option func(*PrintSettings)

func WithSheet(d Dimensions) Option  { return func(s *PrintSettings) { s.Sheet = d } }
func WithCard(d Dimensions) Option   { return func(s *PrintSettings) { s.Card = d } }
func WithMargin(mm float64) Option   { return func(s *PrintSettings) { s.Margin = mm } }
func WithBleed(mm float64) Option    { return func(s *PrintSettings) { s.Bleed = mm } }
func WithGutter(mm float64) Option   { return func(s *PrintSettings) { s.Gutter = mm } }
func WithRotation(allow bool) Option { return func(s *PrintSettings) { s.RotateAllowed = allow } }
func WithScheme(sc Scheme) Option    { return func(s *PrintSettings) { s.Scheme = sc } }
func WithFitMode(m FitMode) Option   { return func(s *PrintSettings) { s.FitMode = m } }
func WithDPI(dpi int) Option         { return func(s *PrintSettings) { s.DPI = dpi } }
func WithLenient(on bool) Option     { return func(s *PrintSettings) { s.Lenient = on } }

// WithCropMarks enables crop marks of the given length; length 0 disables them.
func WithCropMarks(length float64) Option {
	return func(s *PrintSettings) {
		s.CropMarks = length > 0
		s.MarkLength = length
	}
}

// New returns validated settings built from Default and the given options.
func New(opts ...Option) (PrintSettings, error) {
	s := Default()
	for _, opt := range opts {
		opt(&s)
	}
	if err := s.Validate(); err != nil {
		return PrintSettings{}, err
	}
	return s, nil
}

// Usable returns the sheet area inside the margins. Either side may be
// non-positive for degenerate settings.
func (s PrintSettings) Usable() Dimensions {
	return Dimensions{
		Width:  s.Sheet.Width - 2*s.Margin,
		Height: s.Sheet.Height - 2*s.Margin,
	}
}

// BleedCard returns the card dimensions including bleed on all sides.
func (s PrintSettings) BleedCard() Dimensions {
	return Dimensions{
		Width:  s.Card.Width + 2*s.Bleed,
		Height: s.Card.Height + 2*s.Bleed,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and that the margins leave a positive
// usable area.
func (s PrintSettings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s=%v violates %s", fe.Namespace(), fe.Value(), constraint(fe)))
			}
			return errs.Wrap(errs.ErrCodeDegenerateSettings, ErrDegenerate, "%s", strings.Join(msgs, "; "))
		}
		return errs.Wrap(errs.ErrCodeDegenerateSettings, err, "invalid settings")
	}
	if u := s.Usable(); u.Width <= 0 || u.Height <= 0 {
		return errs.Wrap(errs.ErrCodeDegenerateSettings, ErrDegenerate,
			"margin %g mm leaves no usable area on a %s sheet (usable %gx%g mm)",
			s.Margin, s.Sheet, u.Width, u.Height)
	}
	return nil
}

func constraint(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}
