package settings

import (
	"testing"

	errs "github.com/matzehuels/cardimposer/pkg/errors"
)

func TestFromForm(t *testing.T) {
	tests := []struct {
		name  string
		form  map[string]string
		check func(t *testing.T, s PrintSettings)
	}{
		{
			name: "empty form yields defaults",
			form: map[string]string{},
			check: func(t *testing.T, s PrintSettings) {
				if s != Default() {
					t.Errorf("FromForm({}) = %+v, want defaults", s)
				}
			},
		},
		{
			name: "presets and numbers",
			form: map[string]string{
				KeySheetSize: "A3", KeyCardSize: "euro",
				KeyMargin: "5", KeyBleed: "2.5", KeyGutter: "0",
				KeyRotateCards: "off", KeyAddCropMarks: "false",
				KeyMatchingScheme: "1:N", KeyFitProportions: "no",
				KeyMatchByName: "0", KeyDPI: "150", KeySlug: "on",
			},
			check: func(t *testing.T, s PrintSettings) {
				if s.Sheet != SheetA3 || s.Card != CardEuro {
					t.Errorf("sheet/card = %v/%v", s.Sheet, s.Card)
				}
				if s.Margin != 5 || s.Bleed != 2.5 || s.Gutter != 0 {
					t.Errorf("margin/bleed/gutter = %v/%v/%v", s.Margin, s.Bleed, s.Gutter)
				}
				if s.RotateAllowed || s.CropMarks || s.MatchByName || !s.Slug {
					t.Errorf("flags not applied: %+v", s)
				}
				if s.Scheme != OneToMany || s.FitMode != Stretch || s.DPI != 150 {
					t.Errorf("scheme/fit/dpi = %v/%v/%v", s.Scheme, s.FitMode, s.DPI)
				}
			},
		},
		{
			name: "custom sizes",
			form: map[string]string{
				KeySheetSize: "custom", KeyCustomSheetWidth: "330", KeyCustomSheetHeight: "480",
				KeyCardSize: "Custom", KeyCustomCardWidth: "63", KeyCustomCardHeight: "88",
			},
			check: func(t *testing.T, s PrintSettings) {
				if s.Sheet != (Dimensions{Width: 330, Height: 480}) {
					t.Errorf("Sheet = %v", s.Sheet)
				}
				if s.Card != (Dimensions{Width: 63, Height: 88}) {
					t.Errorf("Card = %v", s.Card)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := FromForm(tt.form)
			if err != nil {
				t.Fatalf("FromForm() error = %v", err)
			}
			tt.check(t, s)
		})
	}
}

func TestFromFormErrors(t *testing.T) {
	tests := []struct {
		name string
		form map[string]string
		code errs.Code
	}{
		{"bad number", map[string]string{KeyMargin: "ten"}, errs.ErrCodeInvalidInput},
		{"bad bool", map[string]string{KeyRotateCards: "maybe"}, errs.ErrCodeInvalidInput},
		{"bad dpi", map[string]string{KeyDPI: "3.5"}, errs.ErrCodeInvalidInput},
		{"bad scheme", map[string]string{KeyMatchingScheme: "3:1"}, errs.ErrCodeInvalidInput},
		{"unknown sheet", map[string]string{KeySheetSize: "B7"}, errs.ErrCodeDegenerateSettings},
		{"custom sheet missing sizes", map[string]string{KeySheetSize: "custom"}, errs.ErrCodeDegenerateSettings},
		{"margin too large", map[string]string{KeyMargin: "200"}, errs.ErrCodeDegenerateSettings},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromForm(tt.form)
			if !errs.Is(err, tt.code) {
				t.Errorf("FromForm() error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestFormFromValues(t *testing.T) {
	form, err := FormFromValues(map[string]any{
		KeySheetSize:   "A5",
		KeyMargin:      int64(4),
		KeyBleed:       2.5,
		KeyDPI:         float64(600),
		KeyRotateCards: false,
	})
	if err != nil {
		t.Fatalf("FormFromValues() error = %v", err)
	}
	want := map[string]string{
		KeySheetSize: "A5", KeyMargin: "4", KeyBleed: "2.5", KeyDPI: "600", KeyRotateCards: "false",
	}
	for k, v := range want {
		if form[k] != v {
			t.Errorf("form[%s] = %q, want %q", k, form[k], v)
		}
	}

	s, err := FromForm(form)
	if err != nil {
		t.Fatalf("FromForm() error = %v", err)
	}
	if s.Sheet != SheetA5 || s.DPI != 600 || s.RotateAllowed {
		t.Errorf("settings = %+v", s)
	}

	for _, bad := range []any{[]any{1, 2}, map[string]any{"w": 1}, nil} {
		if _, err := FormFromValues(map[string]any{KeyMargin: bad}); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("FormFromValues(%v) error = %v, want INVALID_INPUT", bad, err)
		}
	}
}
