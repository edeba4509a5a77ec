package settings

import (
	"sort"
	"strings"

	errs "github.com/matzehuels/cardimposer/pkg/errors"
)

// Sheet presets (portrait, mm).
var (
	SheetA3     = Dimensions{Width: 297, Height: 420}
	SheetA4     = Dimensions{Width: 210, Height: 297}
	SheetA5     = Dimensions{Width: 148, Height: 210}
	SheetSRA3   = Dimensions{Width: 320, Height: 450}
	SheetSRA4   = Dimensions{Width: 225, Height: 320}
	SheetLetter = Dimensions{Width: 216, Height: 279}
	SheetLegal  = Dimensions{Width: 216, Height: 356}
)

// Card presets (mm, without bleed).
var (
	CardStandard    = Dimensions{Width: 90, Height: 50}
	CardEuro        = Dimensions{Width: 85, Height: 55}
	CardUS          = Dimensions{Width: 89, Height: 51}
	CardSquare      = Dimensions{Width: 90, Height: 90}
	CardSquareSmall = Dimensions{Width: 70, Height: 70}
	CardMini        = Dimensions{Width: 70, Height: 40}
)

// Custom is the preset name that defers to explicit custom dimensions.
const Custom = "custom"

var sheetPresets = map[string]Dimensions{
	"a3":     SheetA3,
	"a4":     SheetA4,
	"a5":     SheetA5,
	"sra3":   SheetSRA3,
	"sra4":   SheetSRA4,
	"letter": SheetLetter,
	"legal":  SheetLegal,
}

var cardPresets = map[string]Dimensions{
	"standard":     CardStandard,
	"euro":         CardEuro,
	"us":           CardUS,
	"square":       CardSquare,
	"square-small": CardSquareSmall,
	"mini":         CardMini,
}

// SheetPreset looks up a sheet size by case-insensitive name.
func SheetPreset(name string) (Dimensions, error) {
	return lookup(sheetPresets, "sheet", name)
}

// CardPreset looks up a card size by case-insensitive name.
func CardPreset(name string) (Dimensions, error) {
	return lookup(cardPresets, "card", name)
}

// SheetPresets returns the sorted sheet preset names.
func SheetPresets() []string { return names(sheetPresets) }

// CardPresets returns the sorted card preset names.
func CardPresets() []string { return names(cardPresets) }

func lookup(m map[string]Dimensions, kind, name string) (Dimensions, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	if d, ok := m[key]; ok {
		return d, nil
	}
	return Dimensions{}, errs.Wrap(errs.ErrCodeDegenerateSettings, ErrDegenerate,
		"unknown %s size %q (known: %s, %s)", kind, name, strings.Join(names(m), ", "), Custom)
}

func names(m map[string]Dimensions) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
