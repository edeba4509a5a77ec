// Package settings defines the print settings that drive an imposition run.
//
// [PrintSettings] is the single explicit configuration value consumed by the
// layout calculator, the expander and the assembler. All lengths are in
// millimeters. Construct it with [New] (defaults plus options), [FromForm]
// (recognized form keys) or by filling the struct directly and calling
// [PrintSettings.Validate]:
//
//	s, err := settings.New(
//	    settings.WithSheet(settings.SheetA4),
//	    settings.WithCard(settings.CardStandard),
//	    settings.WithMargin(5),
//	)
//
// Validation rejects negative lengths, non-positive dimensions and settings
// whose margins leave no usable area. Those failures carry the
// DEGENERATE_SETTINGS code and wrap [ErrDegenerate]. A card larger than the
// usable area is not a settings error; it produces an empty layout.
//
// # Presets
//
// Common sheet and card sizes are available by name through [SheetPreset]
// and [CardPreset]; see [SheetPresets] and [CardPresets] for the full lists.
package settings
