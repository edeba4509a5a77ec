// Package layout computes uniform grid arrangements of cards on a sheet.
//
// [Compute] is a pure function of [settings.PrintSettings]. It tries the card
// in its given orientation and, when rotation is allowed, rotated by 90
// degrees, and keeps the orientation that fits the most cards. Ties go to
// the unrotated orientation.
//
// # Geometry
//
// All values are millimeters with the origin at the top-left corner of the
// sheet. For one orientation with card size (cw, ch):
//
//	usable   = sheet - 2*margin
//	pitch    = cw + 2*bleed + gutter
//	columns  = floor((usable + gutter) / pitch)
//	occupied = columns*(cw + 2*bleed) + (columns-1)*gutter
//	offset   = margin + (usable - occupied)/2
//	x[i]     = offset + i*pitch - bleed
//
// Rows are computed the same way on the vertical axis. Positions are listed
// row-major: top-to-bottom, then left-to-right within a row.
//
// A card that does not fit in either orientation yields the canonical empty
// [Result] with zero columns and rows. That is a valid outcome; callers that
// need at least one card use [Require], which turns it into a
// NO_FEASIBLE_LAYOUT error carrying the usable-area numbers.
package layout
