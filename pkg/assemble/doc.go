// Package assemble renders paginated card sequences into a document.
//
// An [Assembler] computes the layout once, paginates the fronts and the
// mirrored backs, renders every sheet (card images fitted into their trim
// boxes plus optional crop marks and page label) and interleaves the pages
// as front 1, back 1, front 2, back 2 and so on. When one side has more
// sheets, its remaining pages follow in order.
//
// An image that cannot be loaded does not abort the run. Its slot gets a
// visible placeholder and the failure is listed in [Stats.Unresolved].
//
// Sheets are rendered concurrently; page order does not depend on
// scheduling.
package assemble
