// Package expand turns parties of front/back designs into flat,
// index-aligned print sequences.
//
// A [Party] is a set of front images, an optional set of back images and a
// quantity. [Expand] repeats each party's fronts Quantity times, in input
// order, and derives the matching backs according to the matching scheme:
//
//   - [settings.OneToOne]: backs pair with fronts by index; counts must match
//   - [settings.OneToMany]: the party's single back is repeated for every front
//   - [settings.ManyToMany]: backs are cycled, backs[i % len(backs)]
//
// A party without backs contributes [NoBack] sentinels so that fronts and
// backs stay aligned across mixed single- and double-sided parties.
//
// Count violations are SCHEME_MISMATCH errors in strict mode. In lenient
// mode they are recorded as [Mismatch] values on the [Sequence] and the
// party is paired best-effort.
//
// [Match] pairs front and back files by name, for parties assembled from
// directories of artwork.
package expand
