// Package catalog maintains the glyph asset catalog used to build
// multi-flavor pixel fonts.
//
// # Naming Convention
//
// Every glyph is one PNG file named after its code point and optional
// name flavors:
//
//	0041.png          U+0041, default drawing
//	0041 ja,ko.png    U+0041, drawing for the "ja" and "ko" name flavors
//	notdef.png        the .notdef glyph
//
// Files live below a directory flavor (a top-level subdirectory of the
// catalog root such as "monospaced"); "common" is the reserved fallback
// directory flavor.
//
// # Core Types
//
// Asset is one parsed glyph file. Entry groups all assets of one code point
// by directory flavor and name flavor, enforcing that each slot is held by
// at most one asset. Catalog owns every Entry plus an index by file path.
//
// # Lifecycle
//
// A Catalog is mutated by Load, Standardize and FallbackDefaults, then
// read through Sequence, Alphabet, CharacterMapping and GlyphList. Query
// results are memoized for the lifetime of the Catalog, so mutation after
// the first query is rejected with ErrCatalogQueried.
//
// A Catalog is not safe for concurrent mutation.
package catalog
