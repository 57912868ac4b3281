// Package category models word categories and submission correction.
//
// A category is an immutable, configuration-owned value: a name plus a
// mapping from canonical words to their accepted misspellings. Categories are
// resolved by name when a match snapshot is loaded, never embedded in
// persisted state.
//
// Correction maps a submitted word to a known category word: an exact
// canonical match, a known-alias match, or the nearest fuzzy match within a
// length-indexed edit-distance bound. The package is the source of truth for
// how lenient the engine is with player spelling.
package category
