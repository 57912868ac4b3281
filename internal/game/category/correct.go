package category

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DistanceTable maps a submitted word's length to the maximum edit distance
// still considered a correction of a known category word. Implementations
// must be pure and total over non-negative lengths.
type DistanceTable interface {
	MaxEditDistance(wordLength int) uint8
}

// DistanceTableFunc adapts a function to the DistanceTable interface.
type DistanceTableFunc func(wordLength int) uint8

// MaxEditDistance calls f.
func (f DistanceTableFunc) MaxEditDistance(wordLength int) uint8 {
	return f(wordLength)
}

// DefaultDistanceTable tolerates no edits for very short words, one edit from
// four runes, and two edits from seven runes.
func DefaultDistanceTable() DistanceTable {
	return DistanceTableFunc(func(wordLength int) uint8 {
		switch {
		case wordLength < 4:
			return 0
		case wordLength < 7:
			return 1
		default:
			return 2
		}
	})
}

// Correct maps word to a canonical category word. The result is, in order of
// preference: the word itself when it is canonical, the canonical spelling of
// a known alias, or the nearest canonical word (or alias, resolved to its
// canonical form) within the edit-distance bound for the word's rune length.
// Ties on distance resolve to the lexicographically first canonical word.
// The second result is false when no correction exists.
func (c Category) Correct(word string, distances DistanceTable) (string, bool) {
	normalized := Normalize(word)
	if normalized == "" {
		return "", false
	}
	if c.words[normalized] {
		return normalized, true
	}
	if canonical, ok := c.aliases[normalized]; ok {
		return canonical, true
	}

	bound := int(distances.MaxEditDistance(utf8.RuneCountInString(normalized)))
	if bound == 0 {
		return "", false
	}

	best := ""
	bestDistance := bound + 1
	consider := func(candidate, canonical string) {
		d := levenshtein.ComputeDistance(normalized, candidate)
		if d < bestDistance {
			bestDistance = d
			best = canonical
		}
	}
	for _, canonical := range c.canonical {
		consider(canonical, canonical)
	}
	for _, alias := range c.aliasList {
		consider(alias, c.aliases[alias])
	}
	if best == "" {
		return "", false
	}
	return best, true
}
