package category

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Normalize canonicalizes a word for matching: Unicode case folding plus
// surrounding-whitespace removal. Every word entering the engine, whether
// from configuration or from a player submission, passes through Normalize
// before comparison. The caser is created per call; cases.Caser carries
// transform state and must not be shared across goroutines.
func Normalize(word string) string {
	return cases.Fold().String(strings.TrimSpace(word))
}

// Category is an immutable word category. Identity is the name.
type Category struct {
	name      string
	canonical []string          // sorted, normalized canonical words
	aliasList []string          // sorted, normalized aliases
	words     map[string]bool   // normalized canonical word set
	aliases   map[string]string // normalized alias -> canonical word
}

// New builds a category from a name and a canonical-word -> aliases mapping.
// All words are normalized; aliases resolve to their canonical spelling.
func New(name string, words map[string][]string) Category {
	c := Category{
		name:    name,
		words:   make(map[string]bool, len(words)),
		aliases: make(map[string]string),
	}
	for word, aliases := range words {
		canonical := Normalize(word)
		if canonical == "" {
			continue
		}
		if !c.words[canonical] {
			c.words[canonical] = true
			c.canonical = append(c.canonical, canonical)
		}
		for _, alias := range aliases {
			normalized := Normalize(alias)
			if normalized == "" || c.words[normalized] {
				continue
			}
			if _, seen := c.aliases[normalized]; !seen {
				c.aliasList = append(c.aliasList, normalized)
			}
			c.aliases[normalized] = canonical
		}
	}
	sort.Strings(c.canonical)
	sort.Strings(c.aliasList)
	return c
}

// Name returns the category identity.
func (c Category) Name() string {
	return c.name
}

// Contains reports whether word normalizes to a canonical category word.
func (c Category) Contains(word string) bool {
	return c.words[Normalize(word)]
}

// Words returns the canonical words in sorted order.
func (c Category) Words() []string {
	out := make([]string, len(c.canonical))
	copy(out, c.canonical)
	return out
}

// Resolver resolves category names back to category values when a persisted
// match snapshot is loaded. Categories are configuration-owned; a name that
// no longer resolves leaves the round behaviorally unset.
type Resolver interface {
	Resolve(name string) (Category, bool)
}

// Repository is an in-memory, name-keyed Resolver.
type Repository struct {
	categories map[string]Category
}

// NewRepository builds a repository from the given categories. Later
// duplicates of a name replace earlier ones.
func NewRepository(categories ...Category) *Repository {
	r := &Repository{categories: make(map[string]Category, len(categories))}
	for _, c := range categories {
		r.categories[c.Name()] = c
	}
	return r
}

// Resolve returns the category registered under name.
func (r *Repository) Resolve(name string) (Category, bool) {
	c, ok := r.categories[name]
	return c, ok
}

// Names returns the registered category names in sorted order.
func (r *Repository) Names() []string {
	names := make([]string, 0, len(r.categories))
	for name := range r.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
