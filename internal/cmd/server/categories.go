package server

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/Arshia001/FLServer-sub001/internal/game/category"
)

// defaultCategories is the built-in word set used when no categories file is
// configured. Small on purpose: real deployments supply their own file.
var defaultCategories = map[string]map[string][]string{
	"animals": {
		"cat":   {"kat"},
		"dog":   nil,
		"horse": {"hoarse"},
		"mouse": {"mous"},
	},
	"colors": {
		"blue":   {"bleu"},
		"green":  nil,
		"red":    nil,
		"yellow": {"yelow"},
	},
	"fruits": {
		"apple":  {"aple"},
		"banana": {"bananna"},
		"orange": nil,
		"pear":   nil,
	},
}

// LoadCategories builds the category repository from a JSON file mapping
// category name to canonical word to accepted alias list:
//
//	{"animals": {"cat": ["kat"], "dog": []}}
//
// An empty path loads the built-in set.
func LoadCategories(path string) (*category.Repository, error) {
	words := defaultCategories
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read categories file: %w", err)
		}
		words = nil
		if err := json.Unmarshal(data, &words); err != nil {
			return nil, fmt.Errorf("parse categories file %s: %w", path, err)
		}
		if len(words) == 0 {
			return nil, fmt.Errorf("categories file %s defines no categories", path)
		}
	}

	names := make([]string, 0, len(words))
	for name := range words {
		names = append(names, name)
	}
	sort.Strings(names)

	categories := make([]category.Category, 0, len(names))
	for _, name := range names {
		categories = append(categories, category.New(name, words[name]))
	}
	return category.NewRepository(categories...), nil
}
