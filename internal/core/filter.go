package core

import "strings"

// Filter narrows a listing by free-text search and category.
type Filter struct {
	// Search matches case-insensitively against description or category.
	Search string
	// Category, when set, must match exactly.
	Category Category
}

func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.Search) == "" && f.Category == ""
}

func (f Filter) Match(e Expense) bool {
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Description), term) ||
		strings.Contains(strings.ToLower(string(e.Category)), term)
}

// Apply returns the matching records in their original order.
func (f Filter) Apply(records []Expense) []Expense {
	out := make([]Expense, 0, len(records))
	for _, e := range records {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// CategoriesIn lists the distinct categories used by records, in order of
// first appearance.
func CategoriesIn(records []Expense) []Category {
	seen := map[Category]struct{}{}
	var out []Category
	for _, e := range records {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	return out
}
