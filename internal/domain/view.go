package domain

import (
	"sort"
	"strings"
)

// Filter holds the inputs of the collection view.
type Filter struct {
	// Category is a label, or AllCategories (or empty) for no category filter.
	Category string
	// Query is matched case-insensitively against memo and category labels.
	Query string
}

// IsAll reports whether the filter keeps every category.
func (f Filter) IsAll() bool {
	return f.Category == "" || f.Category == AllCategories
}

// Derive computes the visible list from a collection. It never mutates the input.
//
// Bookmarks are kept when they carry the active category (unless it is "all"),
// then when the memo or any category contains the query. The result is ordered
// by creation date, most recent first; equal dates keep their input order.
func Derive(bookmarks []Bookmark, f Filter) []Bookmark {
	out := make([]Bookmark, 0, len(bookmarks))
	query := strings.ToLower(f.Query)

	for _, b := range bookmarks {
		if !f.IsAll() && !b.Category.Contains(f.Category) {
			continue
		}
		if query != "" && !MatchesQuery(b, query) {
			continue
		}
		out = append(out, b.Clone())
	}

	// Parse once, not per comparison
	created := make(map[int]int64, len(out))
	for i, b := range out {
		created[i] = b.Created().UnixMilli()
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return created[idx[i]] > created[idx[j]]
	})

	sorted := make([]Bookmark, len(out))
	for i, k := range idx {
		sorted[i] = out[k]
	}
	return sorted
}

// MatchesQuery reports whether the lower-cased query is a substring of the
// memo or of any category label. query must already be lower-cased.
func MatchesQuery(b Bookmark, query string) bool {
	if strings.Contains(strings.ToLower(b.Memo), query) {
		return true
	}
	for _, c := range b.Category {
		if strings.Contains(strings.ToLower(c), query) {
			return true
		}
	}
	return false
}
