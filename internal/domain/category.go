package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// AllCategories is the filter sentinel meaning "no category filter".
// It is never a member of a CategorySet.
const AllCategories = "all"

// DefaultCategories is the built-in seed list.
var DefaultCategories = []string{"프리다이빙", "여행", "우정릴스", "인증샷", "귀여움", "캠핑팁"}

// DefaultSelection is the category preselected on a new bookmark.
const DefaultSelection = "인증샷"

// Categories is the category list stored on a bookmark.
type Categories []string

// Contains reports whether label is one of the entries (exact match).
func (c Categories) Contains(label string) bool {
	for _, v := range c {
		if v == label {
			return true
		}
	}
	return false
}

// MarshalJSON always emits an array, never null.
func (c Categories) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(c))
}

// UnmarshalJSON accepts an array of strings, or a single string written by
// older records where a bookmark had exactly one category.
func (c *Categories) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = Categories{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return fmt.Errorf("decode category: %w", err)
		}
		if single == "" {
			*c = Categories{}
			return nil
		}
		*c = Categories{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("decode category: %w", err)
	}
	*c = Categories(list)
	return nil
}

// CategorySet is an insertion-ordered set of category labels.
// The zero value is ready to use. It is not safe for concurrent use.
type CategorySet struct {
	order []string
	index map[string]struct{}
}

// NewCategorySet returns a set seeded with labels, in order.
func NewCategorySet(labels ...string) *CategorySet {
	s := &CategorySet{}
	s.Add(labels...)
	return s
}

// Add appends unknown labels and reports how many were new.
// Labels are trimmed; empty labels and the AllCategories sentinel are ignored.
func (s *CategorySet) Add(labels ...string) int {
	if s.index == nil {
		s.index = make(map[string]struct{}, len(labels))
	}
	added := 0
	for _, raw := range labels {
		label := strings.TrimSpace(raw)
		if label == "" || label == AllCategories {
			continue
		}
		if _, ok := s.index[label]; ok {
			continue
		}
		s.index[label] = struct{}{}
		s.order = append(s.order, label)
		added++
	}
	return added
}

// Contains reports whether label is known.
func (s *CategorySet) Contains(label string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[strings.TrimSpace(label)]
	return ok
}

// Labels returns a copy of the labels in insertion order.
func (s *CategorySet) Labels() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Len returns the number of labels.
func (s *CategorySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Clone returns an independent copy.
func (s *CategorySet) Clone() *CategorySet {
	return NewCategorySet(s.Labels()...)
}

// Filter keeps the labels of in that are known, preserving their order.
func (s *CategorySet) Filter(in []string) []string {
	out := make([]string, 0, len(in))
	for _, label := range in {
		label = strings.TrimSpace(label)
		if s.Contains(label) {
			out = append(out, label)
		}
	}
	return out
}
