package domain

import (
	"strings"
	"time"
)

// DateLayout is the wire format of Bookmark.Date (ISO-8601, UTC, millisecond precision).
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// Bookmark represents a saved short-video link.
//
// The JSON shape is shared with the remote spreadsheet endpoint and the
// fallback slot, so field names must not change.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned once at creation from a clock-derived value.
	// Example: "1718000000000"
	ID string `json:"id"`

	// Date is the creation timestamp, formatted with DateLayout.
	// It is preserved across edits.
	Date string `json:"date"`

	// ─────────────────────────────
	// Content (editable)
	// ─────────────────────────────

	// URL is the source video link.
	// Example: https://www.instagram.com/reels/C8abc/
	URL string `json:"url"`

	// Thumbnail is either a remote image URL or a data: URL.
	Thumbnail string `json:"thumbnail"`

	// Memo is a free-text note, may be empty.
	Memo string `json:"memo"`

	// Category holds the labels this bookmark is filed under.
	// Order is kept, duplicates are not removed.
	Category Categories `json:"category"`
}

// Draft carries the user-editable fields of a bookmark.
type Draft struct {
	URL       string
	Memo      string
	Category  []string
	Thumbnail string
}

// NewBookmark builds a bookmark from a draft, assigning a fresh id and creation date.
func NewBookmark(ids *IDGenerator, now time.Time, d Draft) Bookmark {
	return Bookmark{
		ID:        ids.Next(now),
		Date:      FormatDate(now),
		URL:       strings.TrimSpace(d.URL),
		Memo:      d.Memo,
		Category:  append(Categories(nil), d.Category...),
		Thumbnail: d.Thumbnail,
	}
}

// WithEdits returns a copy of b with the draft applied. ID and Date are kept.
func (b Bookmark) WithEdits(d Draft) Bookmark {
	b.URL = strings.TrimSpace(d.URL)
	b.Memo = d.Memo
	b.Category = append(Categories(nil), d.Category...)
	b.Thumbnail = d.Thumbnail
	return b
}

// Validate reports whether the bookmark may be saved.
func (b Bookmark) Validate() error {
	if strings.TrimSpace(b.URL) == "" {
		return &ValidationError{Field: "url", Message: "url is required"}
	}
	if len(b.Category) == 0 {
		return &ValidationError{Field: "category", Message: "at least one category is required"}
	}
	return nil
}

// Created parses Date. Unparseable dates yield the zero time.
func (b Bookmark) Created() time.Time {
	t, err := ParseDate(b.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Clone returns a deep copy so callers can't alias the category slice.
func (b Bookmark) Clone() Bookmark {
	b.Category = append(Categories(nil), b.Category...)
	return b
}

// FormatDate renders t in the wire format.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate accepts the wire format and any RFC 3339 variant.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
