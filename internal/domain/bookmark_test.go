package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestBookmarkValidate(t *testing.T) {
	tests := []struct {
		name      string
		bookmark  Bookmark
		wantField string
	}{
		{
			name:     "valid",
			bookmark: Bookmark{URL: "https://www.instagram.com/reels/abc/", Category: Categories{"여행"}},
		},
		{
			name:      "empty url",
			bookmark:  Bookmark{Category: Categories{"여행"}},
			wantField: "url",
		},
		{
			name:      "blank url",
			bookmark:  Bookmark{URL: "   ", Category: Categories{"여행"}},
			wantField: "url",
		},
		{
			name:      "no category",
			bookmark:  Bookmark{URL: "https://example.com", Category: Categories{}},
			wantField: "category",
		},
		{
			name:      "nil category",
			bookmark:  Bookmark{URL: "https://example.com"},
			wantField: "category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bookmark.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Validate() field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestNewBookmarkAndEdits(t *testing.T) {
	gen := &IDGenerator{}
	now := time.Date(2024, 6, 10, 8, 30, 0, 123_000_000, time.UTC)

	b := NewBookmark(gen, now, Draft{
		URL:      "  https://example.com/reel  ",
		Memo:     "note",
		Category: []string{"여행", "바다"},
	})

	if b.ID != "1718008200123" {
		t.Errorf("ID = %q, want clock-derived millis", b.ID)
	}
	if b.Date != "2024-06-10T08:30:00.123Z" {
		t.Errorf("Date = %q", b.Date)
	}
	if b.URL != "https://example.com/reel" {
		t.Errorf("URL = %q, want trimmed", b.URL)
	}

	edited := b.WithEdits(Draft{URL: "https://example.com/other", Category: []string{"인증샷"}})
	if edited.ID != b.ID || edited.Date != b.Date {
		t.Errorf("WithEdits() changed identity: %+v", edited)
	}
	if edited.URL != "https://example.com/other" || len(edited.Category) != 1 || edited.Memo != "" {
		t.Errorf("WithEdits() = %+v", edited)
	}
}

func TestIDGeneratorStrictlyIncreasing(t *testing.T) {
	gen := &IDGenerator{}
	now := time.UnixMilli(1_700_000_000_000)

	first := gen.Next(now)
	second := gen.Next(now)
	third := gen.Next(now.Add(-time.Second))

	if first != "1700000000000" || second != "1700000000001" || third != "1700000000002" {
		t.Errorf("Next() = %s, %s, %s", first, second, third)
	}
}

func TestBookmarkJSONRoundTrip(t *testing.T) {
	original := Bookmark{
		ID:        "1718008200123",
		Date:      "2024-06-10T08:30:00.123Z",
		URL:       "https://www.instagram.com/reels/abc/",
		Thumbnail: "data:image/jpeg;base64,AAAA",
		Memo:      "프리다이빙 연습",
		Category:  Categories{"프리다이빙", "바다"},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, key := range []string{`"id"`, `"date"`, `"url"`, `"thumbnail"`, `"memo"`, `"category"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("wire payload %s is missing %s", data, key)
		}
	}

	var decoded Bookmark
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.ID != original.ID || decoded.Date != original.Date || decoded.URL != original.URL ||
		decoded.Thumbnail != original.Thumbnail || decoded.Memo != original.Memo ||
		strings.Join(decoded.Category, ",") != strings.Join(original.Category, ",") {
		t.Errorf("round trip = %+v, want %+v", decoded, original)
	}
}

func TestCategoriesDecodeLegacyString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "array", input: `{"category":["a","b"]}`, want: []string{"a", "b"}},
		{name: "single string", input: `{"category":"여행"}`, want: []string{"여행"}},
		{name: "empty string", input: `{"category":""}`, want: []string{}},
		{name: "null", input: `{"category":null}`, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Bookmark
			if err := json.Unmarshal([]byte(tt.input), &b); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if strings.Join(b.Category, ",") != strings.Join(tt.want, ",") || len(b.Category) != len(tt.want) {
				t.Errorf("Category = %v, want %v", b.Category, tt.want)
			}
		})
	}
}

func TestCategoriesMarshalNilAsArray(t *testing.T) {
	data, err := json.Marshal(Bookmark{ID: "1"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"category":[]`) {
		t.Errorf("Marshal() = %s, want empty array", data)
	}
}

func TestPlaceholderThumbnail(t *testing.T) {
	tests := []struct {
		seed string
		want string
	}{
		{seed: "ocean", want: "https://picsum.photos/seed/ocean/400/600"},
		{seed: "", want: "https://picsum.photos/seed/video/400/600"},
		{seed: "deep sea", want: "https://picsum.photos/seed/deep%20sea/400/600"},
	}

	for _, tt := range tests {
		if got := PlaceholderThumbnail(tt.seed); got != tt.want {
			t.Errorf("PlaceholderThumbnail(%q) = %q, want %q", tt.seed, got, tt.want)
		}
	}
}

func TestEnsureThumbnail(t *testing.T) {
	b := EnsureThumbnail(Bookmark{})
	if !strings.HasPrefix(b.Thumbnail, PlaceholderBase) {
		t.Errorf("EnsureThumbnail() = %q, want placeholder", b.Thumbnail)
	}

	kept := EnsureThumbnail(Bookmark{Thumbnail: "https://cdn.example.com/x.jpg"})
	if kept.Thumbnail != "https://cdn.example.com/x.jpg" {
		t.Errorf("EnsureThumbnail() replaced an existing thumbnail: %q", kept.Thumbnail)
	}
}
