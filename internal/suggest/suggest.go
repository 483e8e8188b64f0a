// Package suggest asks a generative model for a memo, categories and a
// thumbnail keyword for a video link. It never fails: any problem degrades to
// a random placeholder thumbnail.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
)

// Suggestion is the outcome of Suggest.
type Suggestion struct {
	Memo       string   `json:"memo,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Thumbnail  string   `json:"thumbnail"`
	Degraded   bool     `json:"degraded"`
}

// answer is the structured document requested from the model.
type answer struct {
	Memo             string   `json:"memo"`
	Categories       []string `json:"categories"`
	ThumbnailKeyword string   `json:"thumbnailKeyword"`
}

// ResponseSchema describes answer to the model.
var ResponseSchema = Schema{
	Type: "OBJECT",
	Properties: map[string]Schema{
		"memo": {
			Type:        "STRING",
			Description: "A short memo describing what the video is probably about",
		},
		"categories": {
			Type:        "ARRAY",
			Description: "Categories from the allowed list that fit the video",
			Items:       &Schema{Type: "STRING"},
		},
		"thumbnailKeyword": {
			Type:        "STRING",
			Description: "One English keyword for a placeholder thumbnail image",
		},
	},
	Required: []string{"memo", "categories", "thumbnailKeyword"},
}

// MetaFetcher is the optional page metadata source.
type MetaFetcher interface {
	Fetch(ctx context.Context, rawURL string) (PageMeta, error)
}

// Suggester combines a generator with an optional scraper.
type Suggester struct {
	gen     Generator
	meta    MetaFetcher
	logger  logger.Logger
	randomF func() string
}

// New returns a suggester. meta may be nil.
func New(gen Generator, meta MetaFetcher, log logger.Logger) *Suggester {
	return &Suggester{
		gen:     gen,
		meta:    meta,
		logger:  log.With(logger.Component("suggest")),
		randomF: domain.RandomPlaceholder,
	}
}

// Enabled reports whether a real model is configured.
func (s *Suggester) Enabled() bool {
	_, disabled := s.gen.(Disabled)
	return !disabled
}

// Suggest returns suggestions for rawURL. Suggested categories are limited
// to known ones; unknown labels are dropped, never created.
func (s *Suggester) Suggest(ctx context.Context, rawURL string, known *domain.CategorySet) Suggestion {
	prompt := s.buildPrompt(ctx, rawURL, known)

	text, err := s.gen.Generate(ctx, prompt, ResponseSchema)
	if err != nil {
		s.logger.Warn("suggestion failed, using a random placeholder",
			logger.String("url", rawURL), logger.Error(err))
		return s.degraded()
	}

	a, err := parseAnswer(text)
	if err != nil {
		s.logger.Warn("suggestion answer unreadable, using a random placeholder",
			logger.String("url", rawURL), logger.Error(err))
		return s.degraded()
	}

	return Suggestion{
		Memo:       strings.TrimSpace(a.Memo),
		Categories: known.Filter(a.Categories),
		Thumbnail:  domain.PlaceholderThumbnail(a.ThumbnailKeyword),
	}
}

func (s *Suggester) degraded() Suggestion {
	return Suggestion{Thumbnail: s.randomF(), Degraded: true}
}

func (s *Suggester) buildPrompt(ctx context.Context, rawURL string, known *domain.CategorySet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I have this short-form video URL: %s.\n", rawURL)

	if s.meta != nil {
		meta, err := s.meta.Fetch(ctx, rawURL)
		switch {
		case err != nil:
			s.logger.Debug("page metadata unavailable", logger.String("url", rawURL), logger.Error(err))
		case !meta.empty():
			if meta.Title != "" {
				fmt.Fprintf(&b, "Page title: %s\n", meta.Title)
			}
			if meta.Description != "" {
				fmt.Fprintf(&b, "Page description: %s\n", meta.Description)
			}
		}
	}

	b.WriteString("Predict what this video is about. Write a short memo in the language of the categories, ")
	fmt.Fprintf(&b, "pick categories only from this list: %s, ", strings.Join(known.Labels(), ", "))
	b.WriteString("and suggest one keyword for a placeholder thumbnail (e.g. ocean, forest, friends, cute, city).")
	return b.String()
}

// parseAnswer decodes the model text, tolerating a markdown code fence.
func parseAnswer(text string) (answer, error) {
	var a answer
	err := json.Unmarshal([]byte(text), &a)
	if err == nil {
		return a, nil
	}
	stripped := stripFence(text)
	if stripped == text {
		return answer{}, err
	}
	if err := json.Unmarshal([]byte(stripped), &a); err != nil {
		return answer{}, err
	}
	return a, nil
}

func stripFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return text
	}
	t = strings.TrimPrefix(t, "```")
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		t = t[i+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
