package domain

import (
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PlaceholderBase is the image service used for synthesized thumbnails.
const PlaceholderBase = "https://picsum.photos/seed/"

// IDGenerator hands out strictly increasing, clock-derived ids
// (Unix milliseconds, decimal). Safe for concurrent use.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
}

// Next returns an id derived from now, bumped past the previous one if the
// clock has not advanced.
func (g *IDGenerator) Next(now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := now.UnixMilli()
	if v <= g.last {
		v = g.last + 1
	}
	g.last = v
	return strconv.FormatInt(v, 10)
}

// PlaceholderThumbnail builds a placeholder image URL from a seed.
func PlaceholderThumbnail(seed string) string {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		seed = "video"
	}
	return PlaceholderBase + url.PathEscape(seed) + "/400/600"
}

// RandomPlaceholder builds a placeholder from a random seed.
func RandomPlaceholder() string {
	return PlaceholderThumbnail(uuid.NewString())
}

// EnsureThumbnail fills an empty thumbnail with a random placeholder.
func EnsureThumbnail(b Bookmark) Bookmark {
	if strings.TrimSpace(b.Thumbnail) == "" {
		b.Thumbnail = RandomPlaceholder()
	}
	return b
}
