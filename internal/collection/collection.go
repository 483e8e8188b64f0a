// Package collection holds the confirmed bookmark list, the in-flight
// mutations layered on top of it, and the filter inputs of the list view.
package collection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
)

// State is the lifecycle of the collection.
type State int

const (
	Loading State = iota
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Source is the read side of the storage gateway.
type Source interface {
	ListBookmarks(ctx context.Context) []domain.Bookmark
	ListCategories(ctx context.Context) []string
}

// Collection is safe for concurrent use.
type Collection struct {
	mu sync.RWMutex

	src    Source
	logger logger.Logger

	state      State
	confirmed  []domain.Bookmark
	pending    []*Pending
	nextSeq    uint64
	commits    uint64      // number of commits so far
	committed  []committed // commits made while a Load is in flight
	loads      int         // Loads in flight
	categories *domain.CategorySet
	filter     domain.Filter
	lastReload time.Time
}

// New returns a collection in the Loading state. seed is the built-in
// category list; categories from the store are merged after it.
func New(src Source, seed []string, log logger.Logger) *Collection {
	return &Collection{
		src:        src,
		logger:     log.With(logger.Component("collection")),
		state:      Loading,
		confirmed:  []domain.Bookmark{},
		categories: domain.NewCategorySet(seed...),
		filter:     domain.Filter{Category: domain.AllCategories},
	}
}

// Load fetches bookmarks and categories concurrently and enters Ready once
// both have answered. A failed fetch contributes an empty result.
//
// A listing fetched before a concurrent commit would not contain it, so
// mutations committed after Load started are re-applied on top of it.
func (c *Collection) Load(ctx context.Context) error {
	since := c.beginLoad()
	defer c.endLoad()

	var (
		bookmarks  []domain.Bookmark
		categories []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bookmarks = c.src.ListBookmarks(gctx)
		return nil
	})
	g.Go(func() error {
		categories = c.src.ListCategories(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("load interrupted: %w", err)
	}

	c.mu.Lock()
	c.replaceLocked(bookmarks, categories, since)
	c.mu.Unlock()

	c.logger.Info("collection loaded",
		logger.Int("bookmarks", len(bookmarks)),
		logger.Int("categories", len(categories)))
	return nil
}

// Replace swaps the confirmed state for a fresh listing. Pending mutations
// stay on top of it. Known categories only grow, and labels found on
// bookmarks become known.
func (c *Collection) Replace(bookmarks []domain.Bookmark, categories []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.replaceLocked(bookmarks, categories, c.commits)
}

// replaceLocked installs a listing and re-applies the commits numbered
// after since.
func (c *Collection) replaceLocked(bookmarks []domain.Bookmark, categories []string, since uint64) {
	fresh := make([]domain.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		fresh = append(fresh, b.Clone())
	}
	for _, cm := range c.committed {
		if cm.seq > since {
			fresh = apply(fresh, cm.m)
		}
	}

	c.confirmed = fresh
	c.categories.Add(categories...)
	for _, b := range fresh {
		c.categories.Add(b.Category...)
	}
	c.state = Ready
	c.lastReload = time.Now()
}

func (c *Collection) beginLoad() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loads++
	return c.commits
}

func (c *Collection) endLoad() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loads--
	if c.loads == 0 {
		c.committed = nil
	}
}

// State returns the current lifecycle state.
func (c *Collection) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// LastReload returns when the confirmed state was last replaced.
func (c *Collection) LastReload() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastReload
}

// ─────────────────────────────────────────────────────────────────
// View
// ─────────────────────────────────────────────────────────────────

// SetCategory sets the active category. Empty means AllCategories.
func (c *Collection) SetCategory(label string) {
	if label == "" {
		label = domain.AllCategories
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.filter.Category = label
}

// SetQuery sets the search query.
func (c *Collection) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.filter.Query = q
}

// Filter returns the current filter inputs.
func (c *Collection) Filter() domain.Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.filter
}

// View derives the visible list from the current state and filter.
func (c *Collection) View() []domain.Bookmark {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return domain.Derive(c.snapshotLocked(), c.filter)
}

// Snapshot returns every bookmark with pending mutations applied, unsorted.
func (c *Collection) Snapshot() []domain.Bookmark {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.snapshotLocked()
}

// Get looks a bookmark up by id, pending mutations included.
func (c *Collection) Get(id string) (domain.Bookmark, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, b := range c.snapshotLocked() {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Bookmark{}, false
}

// Count returns the number of visible bookmarks, ignoring the filter.
func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.snapshotLocked())
}

// ─────────────────────────────────────────────────────────────────
// Categories
// ─────────────────────────────────────────────────────────────────

// Categories returns the known labels in insertion order.
func (c *Collection) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.categories.Labels()
}

// KnownCategories returns an independent copy of the category set.
func (c *Collection) KnownCategories() *domain.CategorySet {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.categories.Clone()
}

// HasCategory reports whether label is known.
func (c *Collection) HasCategory(label string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.categories.Contains(label)
}

// AddCategory records a label that the store has accepted.
func (c *Collection) AddCategory(label string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.categories.Add(label) > 0
}
