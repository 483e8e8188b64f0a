package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/reelmark/internal/domain"
)

// Local is the LocalFallback strategy: the slot is the only store and every
// mutation rewrites it.
type Local struct {
	mu   sync.Mutex
	slot Slot
}

// NewLocal wraps a slot as a transport.
func NewLocal(slot Slot) *Local {
	return &Local{slot: slot}
}

func (l *Local) Name() string { return "local" }

func (l *Local) ListBookmarks(ctx context.Context) ([]domain.Bookmark, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.load(ctx)
}

func (l *Local) ListCategories(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.slot.LoadCategories(ctx)
}

// AddBookmark puts b first, as the newest entry.
func (l *Local) AddBookmark(ctx context.Context, b domain.Bookmark) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.load(ctx)
	if err != nil {
		return err
	}
	for _, existing := range current {
		if existing.ID == b.ID {
			return fmt.Errorf("bookmark %s already exists", b.ID)
		}
	}
	return l.slot.Store(ctx, append([]domain.Bookmark{b.Clone()}, current...))
}

func (l *Local) UpdateBookmark(ctx context.Context, b domain.Bookmark) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.load(ctx)
	if err != nil {
		return err
	}
	for i := range current {
		if current[i].ID == b.ID {
			current[i] = b.Clone()
			return l.slot.Store(ctx, current)
		}
	}
	return fmt.Errorf("update %s: %w", b.ID, domain.ErrNotFound)
}

// DeleteBookmark is idempotent: deleting an unknown id succeeds.
func (l *Local) DeleteBookmark(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.load(ctx)
	if err != nil {
		return err
	}
	kept := current[:0]
	for _, b := range current {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(current) {
		return nil
	}
	return l.slot.Store(ctx, kept)
}

func (l *Local) AddCategory(ctx context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	categories, err := l.slot.LoadCategories(ctx)
	if err != nil {
		return err
	}
	set := domain.NewCategorySet(categories...)
	if set.Add(name) == 0 {
		return nil
	}
	return l.slot.StoreCategories(ctx, set.Labels())
}

func (l *Local) load(ctx context.Context) ([]domain.Bookmark, error) {
	current, err := l.slot.Load(ctx)
	if errors.Is(err, ErrSlotEmpty) {
		return []domain.Bookmark{}, nil
	}
	return current, err
}
