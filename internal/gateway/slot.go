package gateway

import (
	"context"
	"errors"
	"sync"

	"github.com/MrSnakeDoc/reelmark/internal/domain"
)

// ErrSlotEmpty is returned by Slot.Load when nothing was ever stored.
var ErrSlotEmpty = errors.New("fallback slot is empty")

// Slot is the local fallback store: one named slot holding the whole
// bookmark sequence, plus the list of user-added categories.
type Slot interface {
	Load(ctx context.Context) ([]domain.Bookmark, error)
	Store(ctx context.Context, bookmarks []domain.Bookmark) error
	LoadCategories(ctx context.Context) ([]string, error)
	StoreCategories(ctx context.Context, categories []string) error
}

// MemorySlot keeps the slot in process memory.
type MemorySlot struct {
	mu         sync.Mutex
	bookmarks  []domain.Bookmark
	categories []string
	stored     bool
}

// NewMemorySlot returns an empty in-memory slot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Load(_ context.Context) ([]domain.Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.stored {
		return nil, ErrSlotEmpty
	}
	return cloneAll(s.bookmarks), nil
}

func (s *MemorySlot) Store(_ context.Context, bookmarks []domain.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookmarks = cloneAll(bookmarks)
	s.stored = true
	return nil
}

func (s *MemorySlot) LoadCategories(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.categories...), nil
}

func (s *MemorySlot) StoreCategories(_ context.Context, categories []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = append([]string(nil), categories...)
	return nil
}

func cloneAll(in []domain.Bookmark) []domain.Bookmark {
	out := make([]domain.Bookmark, len(in))
	for i, b := range in {
		out[i] = b.Clone()
	}
	return out
}
