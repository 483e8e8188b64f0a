package gateway

import (
	"context"

	"github.com/MrSnakeDoc/reelmark/internal/domain"
	redisstore "github.com/MrSnakeDoc/reelmark/internal/store/redis"
)

// Bridge is the HostBridge strategy: a key-value store provided by the host
// environment, here Redis.
type Bridge struct {
	store *redisstore.Store
}

// NewBridge wraps a Redis store as a transport.
func NewBridge(store *redisstore.Store) *Bridge {
	return &Bridge{store: store}
}

func (b *Bridge) Name() string { return "bridge" }

func (b *Bridge) ListBookmarks(ctx context.Context) ([]domain.Bookmark, error) {
	return b.store.GetAllBookmarks(ctx)
}

func (b *Bridge) ListCategories(ctx context.Context) ([]string, error) {
	return b.store.GetCategories(ctx)
}

func (b *Bridge) AddBookmark(ctx context.Context, bm domain.Bookmark) error {
	return b.store.CreateBookmark(ctx, bm)
}

func (b *Bridge) UpdateBookmark(ctx context.Context, bm domain.Bookmark) error {
	return b.store.UpdateBookmark(ctx, bm)
}

func (b *Bridge) DeleteBookmark(ctx context.Context, id string) error {
	return b.store.DeleteBookmark(ctx, id)
}

func (b *Bridge) AddCategory(ctx context.Context, name string) error {
	_, err := b.store.AddCategory(ctx, name)
	return err
}

// Ping reports whether the host store is reachable.
func (b *Bridge) Ping(ctx context.Context) error {
	return b.store.Ping(ctx)
}
