package redis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/reelmark/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client)
}

func TestStoreBookmarkLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	b := domain.Bookmark{
		ID:       "1718008200123",
		Date:     "2024-06-10T08:30:00.123Z",
		URL:      "https://www.instagram.com/reels/abc/",
		Memo:     "first dive",
		Category: domain.Categories{"프리다이빙"},
	}

	require.NoError(t, s.CreateBookmark(ctx, b))
	assert.Error(t, s.CreateBookmark(ctx, b), "duplicate id must be rejected")

	got, err := s.GetBookmark(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	b.Memo = "edited"
	require.NoError(t, s.UpdateBookmark(ctx, b))
	require.NoError(t, s.UpdateBookmark(ctx, b))

	all, err := s.GetAllBookmarks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "edited", all[0].Memo)

	require.NoError(t, s.DeleteBookmark(ctx, b.ID))
	_, err = s.GetBookmark(ctx, b.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	all, err = s.GetAllBookmarks(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStoreUpdateUnknown(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateBookmark(context.Background(), domain.Bookmark{ID: "missing"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStoreSaveBookmarksMany(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveBookmarksMany(ctx, []domain.Bookmark{
		{ID: "1", URL: "https://a", Category: domain.Categories{"a"}},
		{ID: "2", URL: "https://b", Category: domain.Categories{"b"}},
	}))

	all, err := s.GetAllBookmarks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStoreCategoriesKeepOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, name := range []string{"바다", "bgm", "바다", "인생샷"} {
		_, err := s.AddCategory(ctx, name)
		require.NoError(t, err)
	}

	got, err := s.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"바다", "bgm", "인생샷"}, got)
}

func TestStoreAddCategoryConcurrent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var wg sync.WaitGroup
	var added atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.AddCategory(ctx, "캠핑")
			assert.NoError(t, err)
			if ok {
				added.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), added.Load())
	got, err := s.GetCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"캠핑"}, got)

	members, err := s.client.SMembers(ctx, KeyCategorySet).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"캠핑"}, members)
}
