package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/MrSnakeDoc/reelmark/internal/gateway"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
)

func setupTestSlot(t *testing.T) *Slot {
	t.Helper()

	s, err := Open(t.TempDir(), logger.NewNop())
	require.NoError(t, err, "Failed to open badger slot")
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSlotEmpty(t *testing.T) {
	s := setupTestSlot(t)

	_, err := s.Load(context.Background())
	assert.True(t, errors.Is(err, gateway.ErrSlotEmpty))

	categories, err := s.LoadCategories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestSlotRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := setupTestSlot(t)

	in := []domain.Bookmark{
		{ID: "2", Date: "2024-02-01T00:00:00.000Z", URL: "https://b", Category: domain.Categories{"여행"}},
		{ID: "1", Date: "2024-01-01T00:00:00.000Z", URL: "https://a", Category: domain.Categories{"바다", "bgm"}},
	}
	require.NoError(t, s.Store(ctx, in))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	require.NoError(t, s.Store(ctx, nil))
	out, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, out, "an explicitly stored empty list is not the same as an empty slot")
}

func TestSlotCategories(t *testing.T) {
	ctx := context.Background()
	s := setupTestSlot(t)

	require.NoError(t, s.StoreCategories(ctx, []string{"바다", "인생샷"}))
	got, err := s.LoadCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"바다", "인생샷"}, got)
}

func TestSlotAsLocalTransport(t *testing.T) {
	ctx := context.Background()
	slot, err := OpenInMemory(logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = slot.Close() })

	local := gateway.NewLocal(slot)
	b := domain.Bookmark{ID: "1", URL: "https://a", Category: domain.Categories{"a"}}
	require.NoError(t, local.AddBookmark(ctx, b))

	all, err := local.ListBookmarks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b, all[0])
}
