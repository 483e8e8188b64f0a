package gateway

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
	redisstore "github.com/MrSnakeDoc/reelmark/internal/store/redis"
)

func newTestBridge(t *testing.T) *Bridge {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewBridge(redisstore.NewStore(client))
}

func TestBridgeThroughGateway(t *testing.T) {
	ctx := context.Background()
	br := newTestBridge(t)
	require.NoError(t, br.Ping(ctx))

	g := New(br, nil, logger.NewNop())
	assert.Equal(t, "bridge", g.Transport())

	b := sample("1718008200123")
	require.True(t, g.AddBookmark(ctx, b).Success)
	assert.False(t, g.AddBookmark(ctx, b).Success, "duplicate id")

	edited := b
	edited.Memo = "edited"
	require.True(t, g.UpdateBookmark(ctx, edited).Success)
	assert.False(t, g.UpdateBookmark(ctx, sample("missing")).Success)

	all := g.ListBookmarks(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, "edited", all[0].Memo)
	assert.Equal(t, b.Date, all[0].Date)

	require.True(t, g.AddCategory(ctx, "바다").Success)
	require.True(t, g.AddCategory(ctx, "바다").Success)
	assert.Equal(t, []string{"바다"}, g.ListCategories(ctx))

	require.True(t, g.DeleteBookmark(ctx, b.ID).Success)
	assert.Empty(t, g.ListBookmarks(ctx))
}

func TestBridgeRoundTripKeepsFields(t *testing.T) {
	ctx := context.Background()
	br := newTestBridge(t)

	b := domain.Bookmark{
		ID:        "1",
		Date:      "2024-06-10T08:30:00.123Z",
		URL:       "https://youtube.com/shorts/x",
		Thumbnail: "data:image/jpeg;base64,AAAA",
		Memo:      "",
		Category:  domain.Categories{"귀여움", "귀여움"},
	}
	require.NoError(t, br.AddBookmark(ctx, b))

	all, err := br.ListBookmarks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b, all[0])
}
