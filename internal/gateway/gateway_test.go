package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
)

// brokenTransport fails every call.
type brokenTransport struct{ err error }

func (b brokenTransport) Name() string { return "broken" }
func (b brokenTransport) ListBookmarks(context.Context) ([]domain.Bookmark, error) {
	return nil, b.err
}
func (b brokenTransport) ListCategories(context.Context) ([]string, error) { return nil, b.err }
func (b brokenTransport) AddBookmark(context.Context, domain.Bookmark) error {
	return b.err
}
func (b brokenTransport) UpdateBookmark(context.Context, domain.Bookmark) error {
	return b.err
}
func (b brokenTransport) DeleteBookmark(context.Context, string) error { return b.err }
func (b brokenTransport) AddCategory(context.Context, string) error    { return b.err }

func sample(id string) domain.Bookmark {
	return domain.Bookmark{
		ID:        id,
		Date:      "2024-06-10T08:30:00.123Z",
		URL:       "https://www.instagram.com/reels/" + id,
		Thumbnail: "https://picsum.photos/seed/x/400/600",
		Memo:      "memo " + id,
		Category:  domain.Categories{"여행", "캠핑팁"},
	}
}

func TestAddThenListContainsExactlyOne(t *testing.T) {
	ctx := context.Background()
	g := New(NewLocal(NewMemorySlot()), nil, logger.NewNop())

	b := sample("1718008200123")
	res := g.AddBookmark(ctx, b)
	require.True(t, res.Success, res.Message)

	all := g.ListBookmarks(ctx)
	var matches []domain.Bookmark
	for _, got := range all {
		if got.ID == b.ID {
			matches = append(matches, got)
		}
	}
	require.Len(t, matches, 1)
	assert.Equal(t, b, matches[0])
}

func TestListFallsBackToSlot(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	require.NoError(t, slot.Store(ctx, []domain.Bookmark{sample("1")}))

	g := New(brokenTransport{err: errors.New("offline")}, slot, logger.NewNop())
	got := g.ListBookmarks(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestListEmptyWhenEverythingFails(t *testing.T) {
	ctx := context.Background()

	g := New(brokenTransport{err: errors.New("offline")}, NewMemorySlot(), logger.NewNop())
	assert.Empty(t, g.ListBookmarks(ctx))
	assert.NotNil(t, g.ListBookmarks(ctx))

	g = New(brokenTransport{err: errors.New("offline")}, nil, logger.NewNop())
	assert.Empty(t, g.ListBookmarks(ctx))
	assert.Empty(t, g.ListCategories(ctx))
}

func TestSuccessfulListRefreshesSlot(t *testing.T) {
	ctx := context.Background()
	primary := NewLocal(NewMemorySlot())
	require.NoError(t, primary.AddBookmark(ctx, sample("7")))

	slot := NewMemorySlot()
	g := New(primary, slot, logger.NewNop())
	g.ListBookmarks(ctx)

	cached, err := slot.Load(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "7", cached[0].ID)
}

func TestWriteFailureBecomesResult(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("connection refused")
	g := New(brokenTransport{err: cause}, nil, logger.NewNop())

	for name, res := range map[string]Result{
		"add":      g.AddBookmark(ctx, sample("1")),
		"update":   g.UpdateBookmark(ctx, sample("1")),
		"delete":   g.DeleteBookmark(ctx, "1"),
		"category": g.AddCategory(ctx, "바다"),
	} {
		assert.False(t, res.Success, name)
		assert.Equal(t, "connection refused", res.Message, name)
		assert.ErrorIs(t, res.Err, cause, name)
	}
}

func TestLocalUpdateIdempotent(t *testing.T) {
	ctx := context.Background()
	local := NewLocal(NewMemorySlot())
	require.NoError(t, local.AddBookmark(ctx, sample("1")))
	require.NoError(t, local.AddBookmark(ctx, sample("2")))

	edited := sample("1")
	edited.Memo = "changed"
	require.NoError(t, local.UpdateBookmark(ctx, edited))
	once, err := local.ListBookmarks(ctx)
	require.NoError(t, err)

	require.NoError(t, local.UpdateBookmark(ctx, edited))
	twice, err := local.ListBookmarks(ctx)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestLocalUpdateUnknown(t *testing.T) {
	local := NewLocal(NewMemorySlot())
	err := local.UpdateBookmark(context.Background(), sample("404"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocalAddDuplicate(t *testing.T) {
	ctx := context.Background()
	local := NewLocal(NewMemorySlot())
	require.NoError(t, local.AddBookmark(ctx, sample("1")))
	assert.Error(t, local.AddBookmark(ctx, sample("1")))
}

func TestLocalDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	local := NewLocal(NewMemorySlot())
	require.NoError(t, local.AddBookmark(ctx, sample("1")))
	require.NoError(t, local.AddBookmark(ctx, sample("2")))

	require.NoError(t, local.DeleteBookmark(ctx, "1"))
	require.NoError(t, local.DeleteBookmark(ctx, "1"))
	require.NoError(t, local.DeleteBookmark(ctx, "missing"))

	all, err := local.ListBookmarks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "2", all[0].ID)
}

func TestLocalNewestFirst(t *testing.T) {
	ctx := context.Background()
	local := NewLocal(NewMemorySlot())
	require.NoError(t, local.AddBookmark(ctx, sample("1")))
	require.NoError(t, local.AddBookmark(ctx, sample("2")))

	all, err := local.ListBookmarks(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", all[0].ID)
	assert.Equal(t, "1", all[1].ID)
}

func TestLocalAddCategoryDedupes(t *testing.T) {
	ctx := context.Background()
	local := NewLocal(NewMemorySlot())

	require.NoError(t, local.AddCategory(ctx, "바다"))
	require.NoError(t, local.AddCategory(ctx, " 바다 "))
	require.NoError(t, local.AddCategory(ctx, "bgm"))

	got, err := local.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"바다", "bgm"}, got)
}

func TestMemorySlotDoesNotAlias(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()
	in := []domain.Bookmark{sample("1")}
	require.NoError(t, slot.Store(ctx, in))

	in[0].Category[0] = "mutated"
	out, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "여행", out[0].Category[0])
}
