package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/MrSnakeDoc/reelmark/internal/gateway"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
	redisstore "github.com/MrSnakeDoc/reelmark/internal/store/redis"
)

type countingLoader struct {
	calls atomic.Int32
	err   error
}

func (l *countingLoader) Load(context.Context) error {
	l.calls.Add(1)
	return l.err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestCollectionReloader_InitialAndManual(t *testing.T) {
	loader := &countingLoader{}
	trigger := make(chan struct{}, 1)
	cr := NewCollectionReloader(loader, logger.NewNop(), 0, trigger)

	cr.Start(context.Background())
	waitFor(t, func() bool { return loader.calls.Load() == 1 })

	trigger <- struct{}{}
	waitFor(t, func() bool { return loader.calls.Load() == 2 })

	cr.Stop()
}

func TestCollectionReloader_Interval(t *testing.T) {
	loader := &countingLoader{}
	cr := NewCollectionReloader(loader, logger.NewNop(), 10*time.Millisecond, make(chan struct{}))

	cr.Start(context.Background())
	waitFor(t, func() bool { return loader.calls.Load() >= 3 })
	cr.Stop()
}

func TestCollectionReloader_KeepsRunningOnError(t *testing.T) {
	loader := &countingLoader{err: errors.New("boom")}
	cr := NewCollectionReloader(loader, logger.NewNop(), 10*time.Millisecond, make(chan struct{}))

	cr.Start(context.Background())
	waitFor(t, func() bool { return loader.calls.Load() >= 2 })
	cr.Stop()

	if err := cr.Reload(context.Background()); err == nil {
		t.Error("Reload() should surface the loader error")
	}
}

func TestCollectionReloader_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cr := NewCollectionReloader(&countingLoader{}, logger.NewNop(), 0, make(chan struct{}))

	cr.Start(ctx)
	cancel()

	select {
	case <-cr.doneCh:
	case <-time.After(2 * time.Second):
		t.Fatal("reloader did not stop after context cancel")
	}
}

func newBridgeStore(t *testing.T) *redisstore.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisstore.NewStore(client)
}

func TestBridgeImporter(t *testing.T) {
	ctx := context.Background()
	store := newBridgeStore(t)
	slot := gateway.NewMemorySlot()

	bookmarks := []domain.Bookmark{
		{ID: "1", Date: "2024-01-01T00:00:00.000Z", URL: "https://a", Category: domain.Categories{"여행"}},
		{ID: "2", Date: "2024-01-02T00:00:00.000Z", URL: "https://b", Category: domain.Categories{"바다"}},
	}
	if err := slot.Store(ctx, bookmarks); err != nil {
		t.Fatal(err)
	}
	if err := slot.StoreCategories(ctx, []string{"바다"}); err != nil {
		t.Fatal(err)
	}

	bi := NewBridgeImporter(store, slot, logger.NewNop())
	n, err := bi.Import(ctx)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Import() = %d, want 2", n)
	}

	cats, _ := store.GetCategories(ctx)
	if len(cats) != 1 || cats[0] != "바다" {
		t.Errorf("categories = %v, want [바다]", cats)
	}

	// A populated bridge is left alone.
	n, err = bi.Import(ctx)
	if err != nil || n != 0 {
		t.Errorf("second Import() = %d, %v; want 0, nil", n, err)
	}
}

func TestBridgeImporter_EmptySlot(t *testing.T) {
	bi := NewBridgeImporter(newBridgeStore(t), gateway.NewMemorySlot(), logger.NewNop())
	n, err := bi.Import(context.Background())
	if err != nil || n != 0 {
		t.Errorf("Import() = %d, %v; want 0, nil", n, err)
	}
}
