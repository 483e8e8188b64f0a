package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/reelmark/internal/gateway"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
	redisstore "github.com/MrSnakeDoc/reelmark/internal/store/redis"
)

// BridgeImporter copies the fallback slot into an empty host bridge on
// startup, so switching from the local transport keeps the collection.
type BridgeImporter struct {
	store  *redisstore.Store
	slot   gateway.Slot
	logger logger.Logger
}

// NewBridgeImporter creates an importer.
func NewBridgeImporter(store *redisstore.Store, slot gateway.Slot, log logger.Logger) *BridgeImporter {
	return &BridgeImporter{
		store:  store,
		slot:   slot,
		logger: log.With(logger.Component("bridge_import")),
	}
}

// Import runs once. It does nothing when the bridge already holds bookmarks
// or the slot is empty. It returns the number of bookmarks imported.
func (bi *BridgeImporter) Import(ctx context.Context) (int, error) {
	existing, err := bi.store.GetAllBookmarks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read bridge: %w", err)
	}
	if len(existing) > 0 {
		bi.logger.Debug("bridge already populated, skipping import",
			logger.Int("count", len(existing)))
		return 0, nil
	}

	bookmarks, err := bi.slot.Load(ctx)
	if errors.Is(err, gateway.ErrSlotEmpty) || (err == nil && len(bookmarks) == 0) {
		bi.logger.Debug("fallback slot empty, nothing to import")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read fallback slot: %w", err)
	}

	if err := bi.store.SaveBookmarksMany(ctx, bookmarks); err != nil {
		return 0, err
	}

	categories, err := bi.slot.LoadCategories(ctx)
	if err != nil {
		bi.logger.Warn("failed to read fallback categories", logger.Error(err))
	}
	for _, c := range categories {
		if _, err := bi.store.AddCategory(ctx, c); err != nil {
			bi.logger.Warn("failed to import category",
				logger.String("category", c),
				logger.Error(err))
		}
	}

	bi.logger.Info("imported fallback slot into bridge",
		logger.Int("bookmarks", len(bookmarks)),
		logger.Int("categories", len(categories)))
	return len(bookmarks), nil
}
