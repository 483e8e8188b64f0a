// Package gateway is the storage facade used by the collection and the form.
// It hides which transport is in use and turns transport failures into Results.
package gateway

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
)

// Transport is one storage strategy. Implementations return plain errors;
// the Gateway decides what the caller sees.
type Transport interface {
	Name() string
	ListBookmarks(ctx context.Context) ([]domain.Bookmark, error)
	ListCategories(ctx context.Context) ([]string, error)
	AddBookmark(ctx context.Context, b domain.Bookmark) error
	UpdateBookmark(ctx context.Context, b domain.Bookmark) error
	DeleteBookmark(ctx context.Context, id string) error
	AddCategory(ctx context.Context, name string) error
}

// Result is the uniform outcome of a write.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`

	// Err is the transport error behind a failed Result, for logging and errors.Is.
	Err error `json:"-"`
}

func ok() Result { return Result{Success: true} }

func failed(err error) Result {
	return Result{Success: false, Message: err.Error(), Err: err}
}

// Gateway is the uniform CRUD facade. The transport is fixed at construction.
type Gateway struct {
	transport Transport
	fallback  Slot // nil when the transport is the slot itself
	logger    logger.Logger
}

// New builds a gateway. fallback may be nil.
func New(t Transport, fallback Slot, log logger.Logger) *Gateway {
	return &Gateway{
		transport: t,
		fallback:  fallback,
		logger:    log.With(logger.Component("gateway"), logger.String("transport", t.Name())),
	}
}

// Transport returns the name of the active strategy.
func (g *Gateway) Transport() string {
	return g.transport.Name()
}

// ListBookmarks returns every bookmark, in no particular order.
// On transport failure it reads the fallback slot; if that fails too the result is empty.
func (g *Gateway) ListBookmarks(ctx context.Context) []domain.Bookmark {
	bookmarks, err := g.transport.ListBookmarks(ctx)
	if err == nil {
		g.refreshFallback(ctx, bookmarks)
		return bookmarks
	}

	g.logger.Warn("failed to list bookmarks, reading fallback slot", logger.Error(err))
	if g.fallback == nil {
		return []domain.Bookmark{}
	}

	cached, ferr := g.fallback.Load(ctx)
	if ferr != nil {
		if !errors.Is(ferr, ErrSlotEmpty) {
			g.logger.Warn("failed to read fallback slot", logger.Error(ferr))
		}
		return []domain.Bookmark{}
	}
	g.logger.Info("serving bookmarks from fallback slot", logger.Int("count", len(cached)))
	return cached
}

// ListCategories returns the categories known to the store. Empty on failure.
func (g *Gateway) ListCategories(ctx context.Context) []string {
	categories, err := g.transport.ListCategories(ctx)
	if err != nil {
		g.logger.Warn("failed to list categories", logger.Error(err))
		return []string{}
	}
	return categories
}

// AddBookmark appends b. On a write-only transport success only means the
// request left without a transport error.
func (g *Gateway) AddBookmark(ctx context.Context, b domain.Bookmark) Result {
	return g.write("add_bookmark", b.ID, g.transport.AddBookmark(ctx, b))
}

// UpdateBookmark replaces the record with b.ID.
func (g *Gateway) UpdateBookmark(ctx context.Context, b domain.Bookmark) Result {
	return g.write("update_bookmark", b.ID, g.transport.UpdateBookmark(ctx, b))
}

// DeleteBookmark removes the record with id.
func (g *Gateway) DeleteBookmark(ctx context.Context, id string) Result {
	return g.write("delete_bookmark", id, g.transport.DeleteBookmark(ctx, id))
}

// AddCategory appends a category label.
func (g *Gateway) AddCategory(ctx context.Context, name string) Result {
	return g.write("add_category", name, g.transport.AddCategory(ctx, name))
}

func (g *Gateway) write(op, key string, err error) Result {
	if err != nil {
		g.logger.Warn("gateway write failed",
			logger.String("op", op),
			logger.String("key", key),
			logger.Error(err))
		return failed(err)
	}
	g.logger.Debug("gateway write dispatched",
		logger.String("op", op),
		logger.String("key", key))
	return ok()
}

func (g *Gateway) refreshFallback(ctx context.Context, bookmarks []domain.Bookmark) {
	if g.fallback == nil {
		return
	}
	if err := g.fallback.Store(ctx, bookmarks); err != nil {
		g.logger.Warn("failed to refresh fallback slot", logger.Error(err))
	}
}
