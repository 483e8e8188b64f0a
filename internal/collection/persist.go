package collection

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/MrSnakeDoc/reelmark/internal/gateway"
	"github.com/MrSnakeDoc/reelmark/internal/logger"
)

// Writer is the write side of the storage gateway.
type Writer interface {
	AddBookmark(ctx context.Context, b domain.Bookmark) gateway.Result
	UpdateBookmark(ctx context.Context, b domain.Bookmark) gateway.Result
	DeleteBookmark(ctx context.Context, id string) gateway.Result
}

// SaveError reports a write the store did not accept. The mutation has
// been rolled back.
type SaveError struct {
	Kind   Kind
	ID     string
	Result gateway.Result
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("%s %s failed: %s", e.Kind, e.ID, e.Result.Message)
}

func (e *SaveError) Unwrap() error { return e.Result.Err }

// Persist shows m immediately, sends it to w, then commits it on success or
// rolls it back on failure.
func (c *Collection) Persist(ctx context.Context, w Writer, m Mutation) error {
	p := c.Begin(m)

	var res gateway.Result
	switch m.Kind {
	case Add:
		res = w.AddBookmark(ctx, m.Bookmark)
	case Update:
		res = w.UpdateBookmark(ctx, m.Bookmark)
	case Delete:
		res = w.DeleteBookmark(ctx, m.ID)
	default:
		c.Rollback(p)
		return fmt.Errorf("unknown mutation kind %d", int(m.Kind))
	}

	if !res.Success {
		c.Rollback(p)
		c.logger.Warn("mutation rolled back",
			logger.String("kind", m.Kind.String()),
			logger.String("id", m.ID),
			logger.String("reason", res.Message))
		return &SaveError{Kind: m.Kind, ID: m.ID, Result: res}
	}

	c.Commit(p)
	c.logger.Debug("mutation committed",
		logger.String("kind", m.Kind.String()),
		logger.String("id", m.ID))
	return nil
}
