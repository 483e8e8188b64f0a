package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/reelmark/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SaveBookmark stores a bookmark in Redis, replacing any record with the same ID
func (s *Store) SaveBookmark(ctx context.Context, bookmark domain.Bookmark) error {
	data, err := json.Marshal(bookmark)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	// Value and index move together
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, BookmarkKey(bookmark.ID), data, 0)
	pipe.SAdd(ctx, AllBookmarksKey(), bookmark.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save bookmark: %w", err)
	}

	return nil
}

// CreateBookmark stores a bookmark only if its ID is unused
func (s *Store) CreateBookmark(ctx context.Context, bookmark domain.Bookmark) error {
	exists, err := s.client.Exists(ctx, BookmarkKey(bookmark.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check bookmark: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("bookmark %s already exists", bookmark.ID)
	}
	return s.SaveBookmark(ctx, bookmark)
}

// UpdateBookmark replaces an existing bookmark. Unknown IDs yield domain.ErrNotFound
func (s *Store) UpdateBookmark(ctx context.Context, bookmark domain.Bookmark) error {
	exists, err := s.client.Exists(ctx, BookmarkKey(bookmark.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check bookmark: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("update %s: %w", bookmark.ID, domain.ErrNotFound)
	}
	return s.SaveBookmark(ctx, bookmark)
}

// GetBookmark retrieves a bookmark from Redis by ID
func (s *Store) GetBookmark(ctx context.Context, id string) (domain.Bookmark, error) {
	data, err := s.client.Get(ctx, BookmarkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Bookmark{}, fmt.Errorf("get %s: %w", id, domain.ErrNotFound)
		}
		return domain.Bookmark{}, fmt.Errorf("failed to get bookmark: %w", err)
	}

	var bookmark domain.Bookmark
	if err := json.Unmarshal(data, &bookmark); err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to unmarshal bookmark: %w", err)
	}

	return bookmark, nil
}

// GetAllBookmarks retrieves all bookmarks from Redis
func (s *Store) GetAllBookmarks(ctx context.Context) ([]domain.Bookmark, error) {
	// Get all bookmark IDs
	ids, err := s.client.SMembers(ctx, AllBookmarksKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark IDs: %w", err)
	}

	if len(ids) == 0 {
		return []domain.Bookmark{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = BookmarkKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}

	bookmarks := make([]domain.Bookmark, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Skip bookmarks whose value vanished
			continue
		}
		var bookmark domain.Bookmark
		if err := json.Unmarshal([]byte(raw), &bookmark); err != nil {
			continue
		}
		bookmarks = append(bookmarks, bookmark)
	}

	return bookmarks, nil
}

// DeleteBookmark removes a bookmark from Redis
func (s *Store) DeleteBookmark(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, BookmarkKey(id))
	pipe.SRem(ctx, AllBookmarksKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	return nil
}

// SaveBookmarksMany stores multiple bookmarks in Redis (bulk operation)
func (s *Store) SaveBookmarksMany(ctx context.Context, bookmarks []domain.Bookmark) error {
	pipe := s.client.Pipeline()

	for _, bookmark := range bookmarks {
		data, err := json.Marshal(bookmark)
		if err != nil {
			return fmt.Errorf("failed to marshal bookmark %s: %w", bookmark.ID, err)
		}

		pipe.Set(ctx, BookmarkKey(bookmark.ID), data, 0)
		pipe.SAdd(ctx, AllBookmarksKey(), bookmark.ID)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save bookmarks: %w", err)
	}

	return nil
}
