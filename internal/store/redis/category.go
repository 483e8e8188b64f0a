package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// addCategory keeps the membership set and the ordered list in step: both
// writes land in one script call or neither does.
var addCategory = redis.NewScript(`
if redis.call('SADD', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('RPUSH', KEYS[2], ARGV[1])
return 1
`)

// AddCategory appends a category if it is not known yet. It reports whether it was added.
func (s *Store) AddCategory(ctx context.Context, name string) (bool, error) {
	added, err := addCategory.Run(ctx, s.client, []string{KeyCategorySet, KeyCategories}, name).Int()
	if err != nil {
		return false, fmt.Errorf("failed to add category: %w", err)
	}
	return added == 1, nil
}

// GetCategories returns the categories in insertion order
func (s *Store) GetCategories(ctx context.Context) ([]string, error) {
	categories, err := s.client.LRange(ctx, KeyCategories, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}
