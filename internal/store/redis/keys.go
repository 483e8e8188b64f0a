package redis

const (
	// KeyPrefixBookmark is the prefix for bookmark keys
	KeyPrefixBookmark = "reelmark:bookmark:"
	// KeyAllBookmarks is the key for the set of all bookmark IDs
	KeyAllBookmarks = "reelmark:bookmarks:all"
	// KeyCategories is the list of user-added categories, in insertion order
	KeyCategories = "reelmark:categories"
	// KeyCategorySet dedupes KeyCategories
	KeyCategorySet = "reelmark:categories:set"
)

// BookmarkKey returns the Redis key for a bookmark
func BookmarkKey(id string) string {
	return KeyPrefixBookmark + id
}

// AllBookmarksKey returns the Redis key for the set of all bookmarks
func AllBookmarksKey() string {
	return KeyAllBookmarks
}
