package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateTestCache drops every cached projection of one test. Called when
// a catalog entry changes so students never take a stale paper.
func InvalidateTestCache(ctx context.Context, cm *CacheManager, testID uint) {
	SafeDelete(ctx, cm.Test,
		fmt.Sprintf("id:%d", testID),
		fmt.Sprintf("questions:%d", testID))
	SafeInvalidatePattern(ctx, cm.Test, "list:*")
}
