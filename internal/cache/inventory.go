package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	PostKeyPrefix     = "post:%d"
	TrendingKey       = "posts:trending"
	NotificationCount = "notifications:unread:%d"
)

const (
	UserTTL              = 5 * time.Minute
	PostTTL              = 30 * time.Minute
	TrendingTTL          = 5 * time.Minute
	NotificationCountTTL = time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func NotificationCountKey(userID uint) string {
	return fmt.Sprintf(NotificationCount, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
	Invalidate(ctx, TrendingKey)
}

func InvalidateNotificationCount(ctx context.Context, userID uint) {
	Invalidate(ctx, NotificationCountKey(userID))
}
