package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix        = "user:%d"
	PostKeyPrefix        = "post:%d"
	FollowStatsKeyPrefix = "user:%d:follow_stats"
	PostCommentsPrefix   = "post:%d:comments"
)

const (
	UserTTL         = 5 * time.Minute
	PostTTL         = 30 * time.Minute
	FollowStatsTTL  = 10 * time.Minute
	PostCommentsTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// FollowStatsKey caches both relation counters of a user.
func FollowStatsKey(userID uint) string {
	return fmt.Sprintf(FollowStatsKeyPrefix, userID)
}

func PostCommentsKey(postID uint) string {
	return fmt.Sprintf(PostCommentsPrefix, postID)
}

// Invalidate drops keys; a nil client makes it a no-op.
func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateFollow drops the counters of both ends of a relation edge.
func InvalidateFollow(ctx context.Context, fromUserID, toUserID uint) {
	Invalidate(ctx, FollowStatsKey(fromUserID), FollowStatsKey(toUserID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID), PostCommentsKey(postID))
}
