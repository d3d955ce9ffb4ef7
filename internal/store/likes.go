package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ayushmaan703/videotube/internal/feed"
	"github.com/ayushmaan703/videotube/internal/models"
)

// ToggleVideoLike flips the viewer's like on a video and returns whether
// the like is now active.
func (s *Store) ToggleVideoLike(ctx context.Context, viewerID, videoID int64) (bool, error) {
	if err := s.requireRow(ctx, `SELECT 1 FROM videos WHERE id = $1`, videoID, ErrVideoNotFound); err != nil {
		return false, err
	}
	return s.toggleEdge(ctx, LikesVideo, viewerID, videoID)
}

// ToggleCommentLike flips the viewer's like on a comment.
func (s *Store) ToggleCommentLike(ctx context.Context, viewerID, commentID int64) (bool, error) {
	if err := s.requireRow(ctx, `SELECT 1 FROM comments WHERE id = $1`, commentID, ErrCommentNotFound); err != nil {
		return false, err
	}
	return s.toggleEdge(ctx, LikesComment, viewerID, commentID)
}

// ToggleTweetLike flips the viewer's like on a tweet.
func (s *Store) ToggleTweetLike(ctx context.Context, viewerID, tweetID int64) (bool, error) {
	if err := s.requireRow(ctx, `SELECT 1 FROM tweets WHERE id = $1`, tweetID, ErrTweetNotFound); err != nil {
		return false, err
	}
	return s.toggleEdge(ctx, LikesTweet, viewerID, tweetID)
}

// LikedVideos returns one page of the videos the viewer has liked, most
// recently liked first, each with its owner summary. The continuation
// cursor is bound to the like timestamp, not the video's creation time,
// matching the ordering.
func (s *Store) LikedVideos(ctx context.Context, viewerID int64, limit int, after *feed.Cursor) (feed.Page[models.VideoFeedItem], error) {
	var zero feed.Page[models.VideoFeedItem]
	limit = feed.NormalizeLimit(limit)

	query := `
		SELECT ` + videoColumns + `,
			own.id, own.username, own.full_name, COALESCE(own.avatar_url, ''),
			l.created_at
		FROM likes l
		JOIN videos v ON v.id = l.video_id
		LEFT JOIN users own ON own.id = v.owner_id
		WHERE l.liked_by = $1 AND l.video_id IS NOT NULL`
	args := []any{viewerID}
	if after != nil && after.Kind == feed.CursorCreated {
		query += fmt.Sprintf(" AND l.created_at < $%d", len(args)+1)
		args = append(args, after.CreatedAt)
	}
	query += fmt.Sprintf(" ORDER BY l.created_at DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return zero, fmt.Errorf("listing liked videos: %w", err)
	}
	defer rows.Close()

	var (
		items   []models.VideoFeedItem
		likedAt []time.Time
	)
	for rows.Next() {
		var t time.Time
		item, err := scanVideoItem(rows, &t)
		if err != nil {
			return zero, err
		}
		items = append(items, item)
		likedAt = append(likedAt, t)
	}
	if err := rows.Err(); err != nil {
		return zero, err
	}
	return feed.NewPage(items, limit, func(models.VideoFeedItem) feed.Cursor {
		return feed.CreatedCursor(likedAt[len(likedAt)-1])
	}), nil
}
