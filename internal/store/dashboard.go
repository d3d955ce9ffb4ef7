package store

import (
	"context"
	"fmt"

	"github.com/ayushmaan703/videotube/internal/models"
)

// ChannelStats aggregates the dashboard numbers for a channel: subscriber
// count, total likes across all uploads, total views, and upload count.
func (s *Store) ChannelStats(ctx context.Context, channelID int64) (*models.ChannelStats, error) {
	var st models.ChannelStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1),
			(SELECT COUNT(*) FROM likes l JOIN videos v ON v.id = l.video_id WHERE v.owner_id = $1),
			(SELECT COALESCE(SUM(views), 0) FROM videos WHERE owner_id = $1),
			(SELECT COUNT(*) FROM videos WHERE owner_id = $1)`,
		channelID,
	).Scan(&st.TotalSubscribers, &st.TotalLikes, &st.TotalViews, &st.TotalVideos)
	if err != nil {
		return nil, fmt.Errorf("fetching channel stats: %w", err)
	}
	return &st, nil
}

// ChannelVideos lists every upload of the channel, drafts included, newest
// first, each with its like count.
func (s *Store) ChannelVideos(ctx context.Context, channelID int64) ([]models.DashboardVideo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+videoColumns+`,
			(SELECT COUNT(*) FROM likes l WHERE l.video_id = v.id) AS likes_count
		FROM videos v
		WHERE v.owner_id = $1
		ORDER BY v.created_at DESC, v.id DESC`,
		channelID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing channel videos: %w", err)
	}
	defer rows.Close()

	var items []models.DashboardVideo
	for rows.Next() {
		var it models.DashboardVideo
		err := rows.Scan(
			&it.ID, &it.OwnerID,
			&it.VideoFile.URL, &it.VideoFile.StorageID,
			&it.Thumbnail.URL, &it.Thumbnail.StorageID,
			&it.Title, &it.Description, &it.Duration, &it.Views, &it.IsPublished,
			&it.CreatedAt, &it.UpdatedAt,
			&it.LikesCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning dashboard video: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
