package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ayushmaan703/videotube/internal/models"
)

// ToggleSubscription flips the viewer's subscription to a channel and
// returns whether the subscription is now active. Subscribing to one's own
// channel is rejected.
func (s *Store) ToggleSubscription(ctx context.Context, viewerID, channelID int64) (bool, error) {
	if viewerID == channelID {
		return false, ErrSelfSubscription
	}
	if err := s.requireRow(ctx, `SELECT 1 FROM users WHERE id = $1`, channelID, ErrChannelNotFound); err != nil {
		return false, err
	}
	active, err := s.toggleEdge(ctx, SubscribesTo, viewerID, channelID)
	if isCheckViolation(err) {
		return false, ErrSelfSubscription
	}
	return active, err
}

// ChannelSubscribers lists the subscribers of a channel, newest first, each
// annotated with the size of their own channel.
func (s *Store) ChannelSubscribers(ctx context.Context, channelID int64) ([]models.SubscriberItem, error) {
	if err := s.requireRow(ctx, `SELECT 1 FROM users WHERE id = $1`, channelID, ErrChannelNotFound); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.full_name, COALESCE(u.avatar_url, ''),
			(SELECT COUNT(*) FROM subscriptions x WHERE x.channel_id = u.id) AS subscriber_count
		FROM subscriptions sub
		JOIN users u ON u.id = sub.subscriber_id
		WHERE sub.channel_id = $1
		ORDER BY sub.created_at DESC`,
		channelID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing subscribers: %w", err)
	}
	defer rows.Close()

	var items []models.SubscriberItem
	for rows.Next() {
		var it models.SubscriberItem
		if err := rows.Scan(&it.ID, &it.Username, &it.FullName, &it.Avatar, &it.SubscriberCount); err != nil {
			return nil, fmt.Errorf("scanning subscriber: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SubscribedChannels lists the channels the subject follows, each with the
// channel's most recent upload when it has any.
func (s *Store) SubscribedChannels(ctx context.Context, subscriberID int64) ([]models.SubscribedChannel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.full_name, COALESCE(u.avatar_url, ''),
			`+videoColumns+`
		FROM subscriptions sub
		JOIN users u ON u.id = sub.channel_id
		LEFT JOIN LATERAL (
			SELECT * FROM videos
			WHERE owner_id = u.id AND is_published
			ORDER BY created_at DESC
			LIMIT 1
		) v ON TRUE
		WHERE sub.subscriber_id = $1
		ORDER BY sub.created_at DESC`,
		subscriberID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing subscribed channels: %w", err)
	}
	defer rows.Close()

	var items []models.SubscribedChannel
	for rows.Next() {
		var (
			it      models.SubscribedChannel
			v       models.Video
			videoID sql.NullInt64
			ownerID sql.NullInt64
			vURL    sql.NullString
			vSID    sql.NullString
			tURL    sql.NullString
			tSID    sql.NullString
			title   sql.NullString
			desc    sql.NullString
			dur     sql.NullFloat64
			views   sql.NullInt64
			pub     sql.NullBool
			created sql.NullTime
			updated sql.NullTime
		)
		err := rows.Scan(
			&it.ID, &it.Username, &it.FullName, &it.Avatar,
			&videoID, &ownerID,
			&vURL, &vSID, &tURL, &tSID,
			&title, &desc, &dur, &views, &pub,
			&created, &updated,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning subscribed channel: %w", err)
		}
		if videoID.Valid {
			v = models.Video{
				ID:          videoID.Int64,
				OwnerID:     ownerID.Int64,
				VideoFile:   models.MediaRef{URL: vURL.String, StorageID: vSID.String},
				Thumbnail:   models.MediaRef{URL: tURL.String, StorageID: tSID.String},
				Title:       title.String,
				Description: desc.String,
				Duration:    dur.Float64,
				Views:       views.Int64,
				IsPublished: pub.Bool,
				CreatedAt:   created.Time,
				UpdatedAt:   updated.Time,
			}
			it.LatestVideo = &v
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
