// Package engagement coordinates the toggleable viewer relationships:
// likes on videos, comments and tweets, and channel subscriptions.
package engagement

import (
	"context"

	"github.com/ayushmaan703/videotube/internal/feed"
	"github.com/ayushmaan703/videotube/internal/models"
)

// Store defines the persistence operations required for engagement
// workflows. Toggle methods return the resulting state so a lost race
// still answers with what the edge ended up as.
type Store interface {
	ToggleVideoLike(ctx context.Context, viewerID, videoID int64) (bool, error)
	ToggleCommentLike(ctx context.Context, viewerID, commentID int64) (bool, error)
	ToggleTweetLike(ctx context.Context, viewerID, tweetID int64) (bool, error)
	ToggleSubscription(ctx context.Context, viewerID, channelID int64) (bool, error)
	LikedVideos(ctx context.Context, viewerID int64, limit int, after *feed.Cursor) (feed.Page[models.VideoFeedItem], error)
	ChannelSubscribers(ctx context.Context, channelID int64) ([]models.SubscriberItem, error)
	SubscribedChannels(ctx context.Context, subscriberID int64) ([]models.SubscribedChannel, error)
}

// ToggleResult reports the state of an edge after a toggle.
type ToggleResult struct {
	Active bool `json:"active"`
}

// Service describes high level engagement operations used by HTTP handlers.
type Service interface {
	ToggleVideoLike(ctx context.Context, viewerID, videoID int64) (ToggleResult, error)
	ToggleCommentLike(ctx context.Context, viewerID, commentID int64) (ToggleResult, error)
	ToggleTweetLike(ctx context.Context, viewerID, tweetID int64) (ToggleResult, error)
	ToggleSubscription(ctx context.Context, viewerID, channelID int64) (ToggleResult, error)
	LikedVideos(ctx context.Context, viewerID int64, limit int, after *feed.Cursor) (feed.Page[models.VideoFeedItem], error)
	ChannelSubscribers(ctx context.Context, channelID int64) ([]models.SubscriberItem, error)
	SubscribedChannels(ctx context.Context, subscriberID int64) ([]models.SubscribedChannel, error)
}

type service struct {
	store Store
}

// New constructs an engagement Service backed by the given store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) ToggleVideoLike(ctx context.Context, viewerID, videoID int64) (ToggleResult, error) {
	return s.toggle(ctx, viewerID, videoID, s.store.ToggleVideoLike)
}

func (s *service) ToggleCommentLike(ctx context.Context, viewerID, commentID int64) (ToggleResult, error) {
	return s.toggle(ctx, viewerID, commentID, s.store.ToggleCommentLike)
}

func (s *service) ToggleTweetLike(ctx context.Context, viewerID, tweetID int64) (ToggleResult, error) {
	return s.toggle(ctx, viewerID, tweetID, s.store.ToggleTweetLike)
}

func (s *service) ToggleSubscription(ctx context.Context, viewerID, channelID int64) (ToggleResult, error) {
	return s.toggle(ctx, viewerID, channelID, s.store.ToggleSubscription)
}

func (s *service) toggle(
	ctx context.Context, viewerID, targetID int64,
	op func(context.Context, int64, int64) (bool, error),
) (ToggleResult, error) {
	if err := ctx.Err(); err != nil {
		return ToggleResult{}, err
	}
	active, err := op(ctx, viewerID, targetID)
	if err != nil {
		return ToggleResult{}, err
	}
	return ToggleResult{Active: active}, nil
}

func (s *service) LikedVideos(ctx context.Context, viewerID int64, limit int, after *feed.Cursor) (feed.Page[models.VideoFeedItem], error) {
	return s.store.LikedVideos(ctx, viewerID, limit, after)
}

func (s *service) ChannelSubscribers(ctx context.Context, channelID int64) ([]models.SubscriberItem, error) {
	return s.store.ChannelSubscribers(ctx, channelID)
}

func (s *service) SubscribedChannels(ctx context.Context, subscriberID int64) ([]models.SubscribedChannel, error) {
	return s.store.SubscribedChannels(ctx, subscriberID)
}
