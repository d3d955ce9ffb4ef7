// Package dashboard exposes the creator dashboard aggregates.
package dashboard

import (
	"context"

	"github.com/ayushmaan703/videotube/internal/models"
)

// Store defines the persistence operations required for the dashboard.
type Store interface {
	ChannelStats(ctx context.Context, channelID int64) (*models.ChannelStats, error)
	ChannelVideos(ctx context.Context, channelID int64) ([]models.DashboardVideo, error)
}

// Service describes dashboard operations used by HTTP handlers.
type Service interface {
	Stats(ctx context.Context, channelID int64) (*models.ChannelStats, error)
	Videos(ctx context.Context, channelID int64) ([]models.DashboardVideo, error)
}

type service struct {
	store Store
}

// New constructs a dashboard Service backed by the given store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) Stats(ctx context.Context, channelID int64) (*models.ChannelStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ChannelStats(ctx, channelID)
}

func (s *service) Videos(ctx context.Context, channelID int64) ([]models.DashboardVideo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ChannelVideos(ctx, channelID)
}
