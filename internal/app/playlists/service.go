// Package playlists implements playlist workflows.
package playlists

import (
	"context"

	"github.com/ayushmaan703/videotube/internal/models"
)

// Store defines the persistence operations required for playlist workflows.
type Store interface {
	CreatePlaylist(ctx context.Context, ownerID int64, name, description string) (*models.Playlist, error)
	UpdatePlaylist(ctx context.Context, ownerID, playlistID int64, name, description string) (*models.Playlist, error)
	DeletePlaylist(ctx context.Context, ownerID, playlistID int64) error
	AddVideoToPlaylist(ctx context.Context, ownerID, playlistID, videoID int64) error
	RemoveVideoFromPlaylist(ctx context.Context, ownerID, playlistID, videoID int64) error
	UserPlaylists(ctx context.Context, userID int64) ([]models.PlaylistSummary, error)
	PlaylistDetail(ctx context.Context, playlistID int64) (*models.PlaylistDetail, error)
}

// Service describes playlist operations used by HTTP handlers.
type Service interface {
	Create(ctx context.Context, ownerID int64, name, description string) (*models.Playlist, error)
	Update(ctx context.Context, ownerID, playlistID int64, name, description string) (*models.Playlist, error)
	Delete(ctx context.Context, ownerID, playlistID int64) error
	AddVideo(ctx context.Context, ownerID, playlistID, videoID int64) (*models.PlaylistDetail, error)
	RemoveVideo(ctx context.Context, ownerID, playlistID, videoID int64) (*models.PlaylistDetail, error)
	ListForUser(ctx context.Context, userID int64) ([]models.PlaylistSummary, error)
	Get(ctx context.Context, playlistID int64) (*models.PlaylistDetail, error)
}

type service struct {
	store Store
}

// New constructs a playlists Service backed by the given store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) Create(ctx context.Context, ownerID int64, name, description string) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.CreatePlaylist(ctx, ownerID, name, description)
}

func (s *service) Update(ctx context.Context, ownerID, playlistID int64, name, description string) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.UpdatePlaylist(ctx, ownerID, playlistID, name, description)
}

func (s *service) Delete(ctx context.Context, ownerID, playlistID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeletePlaylist(ctx, ownerID, playlistID)
}

func (s *service) AddVideo(ctx context.Context, ownerID, playlistID, videoID int64) (*models.PlaylistDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.store.AddVideoToPlaylist(ctx, ownerID, playlistID, videoID); err != nil {
		return nil, err
	}
	return s.store.PlaylistDetail(ctx, playlistID)
}

func (s *service) RemoveVideo(ctx context.Context, ownerID, playlistID, videoID int64) (*models.PlaylistDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.store.RemoveVideoFromPlaylist(ctx, ownerID, playlistID, videoID); err != nil {
		return nil, err
	}
	return s.store.PlaylistDetail(ctx, playlistID)
}

func (s *service) ListForUser(ctx context.Context, userID int64) ([]models.PlaylistSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.UserPlaylists(ctx, userID)
}

func (s *service) Get(ctx context.Context, playlistID int64) (*models.PlaylistDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.PlaylistDetail(ctx, playlistID)
}
