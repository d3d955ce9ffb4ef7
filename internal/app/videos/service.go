// Package videos implements upload, playback and lifecycle workflows for
// videos, including cached view counting.
package videos

import (
	"context"
	"fmt"
	"io"

	"github.com/ayushmaan703/videotube/internal/feed"
	"github.com/ayushmaan703/videotube/internal/logging"
	"github.com/ayushmaan703/videotube/internal/media"
	"github.com/ayushmaan703/videotube/internal/models"
	"github.com/ayushmaan703/videotube/internal/store"
)

// Store defines the persistence operations required for video workflows.
type Store interface {
	CreateVideo(ctx context.Context, d store.VideoDraft) (*models.Video, error)
	VideoDetail(ctx context.Context, viewerID, videoID int64) (*models.VideoDetail, error)
	ListVideos(ctx context.Context, opts feed.Options) (feed.Page[models.VideoFeedItem], error)
	UpdateVideoDetails(ctx context.Context, ownerID, videoID int64, title, description string) (*models.Video, error)
	UpdateVideoThumbnail(ctx context.Context, ownerID, videoID int64, ref models.MediaRef) (models.MediaRef, error)
	DeleteVideo(ctx context.Context, ownerID, videoID int64) (*models.Video, error)
	TogglePublish(ctx context.Context, ownerID, videoID int64) (bool, error)
	AddVideoViews(ctx context.Context, videoID, delta int64) error
	TouchWatchHistory(ctx context.Context, userID, videoID int64) error
}

// ViewCounter batches view increments outside the database. Nil-able: with
// no counter configured every view hits the database directly.
type ViewCounter interface {
	Increment(ctx context.Context, videoID int64) (int64, error)
	Pending(ctx context.Context, videoID int64) (int64, error)
	Drain(ctx context.Context) (map[int64]int64, error)
}

// Upload is one multipart file handed down from the HTTP layer.
type Upload struct {
	Body        io.Reader
	ContentType string
}

// PublishInput carries a new upload request.
type PublishInput struct {
	OwnerID     int64
	Title       string
	Description string
	Duration    float64
	VideoFile   Upload
	Thumbnail   Upload
}

// Service describes high level video operations used by HTTP handlers.
type Service interface {
	Publish(ctx context.Context, in PublishInput) (*models.Video, error)
	List(ctx context.Context, opts feed.Options) (feed.Page[models.VideoFeedItem], error)
	Get(ctx context.Context, viewerID, videoID int64) (*models.VideoDetail, error)
	Update(ctx context.Context, ownerID, videoID int64, title, description string) (*models.Video, error)
	UpdateThumbnail(ctx context.Context, ownerID, videoID int64, up Upload) (*models.Video, error)
	Delete(ctx context.Context, ownerID, videoID int64) error
	TogglePublish(ctx context.Context, ownerID, videoID int64) (bool, error)
	FlushViews(ctx context.Context) error
}

type service struct {
	store   Store
	storage media.Storage
	views   ViewCounter
}

// New constructs a videos Service. views may be nil.
func New(st Store, storage media.Storage, views ViewCounter) Service {
	return &service{store: st, storage: storage, views: views}
}

func (s *service) Publish(ctx context.Context, in PublishInput) (*models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	videoRef, err := s.storage.Upload(ctx, in.VideoFile.Body, in.VideoFile.ContentType, "videos")
	if err != nil {
		return nil, fmt.Errorf("uploading video file: %w", err)
	}
	thumbRef, err := s.storage.Upload(ctx, in.Thumbnail.Body, in.Thumbnail.ContentType, "thumbnails")
	if err != nil {
		s.discard(ctx, videoRef)
		return nil, fmt.Errorf("uploading thumbnail: %w", err)
	}

	v, err := s.store.CreateVideo(ctx, store.VideoDraft{
		OwnerID:     in.OwnerID,
		VideoFile:   videoRef,
		Thumbnail:   thumbRef,
		Title:       in.Title,
		Description: in.Description,
		Duration:    in.Duration,
	})
	if err != nil {
		s.discard(ctx, videoRef)
		s.discard(ctx, thumbRef)
		return nil, err
	}
	return v, nil
}

func (s *service) List(ctx context.Context, opts feed.Options) (feed.Page[models.VideoFeedItem], error) {
	if err := ctx.Err(); err != nil {
		return feed.Page[models.VideoFeedItem]{}, err
	}
	return s.store.ListVideos(ctx, opts)
}

// Get serves one playback page view: the detail document, a view count
// bump, and a watch history touch for the viewer. The returned view count
// includes increments still sitting in the cache.
func (s *service) Get(ctx context.Context, viewerID, videoID int64) (*models.VideoDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, err := s.store.VideoDetail(ctx, viewerID, videoID)
	if err != nil {
		return nil, err
	}

	if s.views != nil {
		pending, err := s.views.Increment(ctx, videoID)
		if err != nil {
			// cache down: fall back to a direct write
			logging.WithContext(ctx).Warn().Err(err).Msg("view counter unavailable")
			if err := s.store.AddVideoViews(ctx, videoID, 1); err != nil {
				return nil, err
			}
			d.Views++
		} else {
			d.Views += pending
		}
	} else {
		if err := s.store.AddVideoViews(ctx, videoID, 1); err != nil {
			return nil, err
		}
		d.Views++
	}

	if viewerID != 0 {
		if err := s.store.TouchWatchHistory(ctx, viewerID, videoID); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (s *service) Update(ctx context.Context, ownerID, videoID int64, title, description string) (*models.Video, error) {
	return s.store.UpdateVideoDetails(ctx, ownerID, videoID, title, description)
}

func (s *service) UpdateThumbnail(ctx context.Context, ownerID, videoID int64, up Upload) (*models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ref, err := s.storage.Upload(ctx, up.Body, up.ContentType, "thumbnails")
	if err != nil {
		return nil, fmt.Errorf("uploading thumbnail: %w", err)
	}
	old, err := s.store.UpdateVideoThumbnail(ctx, ownerID, videoID, ref)
	if err != nil {
		s.discard(ctx, ref)
		return nil, err
	}
	s.discard(ctx, old)
	d, err := s.store.VideoDetail(ctx, ownerID, videoID)
	if err != nil {
		return nil, err
	}
	return &d.Video, nil
}

// Delete removes the video row first; blob cleanup follows and is
// best-effort, so a storage hiccup cannot resurrect a deleted video.
func (s *service) Delete(ctx context.Context, ownerID, videoID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v, err := s.store.DeleteVideo(ctx, ownerID, videoID)
	if err != nil {
		return err
	}
	s.discard(ctx, v.VideoFile)
	s.discard(ctx, v.Thumbnail)
	return nil
}

func (s *service) TogglePublish(ctx context.Context, ownerID, videoID int64) (bool, error) {
	return s.store.TogglePublish(ctx, ownerID, videoID)
}

// FlushViews moves accumulated view increments from the cache into the
// database. Meant to run on a ticker.
func (s *service) FlushViews(ctx context.Context) error {
	if s.views == nil {
		return nil
	}
	pending, err := s.views.Drain(ctx)
	if err != nil {
		return fmt.Errorf("draining view counter: %w", err)
	}
	for videoID, delta := range pending {
		if err := s.store.AddVideoViews(ctx, videoID, delta); err != nil {
			logging.WithContext(ctx).Error().
				Err(err).
				Int64("video_id", videoID).
				Int64("delta", delta).
				Msg("persisting cached views failed")
		}
	}
	return nil
}

func (s *service) discard(ctx context.Context, ref models.MediaRef) {
	if ref.StorageID == "" {
		return
	}
	if err := s.storage.Delete(ctx, ref.StorageID); err != nil {
		logging.WithContext(ctx).Warn().
			Err(err).
			Str("storage_id", ref.StorageID).
			Msg("deleting stored media failed")
	}
}
