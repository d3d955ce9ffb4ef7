// Package comments implements comment workflows on videos.
package comments

import (
	"context"

	"github.com/ayushmaan703/videotube/internal/feed"
	"github.com/ayushmaan703/videotube/internal/models"
)

// Store defines the persistence operations required for comment workflows.
type Store interface {
	CreateComment(ctx context.Context, ownerID, videoID int64, content string) (*models.Comment, error)
	UpdateComment(ctx context.Context, ownerID, commentID int64, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, ownerID, commentID int64) error
	VideoComments(ctx context.Context, viewerID, videoID int64, limit int, after *feed.Cursor) (feed.Page[models.CommentItem], error)
}

// Service describes comment operations used by HTTP handlers.
type Service interface {
	Add(ctx context.Context, ownerID, videoID int64, content string) (*models.Comment, error)
	Update(ctx context.Context, ownerID, commentID int64, content string) (*models.Comment, error)
	Delete(ctx context.Context, ownerID, commentID int64) error
	ListForVideo(ctx context.Context, viewerID, videoID int64, limit int, after *feed.Cursor) (feed.Page[models.CommentItem], error)
}

type service struct {
	store Store
}

// New constructs a comments Service backed by the given store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) Add(ctx context.Context, ownerID, videoID int64, content string) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.CreateComment(ctx, ownerID, videoID, content)
}

func (s *service) Update(ctx context.Context, ownerID, commentID int64, content string) (*models.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.UpdateComment(ctx, ownerID, commentID, content)
}

func (s *service) Delete(ctx context.Context, ownerID, commentID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteComment(ctx, ownerID, commentID)
}

func (s *service) ListForVideo(ctx context.Context, viewerID, videoID int64, limit int, after *feed.Cursor) (feed.Page[models.CommentItem], error) {
	if err := ctx.Err(); err != nil {
		return feed.Page[models.CommentItem]{}, err
	}
	return s.store.VideoComments(ctx, viewerID, videoID, limit, after)
}
