// Package tweets implements the short-post workflows.
package tweets

import (
	"context"

	"github.com/ayushmaan703/videotube/internal/feed"
	"github.com/ayushmaan703/videotube/internal/models"
)

// Store defines the persistence operations required for tweet workflows.
type Store interface {
	CreateTweet(ctx context.Context, ownerID int64, content string) (*models.Tweet, error)
	UpdateTweet(ctx context.Context, ownerID, tweetID int64, content string) (*models.Tweet, error)
	DeleteTweet(ctx context.Context, ownerID, tweetID int64) error
	UserTweets(ctx context.Context, viewerID, userID int64, limit int, after *feed.Cursor) (feed.Page[models.TweetItem], error)
}

// Service describes tweet operations used by HTTP handlers.
type Service interface {
	Create(ctx context.Context, ownerID int64, content string) (*models.Tweet, error)
	Update(ctx context.Context, ownerID, tweetID int64, content string) (*models.Tweet, error)
	Delete(ctx context.Context, ownerID, tweetID int64) error
	ListForUser(ctx context.Context, viewerID, userID int64, limit int, after *feed.Cursor) (feed.Page[models.TweetItem], error)
}

type service struct {
	store Store
}

// New constructs a tweets Service backed by the given store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) Create(ctx context.Context, ownerID int64, content string) (*models.Tweet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.CreateTweet(ctx, ownerID, content)
}

func (s *service) Update(ctx context.Context, ownerID, tweetID int64, content string) (*models.Tweet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.UpdateTweet(ctx, ownerID, tweetID, content)
}

func (s *service) Delete(ctx context.Context, ownerID, tweetID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteTweet(ctx, ownerID, tweetID)
}

func (s *service) ListForUser(ctx context.Context, viewerID, userID int64, limit int, after *feed.Cursor) (feed.Page[models.TweetItem], error) {
	if err := ctx.Err(); err != nil {
		return feed.Page[models.TweetItem]{}, err
	}
	return s.store.UserTweets(ctx, viewerID, userID, limit, after)
}
