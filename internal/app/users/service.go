// Package users implements account workflows: registration, sessions,
// profile management, channel pages and watch history.
package users

import (
	"context"
	"fmt"
	"io"

	"github.com/ayushmaan703/videotube/internal/feed"
	"github.com/ayushmaan703/videotube/internal/logging"
	"github.com/ayushmaan703/videotube/internal/media"
	"github.com/ayushmaan703/videotube/internal/models"
	"github.com/ayushmaan703/videotube/internal/store"
	"github.com/ayushmaan703/videotube/internal/token"
)

// Store defines the persistence operations required for account workflows.
type Store interface {
	CreateUser(ctx context.Context, p store.RegisterParams) (*models.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*models.User, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
	SetRefreshToken(ctx context.Context, userID int64, tok string) error
	ClearRefreshToken(ctx context.Context, userID int64) error
	RotateRefreshToken(ctx context.Context, userID int64, presented, next string) error
	ChangePassword(ctx context.Context, userID int64, current, next string) error
	UpdateAccountDetails(ctx context.Context, userID int64, fullName, email string) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID int64, ref models.MediaRef) (models.MediaRef, error)
	UpdateCoverImage(ctx context.Context, userID int64, ref models.MediaRef) (models.MediaRef, error)
	ChannelProfile(ctx context.Context, viewerID int64, username string) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID int64) ([]models.VideoFeedItem, error)
}

// Tokens mints session token pairs.
type Tokens interface {
	MintPair(userID int64) (token.Pair, error)
	Verify(raw string, kind token.Kind) (int64, error)
}

// Upload is one multipart file handed down from the HTTP layer.
type Upload struct {
	Body        io.Reader
	ContentType string
}

// RegisterInput carries a registration request with its optional images.
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
	Avatar   *Upload
	Cover    *Upload
}

// Service describes high level account operations used by HTTP handlers.
type Service interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, identifier, password string) (*models.User, token.Pair, error)
	Logout(ctx context.Context, userID int64) error
	Refresh(ctx context.Context, refreshToken string) (token.Pair, error)
	CurrentUser(ctx context.Context, userID int64) (*models.User, error)
	ChangePassword(ctx context.Context, userID int64, current, next string) error
	UpdateAccount(ctx context.Context, userID int64, fullName, email string) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID int64, up Upload) (*models.User, error)
	UpdateCover(ctx context.Context, userID int64, up Upload) (*models.User, error)
	Channel(ctx context.Context, viewerID int64, username string) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID int64) (feed.Page[models.VideoFeedItem], error)
}

type service struct {
	store   Store
	tokens  Tokens
	storage media.Storage
}

// New constructs a users Service.
func New(st Store, tokens Tokens, storage media.Storage) Service {
	return &service{store: st, tokens: tokens, storage: storage}
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := store.RegisterParams{
		Username: in.Username,
		Email:    in.Email,
		FullName: in.FullName,
		Password: in.Password,
	}
	if in.Avatar != nil {
		ref, err := s.storage.Upload(ctx, in.Avatar.Body, in.Avatar.ContentType, "avatars")
		if err != nil {
			return nil, fmt.Errorf("uploading avatar: %w", err)
		}
		params.Avatar = ref
	}
	if in.Cover != nil {
		ref, err := s.storage.Upload(ctx, in.Cover.Body, in.Cover.ContentType, "covers")
		if err != nil {
			return nil, fmt.Errorf("uploading cover image: %w", err)
		}
		params.Cover = ref
	}

	u, err := s.store.CreateUser(ctx, params)
	if err != nil {
		// registration failed after the blobs went up; drop them again
		s.discard(ctx, params.Avatar)
		s.discard(ctx, params.Cover)
		return nil, err
	}
	return u, nil
}

func (s *service) Login(ctx context.Context, identifier, password string) (*models.User, token.Pair, error) {
	if err := ctx.Err(); err != nil {
		return nil, token.Pair{}, err
	}
	u, err := s.store.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, token.Pair{}, err
	}
	pair, err := s.tokens.MintPair(u.ID)
	if err != nil {
		return nil, token.Pair{}, fmt.Errorf("minting tokens: %w", err)
	}
	if err := s.store.SetRefreshToken(ctx, u.ID, pair.RefreshToken); err != nil {
		return nil, token.Pair{}, err
	}
	return u, pair, nil
}

func (s *service) Logout(ctx context.Context, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.ClearRefreshToken(ctx, userID)
}

// Refresh exchanges a valid refresh token for a new pair. The presented
// token must both verify and match the stored one, and it is rotated out
// in the same step so it cannot be replayed.
func (s *service) Refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	if err := ctx.Err(); err != nil {
		return token.Pair{}, err
	}
	userID, err := s.tokens.Verify(refreshToken, token.Refresh)
	if err != nil {
		return token.Pair{}, store.ErrInvalidRefresh
	}
	pair, err := s.tokens.MintPair(userID)
	if err != nil {
		return token.Pair{}, fmt.Errorf("minting tokens: %w", err)
	}
	if err := s.store.RotateRefreshToken(ctx, userID, refreshToken, pair.RefreshToken); err != nil {
		return token.Pair{}, err
	}
	return pair, nil
}

func (s *service) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.store.UserByID(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	return s.store.ChangePassword(ctx, userID, current, next)
}

func (s *service) UpdateAccount(ctx context.Context, userID int64, fullName, email string) (*models.User, error) {
	return s.store.UpdateAccountDetails(ctx, userID, fullName, email)
}

func (s *service) UpdateAvatar(ctx context.Context, userID int64, up Upload) (*models.User, error) {
	return s.updateImage(ctx, userID, up, "avatars", s.store.UpdateAvatar)
}

func (s *service) UpdateCover(ctx context.Context, userID int64, up Upload) (*models.User, error) {
	return s.updateImage(ctx, userID, up, "covers", s.store.UpdateCoverImage)
}

func (s *service) updateImage(
	ctx context.Context, userID int64, up Upload, folder string,
	apply func(context.Context, int64, models.MediaRef) (models.MediaRef, error),
) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ref, err := s.storage.Upload(ctx, up.Body, up.ContentType, folder)
	if err != nil {
		return nil, fmt.Errorf("uploading image: %w", err)
	}
	old, err := apply(ctx, userID, ref)
	if err != nil {
		s.discard(ctx, ref)
		return nil, err
	}
	s.discard(ctx, old)
	return s.store.UserByID(ctx, userID)
}

// discard deletes a blob best-effort; a leaked blob is logged, not surfaced.
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

func (s *service) Channel(ctx context.Context, viewerID int64, username string) (*models.ChannelProfile, error) {
	return s.store.ChannelProfile(ctx, viewerID, username)
}

func (s *service) WatchHistory(ctx context.Context, userID int64) (feed.Page[models.VideoFeedItem], error) {
	items, err := s.store.WatchHistory(ctx, userID)
	if err != nil {
		return feed.Page[models.VideoFeedItem]{}, err
	}
	return feed.Page[models.VideoFeedItem]{Docs: items}, nil
}
