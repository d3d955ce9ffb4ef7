package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayushmaan703/videotube/internal/models"
)

// dummyHash is compared against when the user does not exist so that
// Authenticate takes the same time either way.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

const userColumns = `id, username, email, full_name, password_hash,
	COALESCE(refresh_token, ''),
	COALESCE(avatar_url, ''), COALESCE(avatar_storage_id, ''),
	COALESCE(cover_url, ''), COALESCE(cover_storage_id, ''),
	created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.RefreshToken,
		&u.Avatar.URL, &u.Avatar.StorageID,
		&u.CoverImage.URL, &u.CoverImage.StorageID,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// RegisterParams carries everything needed to create an account. Media
// references are optional.
type RegisterParams struct {
	Username string
	Email    string
	FullName string
	Password string
	Avatar   models.MediaRef
	Cover    models.MediaRef
}

func (p *RegisterParams) validate() error {
	p.Username = strings.ToLower(strings.TrimSpace(p.Username))
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.FullName = strings.TrimSpace(p.FullName)
	switch {
	case p.Username == "":
		return invalidf("username is required")
	case p.Email == "" || !strings.Contains(p.Email, "@"):
		return invalidf("a valid email is required")
	case p.FullName == "":
		return invalidf("full name is required")
	case len(p.Password) < 8:
		return invalidf("password must be at least 8 characters")
	}
	return nil
}

// CreateUser registers a new account. The password is stored as a bcrypt
// hash. Returns ErrUserExists when the username or email is taken.
func (s *Store) CreateUser(ctx context.Context, p RegisterParams) (*models.User, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, full_name, password_hash,
			avatar_url, avatar_storage_id, cover_url, cover_storage_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+userColumns,
		p.Username, p.Email, p.FullName, string(hash),
		p.Avatar.URL, p.Avatar.StorageID, p.Cover.URL, p.Cover.StorageID,
	)
	u, err := scanUser(row)
	if isUniqueViolation(err) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

// Authenticate looks the user up by username or email and verifies the
// password. Returns ErrInvalidCredentials on any mismatch.
func (s *Store) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $1`,
		identifier,
	)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		// burn a bcrypt comparison anyway
		bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// UserByID fetches a single account.
func (s *Store) UserByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return u, nil
}

// SetRefreshToken stores the user's current refresh token.
func (s *Store) SetRefreshToken(ctx context.Context, userID int64, token string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1`,
		userID, token,
	)
	if err != nil {
		return fmt.Errorf("storing refresh token: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ClearRefreshToken invalidates the user's session on logout.
func (s *Store) ClearRefreshToken(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET refresh_token = NULL, updated_at = NOW() WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("clearing refresh token: %w", err)
	}
	return nil
}

// RotateRefreshToken swaps the stored refresh token for next, but only if
// presented matches what is on record. The row is locked for the compare
// so two concurrent refreshes cannot both succeed with the same token.
func (s *Store) RotateRefreshToken(ctx context.Context, userID int64, presented, next string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	var stored sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT refresh_token FROM users WHERE id = $1 FOR UPDATE`,
		userID,
	).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("reading refresh token: %w", err)
	}
	if !stored.Valid || stored.String == "" || stored.String != presented {
		return ErrInvalidRefresh
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1`,
		userID, next,
	); err != nil {
		return fmt.Errorf("rotating refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	tx = nil
	return nil
}

// ChangePassword verifies the current password before writing the new one.
func (s *Store) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if len(next) < 8 {
		return invalidf("password must be at least 8 characters")
	}
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE id = $1`, userID,
	).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("fetching password hash: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	newHash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		userID, string(newHash),
	); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}

// UpdateAccountDetails changes the display name and email.
func (s *Store) UpdateAccountDetails(ctx context.Context, userID int64, fullName, email string) (*models.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return nil, invalidf("full name and email are required")
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET full_name = $2, email = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		userID, fullName, email,
	)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("updating account details: %w", err)
	}
	return u, nil
}

// UpdateAvatar stores a new avatar reference and returns the previous one
// so the caller can delete the old blob.
func (s *Store) UpdateAvatar(ctx context.Context, userID int64, ref models.MediaRef) (models.MediaRef, error) {
	return s.updateUserMedia(ctx, userID, "avatar", ref)
}

// UpdateCoverImage stores a new cover reference and returns the previous
// one so the caller can delete the old blob.
func (s *Store) UpdateCoverImage(ctx context.Context, userID int64, ref models.MediaRef) (models.MediaRef, error) {
	return s.updateUserMedia(ctx, userID, "cover", ref)
}

func (s *Store) updateUserMedia(ctx context.Context, userID int64, prefix string, ref models.MediaRef) (models.MediaRef, error) {
	query := fmt.Sprintf(`
		UPDATE users u SET %[1]s_url = $2, %[1]s_storage_id = $3, updated_at = NOW()
		FROM (SELECT id, %[1]s_url AS old_url, %[1]s_storage_id AS old_id FROM users WHERE id = $1 FOR UPDATE) prev
		WHERE u.id = prev.id
		RETURNING COALESCE(prev.old_url, ''), COALESCE(prev.old_id, '')`,
		prefix,
	)
	var old models.MediaRef
	err := s.db.QueryRowContext(ctx, query, userID, ref.URL, ref.StorageID).
		Scan(&old.URL, &old.StorageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MediaRef{}, ErrUserNotFound
	}
	if err != nil {
		return models.MediaRef{}, fmt.Errorf("updating %s: %w", prefix, err)
	}
	return old, nil
}

// ChannelProfile builds the channel page for username as seen by viewer:
// subscriber counts plus whether the viewer already subscribes.
func (s *Store) ChannelProfile(ctx context.Context, viewerID int64, username string) (*models.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, invalidf("username is required")
	}
	var p models.ChannelProfile
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.email, u.full_name,
			COALESCE(u.avatar_url, ''), COALESCE(u.cover_url, ''),
			(SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id) AS subscriber_count,
			(SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS subscribed_to_count,
			EXISTS(SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = $2) AS is_subscribed
		FROM users u
		WHERE u.username = $1`,
		username, viewerID,
	).Scan(
		&p.ID, &p.Username, &p.Email, &p.FullName,
		&p.Avatar, &p.CoverImage,
		&p.SubscriberCount, &p.SubscribedToCount, &p.IsSubscribed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChannelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching channel profile: %w", err)
	}
	return &p, nil
}

// WatchHistory returns the user's watched videos, most recent first, each
// with its owner summary.
func (s *Store) WatchHistory(ctx context.Context, userID int64) ([]models.VideoFeedItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+videoColumns+`,
			own.id, own.username, own.full_name, COALESCE(own.avatar_url, '')
		FROM watch_history wh
		JOIN videos v ON v.id = wh.video_id
		LEFT JOIN users own ON own.id = v.owner_id
		WHERE wh.user_id = $1
		ORDER BY wh.watched_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching watch history: %w", err)
	}
	defer rows.Close()
	items, _, err := scanVideoFeed(rows)
	return items, err
}

// TouchWatchHistory records that the user watched the video, bumping the
// timestamp on a rewatch.
func (s *Store) TouchWatchHistory(ctx context.Context, userID, videoID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watch_history (user_id, video_id) VALUES ($1, $2)
		ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = NOW()`,
		userID, videoID,
	)
	if err != nil {
		return fmt.Errorf("recording watch history: %w", err)
	}
	return nil
}
