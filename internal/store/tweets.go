package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ayushmaan703/videotube/internal/feed"
	"github.com/ayushmaan703/videotube/internal/models"
)

const tweetColumns = `t.id, COALESCE(t.owner_id, 0), t.content, t.created_at, t.updated_at`

func scanTweet(row interface{ Scan(...any) error }) (*models.Tweet, error) {
	var t models.Tweet
	err := row.Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTweet posts a new tweet.
func (s *Store) CreateTweet(ctx context.Context, ownerID int64, content string) (*models.Tweet, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidf("content is required")
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO tweets AS t (owner_id, content)
		VALUES ($1, $2)
		RETURNING `+tweetColumns,
		ownerID, content,
	)
	t, err := scanTweet(row)
	if err != nil {
		return nil, fmt.Errorf("creating tweet: %w", err)
	}
	return t, nil
}

// UpdateTweet rewrites a tweet's content. Only the author may update.
func (s *Store) UpdateTweet(ctx context.Context, ownerID, tweetID int64, content string) (*models.Tweet, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidf("content is required")
	}
	if err := s.tweetOwnedBy(ctx, ownerID, tweetID); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE tweets t SET content = $2, updated_at = NOW()
		WHERE t.id = $1
		RETURNING `+tweetColumns,
		tweetID, content,
	)
	t, err := scanTweet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTweetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating tweet: %w", err)
	}
	return t, nil
}

// DeleteTweet removes a tweet; its likes cascade.
func (s *Store) DeleteTweet(ctx context.Context, ownerID, tweetID int64) error {
	if err := s.tweetOwnedBy(ctx, ownerID, tweetID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tweets WHERE id = $1`, tweetID); err != nil {
		return fmt.Errorf("deleting tweet: %w", err)
	}
	return nil
}

func (s *Store) tweetOwnedBy(ctx context.Context, ownerID, tweetID int64) error {
	var actual sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT owner_id FROM tweets WHERE id = $1`, tweetID).Scan(&actual)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTweetNotFound
	}
	if err != nil {
		return fmt.Errorf("checking tweet owner: %w", err)
	}
	if !actual.Valid || actual.Int64 != ownerID {
		return ErrNotOwner
	}
	return nil
}

// UserTweets returns one page of a user's tweets, newest first, each with
// its like count, the viewer's like state, and the author summary.
func (s *Store) UserTweets(ctx context.Context, viewerID, userID int64, limit int, after *feed.Cursor) (feed.Page[models.TweetItem], error) {
	var zero feed.Page[models.TweetItem]
	if err := s.requireRow(ctx, `SELECT 1 FROM users WHERE id = $1`, userID, ErrUserNotFound); err != nil {
		return zero, err
	}

	limit = feed.NormalizeLimit(limit)
	query, args := feed.NewPipeline("tweets t", "t.created_at", "t.id").
		Project("t.id", "t.content", "t.created_at").
		Match("t.owner_id = ?", userID).
		Join(
			feed.CountEdges("likes", "tweet_id", "t.id", "likes"),
			feed.ViewerHasEdge("likes", "tweet_id", "t.id", "liked_by", viewerID, "is_liked"),
			feed.OwnerSummary("t.owner_id"),
		).
		After(after).
		Limit(limit).
		Build()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return zero, fmt.Errorf("listing tweets: %w", err)
	}
	defer rows.Close()

	var items []models.TweetItem
	for rows.Next() {
		var (
			it       models.TweetItem
			ownerID  sql.NullInt64
			username sql.NullString
			fullName sql.NullString
			avatar   sql.NullString
		)
		err := rows.Scan(
			&it.ID, &it.Content, &it.CreatedAt,
			&it.Likes, &it.IsLiked,
			&ownerID, &username, &fullName, &avatar,
		)
		if err != nil {
			return zero, fmt.Errorf("scanning tweet row: %w", err)
		}
		if ownerID.Valid {
			it.Owner = &models.OwnerSummary{
				ID:       ownerID.Int64,
				Username: username.String,
				FullName: fullName.String,
				Avatar:   avatar.String,
			}
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return zero, err
	}
	return feed.NewPage(items, limit, func(it models.TweetItem) feed.Cursor {
		return feed.CreatedCursor(it.CreatedAt)
	}), nil
}
