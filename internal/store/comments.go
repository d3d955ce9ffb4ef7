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

const commentColumns = `c.id, COALESCE(c.owner_id, 0), c.video_id, c.content, c.created_at, c.updated_at`

func scanComment(row interface{ Scan(...any) error }) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.OwnerID, &c.VideoID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateComment adds a comment to a video.
func (s *Store) CreateComment(ctx context.Context, ownerID, videoID int64, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidf("content is required")
	}
	if err := s.requireRow(ctx, `SELECT 1 FROM videos WHERE id = $1`, videoID, ErrVideoNotFound); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO comments AS c (owner_id, video_id, content)
		VALUES ($1, $2, $3)
		RETURNING `+commentColumns,
		ownerID, videoID, content,
	)
	c, err := scanComment(row)
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	return c, nil
}

// UpdateComment rewrites a comment's content. Only the author may update.
func (s *Store) UpdateComment(ctx context.Context, ownerID, commentID int64, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidf("content is required")
	}
	if err := s.commentOwnedBy(ctx, ownerID, commentID); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE comments c SET content = $2, updated_at = NOW()
		WHERE c.id = $1
		RETURNING `+commentColumns,
		commentID, content,
	)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating comment: %w", err)
	}
	return c, nil
}

// DeleteComment removes a comment; its likes cascade.
func (s *Store) DeleteComment(ctx context.Context, ownerID, commentID int64) error {
	if err := s.commentOwnedBy(ctx, ownerID, commentID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, commentID); err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	return nil
}

func (s *Store) commentOwnedBy(ctx context.Context, ownerID, commentID int64) error {
	var actual sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT owner_id FROM comments WHERE id = $1`, commentID).Scan(&actual)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("checking comment owner: %w", err)
	}
	if !actual.Valid || actual.Int64 != ownerID {
		return ErrNotOwner
	}
	return nil
}

// VideoComments returns one page of a video's comments, newest first, each
// with its like count, the viewer's like state, and the author summary.
func (s *Store) VideoComments(ctx context.Context, viewerID, videoID int64, limit int, after *feed.Cursor) (feed.Page[models.CommentItem], error) {
	var zero feed.Page[models.CommentItem]
	if err := s.requireRow(ctx, `SELECT 1 FROM videos WHERE id = $1`, videoID, ErrVideoNotFound); err != nil {
		return zero, err
	}

	limit = feed.NormalizeLimit(limit)
	query, args := feed.NewPipeline("comments c", "c.created_at", "c.id").
		Project("c.id", "c.content", "c.created_at").
		Match("c.video_id = ?", videoID).
		Join(
			feed.CountEdges("likes", "comment_id", "c.id", "like_count"),
			feed.ViewerHasEdge("likes", "comment_id", "c.id", "liked_by", viewerID, "is_liked"),
			feed.OwnerSummary("c.owner_id"),
		).
		After(after).
		Limit(limit).
		Build()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return zero, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	var items []models.CommentItem
	for rows.Next() {
		var (
			it       models.CommentItem
			ownerID  sql.NullInt64
			username sql.NullString
			fullName sql.NullString
			avatar   sql.NullString
		)
		err := rows.Scan(
			&it.ID, &it.Content, &it.CreatedAt,
			&it.LikeCount, &it.IsLiked,
			&ownerID, &username, &fullName, &avatar,
		)
		if err != nil {
			return zero, fmt.Errorf("scanning comment row: %w", err)
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
	return feed.NewPage(items, limit, func(it models.CommentItem) feed.Cursor {
		return feed.CreatedCursor(it.CreatedAt)
	}), nil
}
