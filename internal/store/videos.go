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

// videoProjection is the base video column set, kept as a slice so feed
// pipelines can reuse it as their projection stage.
var videoProjection = []string{
	"v.id", "COALESCE(v.owner_id, 0)",
	"v.video_url", "v.video_storage_id", "v.thumbnail_url", "v.thumbnail_storage_id",
	"v.title", "v.description", "v.duration", "v.views", "v.is_published",
	"v.created_at", "v.updated_at",
}

var videoColumns = strings.Join(videoProjection, ", ")

func scanVideo(row interface{ Scan(...any) error }) (*models.Video, error) {
	var v models.Video
	err := row.Scan(
		&v.ID, &v.OwnerID,
		&v.VideoFile.URL, &v.VideoFile.StorageID,
		&v.Thumbnail.URL, &v.Thumbnail.StorageID,
		&v.Title, &v.Description, &v.Duration, &v.Views, &v.IsPublished,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// scanVideoFeed consumes rows of videoColumns followed by the owner summary
// columns and optionally a trailing search rank. A NULL owner id collapses
// the whole summary to nil rather than an empty struct.
func scanVideoItem(rows *sql.Rows, extra ...any) (models.VideoFeedItem, error) {
	var (
		item     models.VideoFeedItem
		ownerID  sql.NullInt64
		username sql.NullString
		fullName sql.NullString
		avatar   sql.NullString
	)
	dest := []any{
		&item.ID, &item.OwnerID,
		&item.VideoFile.URL, &item.VideoFile.StorageID,
		&item.Thumbnail.URL, &item.Thumbnail.StorageID,
		&item.Title, &item.Description, &item.Duration, &item.Views, &item.IsPublished,
		&item.CreatedAt, &item.UpdatedAt,
		&ownerID, &username, &fullName, &avatar,
	}
	dest = append(dest, extra...)
	if err := rows.Scan(dest...); err != nil {
		return item, fmt.Errorf("scanning video row: %w", err)
	}
	if ownerID.Valid {
		item.Owner = &models.OwnerSummary{
			ID:       ownerID.Int64,
			Username: username.String,
			FullName: fullName.String,
			Avatar:   avatar.String,
		}
	}
	return item, nil
}

func scanVideoFeed(rows *sql.Rows, withRank ...bool) ([]models.VideoFeedItem, []float64, error) {
	rank := len(withRank) > 0 && withRank[0]
	var (
		items []models.VideoFeedItem
		ranks []float64
	)
	for rows.Next() {
		var (
			item models.VideoFeedItem
			r    float64
			err  error
		)
		if rank {
			item, err = scanVideoItem(rows, &r)
		} else {
			item, err = scanVideoItem(rows)
		}
		if err != nil {
			return nil, nil, err
		}
		items = append(items, item)
		if rank {
			ranks = append(ranks, r)
		}
	}
	return items, ranks, rows.Err()
}

// VideoDraft carries a new upload.
type VideoDraft struct {
	OwnerID     int64
	VideoFile   models.MediaRef
	Thumbnail   models.MediaRef
	Title       string
	Description string
	Duration    float64
}

func (d *VideoDraft) validate() error {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	switch {
	case d.Title == "":
		return invalidf("title is required")
	case d.VideoFile.URL == "":
		return invalidf("video file is required")
	case d.Thumbnail.URL == "":
		return invalidf("thumbnail is required")
	}
	return nil
}

// CreateVideo inserts a new video owned by d.OwnerID. Videos start
// unpublished.
func (s *Store) CreateVideo(ctx context.Context, d VideoDraft) (*models.Video, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO videos AS v (owner_id, video_url, video_storage_id,
			thumbnail_url, thumbnail_storage_id, title, description, duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+videoColumns,
		d.OwnerID, d.VideoFile.URL, d.VideoFile.StorageID,
		d.Thumbnail.URL, d.Thumbnail.StorageID,
		d.Title, d.Description, d.Duration,
	)
	v, err := scanVideo(row)
	if err != nil {
		return nil, fmt.Errorf("creating video: %w", err)
	}
	return v, nil
}

// VideoByID fetches one video without derived fields.
func (s *Store) VideoByID(ctx context.Context, id int64) (*models.Video, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+videoColumns+` FROM videos v WHERE v.id = $1`, id)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching video: %w", err)
	}
	return v, nil
}

// VideoDetail fetches one video with its like state for the viewer and the
// owning channel's subscription state.
func (s *Store) VideoDetail(ctx context.Context, viewerID, videoID int64) (*models.VideoDetail, error) {
	var (
		d        models.VideoDetail
		ownerID  sql.NullInt64
		username sql.NullString
		fullName sql.NullString
		avatar   sql.NullString
		subCount sql.NullInt64
		isSubbed sql.NullBool
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT `+videoColumns+`,
			(SELECT COUNT(*) FROM likes e WHERE e.video_id = v.id) AS likes_count,
			EXISTS(SELECT 1 FROM likes e WHERE e.video_id = v.id AND e.liked_by = $2) AS is_liked,
			own.id, own.username, own.full_name, COALESCE(own.avatar_url, ''),
			(SELECT COUNT(*) FROM subscriptions sub WHERE sub.channel_id = own.id) AS subscriber_count,
			EXISTS(SELECT 1 FROM subscriptions sub WHERE sub.channel_id = own.id AND sub.subscriber_id = $2) AS is_subscribed
		FROM videos v
		LEFT JOIN users own ON own.id = v.owner_id
		WHERE v.id = $1`,
		videoID, viewerID,
	).Scan(
		&d.ID, &d.OwnerID,
		&d.VideoFile.URL, &d.VideoFile.StorageID,
		&d.Thumbnail.URL, &d.Thumbnail.StorageID,
		&d.Title, &d.Description, &d.Duration, &d.Views, &d.IsPublished,
		&d.CreatedAt, &d.UpdatedAt,
		&d.LikesCount, &d.IsLiked,
		&ownerID, &username, &fullName, &avatar,
		&subCount, &isSubbed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching video detail: %w", err)
	}
	if ownerID.Valid {
		d.Owner = &models.ChannelSummary{
			OwnerSummary: models.OwnerSummary{
				ID:       ownerID.Int64,
				Username: username.String,
				FullName: fullName.String,
				Avatar:   avatar.String,
			},
			SubscriberCount: subCount.Int64,
			IsSubscribed:    isSubbed.Bool,
		}
	}
	return &d, nil
}

// videoSortFields maps API sort-field names onto sortable columns. Anything
// else is rejected before reaching SQL.
var videoSortFields = map[string]string{
	"createdAt": "v.created_at",
	"views":     "v.views",
	"duration":  "v.duration",
	"title":     "v.title",
}

// ListVideos returns one page of published videos. A search query switches
// the feed to fuzzy relevance order; an owner id scopes it to one channel.
func (s *Store) ListVideos(ctx context.Context, opts feed.Options) (feed.Page[models.VideoFeedItem], error) {
	var zero feed.Page[models.VideoFeedItem]

	limit := feed.NormalizeLimit(opts.Limit)
	p := feed.NewPipeline("videos v", "v.created_at", "v.id").
		Project(videoProjection...).
		Match("v.is_published = ?", true).
		Join(feed.OwnerSummary("v.owner_id")).
		After(opts.After).
		Limit(limit)
	if opts.OwnerID != 0 {
		p.Match("v.owner_id = ?", opts.OwnerID)
	}
	if opts.Query != "" {
		p.Search(opts.Query, "v.title", "v.description")
	}
	if opts.Sort != nil {
		col, ok := videoSortFields[opts.Sort.Field]
		if !ok {
			return zero, invalidf("unsupported sort field %q", opts.Sort.Field)
		}
		p.SortBy(&feed.Sort{Field: col, Dir: opts.Sort.Dir})
	}

	query, args := p.Build()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return zero, fmt.Errorf("listing videos: %w", err)
	}
	defer rows.Close()

	items, ranks, err := scanVideoFeed(rows, opts.Query != "")
	if err != nil {
		return zero, err
	}
	if opts.Query != "" {
		return feed.NewPage(items, limit, func(it models.VideoFeedItem) feed.Cursor {
			return feed.RankCursor(ranks[len(ranks)-1], it.ID)
		}), nil
	}
	return feed.NewPage(items, limit, func(it models.VideoFeedItem) feed.Cursor {
		return feed.CreatedCursor(it.CreatedAt)
	}), nil
}

// videoOwnedBy verifies the video exists and belongs to ownerID.
func (s *Store) videoOwnedBy(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, ownerID, videoID int64,
) error {
	var actual sql.NullInt64
	err := q.QueryRowContext(ctx, `SELECT owner_id FROM videos WHERE id = $1`, videoID).Scan(&actual)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrVideoNotFound
	}
	if err != nil {
		return fmt.Errorf("checking video owner: %w", err)
	}
	if !actual.Valid || actual.Int64 != ownerID {
		return ErrNotOwner
	}
	return nil
}

// UpdateVideoDetails changes title and description. Only the owner may
// update.
func (s *Store) UpdateVideoDetails(ctx context.Context, ownerID, videoID int64, title, description string) (*models.Video, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, invalidf("title is required")
	}
	if err := s.videoOwnedBy(ctx, s.db, ownerID, videoID); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE videos v SET title = $2, description = $3, updated_at = NOW()
		WHERE v.id = $1
		RETURNING `+videoColumns,
		videoID, title, strings.TrimSpace(description),
	)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating video: %w", err)
	}
	return v, nil
}

// UpdateVideoThumbnail swaps the thumbnail reference and returns the old
// one for blob cleanup.
func (s *Store) UpdateVideoThumbnail(ctx context.Context, ownerID, videoID int64, ref models.MediaRef) (models.MediaRef, error) {
	if err := s.videoOwnedBy(ctx, s.db, ownerID, videoID); err != nil {
		return models.MediaRef{}, err
	}
	var old models.MediaRef
	err := s.db.QueryRowContext(ctx, `
		UPDATE videos v SET thumbnail_url = $2, thumbnail_storage_id = $3, updated_at = NOW()
		FROM (SELECT id, thumbnail_url AS old_url, thumbnail_storage_id AS old_id FROM videos WHERE id = $1 FOR UPDATE) prev
		WHERE v.id = prev.id
		RETURNING prev.old_url, prev.old_id`,
		videoID, ref.URL, ref.StorageID,
	).Scan(&old.URL, &old.StorageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.MediaRef{}, ErrVideoNotFound
	}
	if err != nil {
		return models.MediaRef{}, fmt.Errorf("updating thumbnail: %w", err)
	}
	return old, nil
}

// DeleteVideo removes the video row; likes, comments, playlist entries and
// watch history rows cascade. The deleted record is returned so the caller
// can clean up the stored media.
func (s *Store) DeleteVideo(ctx context.Context, ownerID, videoID int64) (*models.Video, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	if err := s.videoOwnedBy(ctx, tx, ownerID, videoID); err != nil {
		return nil, err
	}
	row := tx.QueryRowContext(ctx,
		`DELETE FROM videos v WHERE v.id = $1 RETURNING `+videoColumns, videoID)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("deleting video: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	tx = nil
	return v, nil
}

// TogglePublish flips the publish flag and returns the new state.
func (s *Store) TogglePublish(ctx context.Context, ownerID, videoID int64) (bool, error) {
	if err := s.videoOwnedBy(ctx, s.db, ownerID, videoID); err != nil {
		return false, err
	}
	var published bool
	err := s.db.QueryRowContext(ctx, `
		UPDATE videos SET is_published = NOT is_published, updated_at = NOW()
		WHERE id = $1
		RETURNING is_published`,
		videoID,
	).Scan(&published)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrVideoNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggling publish state: %w", err)
	}
	return published, nil
}

// AddVideoViews bumps the persisted view counter by delta. Used both for
// the direct (cache-less) path and for draining the cache.
func (s *Store) AddVideoViews(ctx context.Context, videoID, delta int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE videos SET views = views + $2 WHERE id = $1`, videoID, delta)
	if err != nil {
		return fmt.Errorf("adding video views: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVideoNotFound
	}
	return nil
}
