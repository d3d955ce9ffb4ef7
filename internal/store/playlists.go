package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ayushmaan703/videotube/internal/models"
)

const playlistColumns = `p.id, p.owner_id, p.name, p.description, p.created_at, p.updated_at`

func scanPlaylist(row interface{ Scan(...any) error }) (*models.Playlist, error) {
	var p models.Playlist
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlaylist creates an empty playlist.
func (s *Store) CreatePlaylist(ctx context.Context, ownerID int64, name, description string) (*models.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("name is required")
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO playlists AS p (owner_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING `+playlistColumns,
		ownerID, name, strings.TrimSpace(description),
	)
	p, err := scanPlaylist(row)
	if err != nil {
		return nil, fmt.Errorf("creating playlist: %w", err)
	}
	return p, nil
}

// UpdatePlaylist renames a playlist. Only the owner may update.
func (s *Store) UpdatePlaylist(ctx context.Context, ownerID, playlistID int64, name, description string) (*models.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidf("name is required")
	}
	if err := s.playlistOwnedBy(ctx, ownerID, playlistID); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE playlists p SET name = $2, description = $3, updated_at = NOW()
		WHERE p.id = $1
		RETURNING `+playlistColumns,
		playlistID, name, strings.TrimSpace(description),
	)
	p, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating playlist: %w", err)
	}
	return p, nil
}

// DeletePlaylist removes a playlist and its membership rows.
func (s *Store) DeletePlaylist(ctx context.Context, ownerID, playlistID int64) error {
	if err := s.playlistOwnedBy(ctx, ownerID, playlistID); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, playlistID); err != nil {
		return fmt.Errorf("deleting playlist: %w", err)
	}
	return nil
}

func (s *Store) playlistOwnedBy(ctx context.Context, ownerID, playlistID int64) error {
	var actual int64
	err := s.db.QueryRowContext(ctx, `SELECT owner_id FROM playlists WHERE id = $1`, playlistID).Scan(&actual)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlaylistNotFound
	}
	if err != nil {
		return fmt.Errorf("checking playlist owner: %w", err)
	}
	if actual != ownerID {
		return ErrNotOwner
	}
	return nil
}

// AddVideoToPlaylist adds a video to the playlist. Membership is a set:
// adding an already-present video is a no-op, not an error.
func (s *Store) AddVideoToPlaylist(ctx context.Context, ownerID, playlistID, videoID int64) error {
	if err := s.playlistOwnedBy(ctx, ownerID, playlistID); err != nil {
		return err
	}
	if err := s.requireRow(ctx, `SELECT 1 FROM videos WHERE id = $1`, videoID, ErrVideoNotFound); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO playlist_videos (playlist_id, video_id) VALUES ($1, $2)
		ON CONFLICT (playlist_id, video_id) DO NOTHING`,
		playlistID, videoID,
	)
	if err != nil {
		return fmt.Errorf("adding playlist video: %w", err)
	}
	return nil
}

// RemoveVideoFromPlaylist drops a video from the playlist.
func (s *Store) RemoveVideoFromPlaylist(ctx context.Context, ownerID, playlistID, videoID int64) error {
	if err := s.playlistOwnedBy(ctx, ownerID, playlistID); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM playlist_videos WHERE playlist_id = $1 AND video_id = $2`,
		playlistID, videoID,
	)
	if err != nil {
		return fmt.Errorf("removing playlist video: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVideoNotFound
	}
	return nil
}

// UserPlaylists lists a user's playlists with their video counts and the
// thumbnail of the most recently added video.
func (s *Store) UserPlaylists(ctx context.Context, userID int64) ([]models.PlaylistSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+playlistColumns+`,
			(SELECT COUNT(*) FROM playlist_videos pv WHERE pv.playlist_id = p.id) AS total_videos,
			COALESCE((
				SELECT v.thumbnail_url FROM playlist_videos pv
				JOIN videos v ON v.id = pv.video_id
				WHERE pv.playlist_id = p.id
				ORDER BY pv.added_at DESC
				LIMIT 1
			), '') AS thumbnail
		FROM playlists p
		WHERE p.owner_id = $1
		ORDER BY p.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing playlists: %w", err)
	}
	defer rows.Close()

	var items []models.PlaylistSummary
	for rows.Next() {
		var it models.PlaylistSummary
		err := rows.Scan(
			&it.ID, &it.OwnerID, &it.Name, &it.Description, &it.CreatedAt, &it.UpdatedAt,
			&it.TotalVideos, &it.Thumbnail,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning playlist row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// PlaylistDetail fetches one playlist with its videos in addition order,
// each carrying its owner summary.
func (s *Store) PlaylistDetail(ctx context.Context, playlistID int64) (*models.PlaylistDetail, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+playlistColumns+` FROM playlists p WHERE p.id = $1`, playlistID)
	p, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching playlist: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+videoColumns+`,
			own.id, own.username, own.full_name, COALESCE(own.avatar_url, '')
		FROM playlist_videos pv
		JOIN videos v ON v.id = pv.video_id
		LEFT JOIN users own ON own.id = v.owner_id
		WHERE pv.playlist_id = $1
		ORDER BY pv.added_at ASC`,
		playlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing playlist videos: %w", err)
	}
	defer rows.Close()

	feedItems, _, err := scanVideoFeed(rows)
	if err != nil {
		return nil, err
	}
	videos := make([]models.PlaylistVideo, 0, len(feedItems))
	for _, it := range feedItems {
		videos = append(videos, models.PlaylistVideo{Video: it.Video, Owner: it.Owner})
	}
	return &models.PlaylistDetail{
		Playlist:    *p,
		TotalVideos: int64(len(videos)),
		Videos:      videos,
	}, nil
}
