package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ayushmaan703/videotube/internal/feed"
)

func likedVideoRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_id", "video_url", "video_storage_id",
		"thumbnail_url", "thumbnail_storage_id", "title", "description",
		"duration", "views", "is_published", "created_at", "updated_at",
		"own_id", "own_username", "own_full_name", "own_avatar",
		"liked_at",
	})
}

func TestLikedVideosCursorBoundToLikeTime(t *testing.T) {
	s, mock := newMockStore(t)

	uploaded := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	liked := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	rows := likedVideoRows().
		AddRow(5, 10, "u5", "s5", "t5", "ts5", "old upload", "", 30.0, 900, true,
			uploaded, uploaded, 10, "bob", "Bob", "", liked)

	mock.ExpectQuery(`SELECT v\.id, (.+), l\.created_at FROM likes l JOIN videos v ON v\.id = l\.video_id LEFT JOIN users own ON own\.id = v\.owner_id WHERE l\.liked_by = \$1 AND l\.video_id IS NOT NULL ORDER BY l\.created_at DESC LIMIT \$2`).
		WithArgs(int64(7), 1).
		WillReturnRows(rows)

	page, err := s.LikedVideos(context.Background(), 7, 1, nil)
	if err != nil {
		t.Fatalf("LikedVideos: %v", err)
	}
	if !page.HasNextPage {
		t.Fatal("full page must report a next page")
	}
	cur, err := feed.ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("parsing next cursor: %v", err)
	}
	if !cur.CreatedAt.Equal(liked) {
		t.Fatalf("cursor must carry the like timestamp %v, got %v", liked, cur.CreatedAt)
	}
	if cur.CreatedAt.Equal(uploaded) {
		t.Fatal("cursor must not be derived from the video's creation time")
	}
	expectDone(t, mock)
}

func TestLikedVideosContinuesAfterCursor(t *testing.T) {
	s, mock := newMockStore(t)

	boundary := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM likes l JOIN videos v (.+) WHERE l\.liked_by = \$1 AND l\.video_id IS NOT NULL AND l\.created_at < \$2 ORDER BY l\.created_at DESC LIMIT \$3`).
		WithArgs(int64(7), boundary, 10).
		WillReturnRows(likedVideoRows())

	after := feed.CreatedCursor(boundary)
	page, err := s.LikedVideos(context.Background(), 7, 0, &after)
	if err != nil {
		t.Fatalf("LikedVideos: %v", err)
	}
	if len(page.Docs) != 0 || page.HasNextPage {
		t.Fatalf("expected empty final page, got %+v", page)
	}
	expectDone(t, mock)
}
