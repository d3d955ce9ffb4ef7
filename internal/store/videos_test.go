package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ayushmaan703/videotube/internal/feed"
)

func videoFeedRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "owner_id", "video_url", "video_storage_id",
		"thumbnail_url", "thumbnail_storage_id", "title", "description",
		"duration", "views", "is_published", "created_at", "updated_at",
		"own_id", "own_username", "own_full_name", "own_avatar",
	})
}

func TestListVideosDefaultFeed(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Now()
	rows := videoFeedRows().
		AddRow(2, 10, "u2", "s2", "t2", "ts2", "second", "", 12.5, 100, true, now, now, 10, "bob", "Bob", "").
		AddRow(1, 0, "u1", "s1", "t1", "ts1", "orphan", "", 8.0, 3, true, now.Add(-time.Hour), now, nil, nil, nil, nil)

	mock.ExpectQuery(`SELECT v\.id, (.+) FROM videos v LEFT JOIN users own ON own\.id = v\.owner_id WHERE v\.is_published = \$1 ORDER BY v\.created_at DESC, v\.id DESC LIMIT \$2`).
		WithArgs(true, 10).
		WillReturnRows(rows)

	page, err := s.ListVideos(context.Background(), feed.Options{})
	if err != nil {
		t.Fatalf("ListVideos: %v", err)
	}
	if len(page.Docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(page.Docs))
	}
	if page.Docs[0].Owner == nil || page.Docs[0].Owner.Username != "bob" {
		t.Fatalf("expected owner summary on first doc, got %+v", page.Docs[0].Owner)
	}
	if page.Docs[1].Owner != nil {
		t.Fatal("expected nil owner for dangling owner reference")
	}
	if page.HasNextPage {
		t.Fatal("short page must not report a next page")
	}
	expectDone(t, mock)
}

func TestListVideosRejectsUnknownSortField(t *testing.T) {
	s, mock := newMockStore(t)

	_, err := s.ListVideos(context.Background(), feed.Options{
		Sort: &feed.Sort{Field: "password_hash", Dir: feed.SortAsc},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	expectDone(t, mock)
}

func TestTogglePublish(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT owner_id FROM videos WHERE id = $1`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(int64(2)))
	mock.ExpectQuery(`UPDATE videos SET is_published = NOT is_published`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"is_published"}).AddRow(true))

	published, err := s.TogglePublish(context.Background(), 2, 5)
	if err != nil {
		t.Fatalf("TogglePublish: %v", err)
	}
	if !published {
		t.Fatal("expected video to be published")
	}
	expectDone(t, mock)
}

func TestTogglePublishForeignVideo(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT owner_id FROM videos WHERE id = $1`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(int64(99)))

	_, err := s.TogglePublish(context.Background(), 2, 5)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	expectDone(t, mock)
}

func TestAddVideoViewsMissingVideo(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE videos SET views = views + $2 WHERE id = $1`)).
		WithArgs(int64(404), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.AddVideoViews(context.Background(), 404, 3)
	if !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound, got %v", err)
	}
	expectDone(t, mock)
}
