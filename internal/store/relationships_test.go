package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("creating sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func expectDone(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestToggleVideoLikeCreatesEdge(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM videos WHERE id = $1`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO likes (liked_by, video_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`)).
		WithArgs(int64(7), int64(42)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	active, err := s.ToggleVideoLike(context.Background(), 7, 42)
	if err != nil {
		t.Fatalf("ToggleVideoLike: %v", err)
	}
	if !active {
		t.Fatal("expected like to be active after first toggle")
	}
	expectDone(t, mock)
}

func TestToggleVideoLikeRemovesExistingEdge(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM videos WHERE id = $1`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO likes (liked_by, video_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`)).
		WithArgs(int64(7), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM likes WHERE liked_by = $1 AND video_id = $2`)).
		WithArgs(int64(7), int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	active, err := s.ToggleVideoLike(context.Background(), 7, 42)
	if err != nil {
		t.Fatalf("ToggleVideoLike: %v", err)
	}
	if active {
		t.Fatal("expected like to be inactive after second toggle")
	}
	expectDone(t, mock)
}

func TestToggleVideoLikeMissingVideo(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM videos WHERE id = $1`)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	_, err := s.ToggleVideoLike(context.Background(), 7, 404)
	if !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound, got %v", err)
	}
	expectDone(t, mock)
}

func TestToggleSubscriptionRejectsSelf(t *testing.T) {
	s, mock := newMockStore(t)

	_, err := s.ToggleSubscription(context.Background(), 9, 9)
	if !errors.Is(err, ErrSelfSubscription) {
		t.Fatalf("expected ErrSelfSubscription, got %v", err)
	}
	expectDone(t, mock)
}

func TestToggleSubscriptionCreatesEdge(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM users WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO subscriptions (subscriber_id, channel_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`)).
		WithArgs(int64(9), int64(3)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	active, err := s.ToggleSubscription(context.Background(), 9, 3)
	if err != nil {
		t.Fatalf("ToggleSubscription: %v", err)
	}
	if !active {
		t.Fatal("expected subscription to be active")
	}
	expectDone(t, mock)
}

func TestCountEdges(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`)).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := s.CountEdges(context.Background(), SubscribesTo, 5)
	if err != nil {
		t.Fatalf("CountEdges: %v", err)
	}
	if n != 12 {
		t.Fatalf("expected 12 edges, got %d", n)
	}
	expectDone(t, mock)
}

func TestEdgeExists(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM likes WHERE liked_by = $1 AND video_id = $2)`)).
		WithArgs(int64(7), int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := s.EdgeExists(context.Background(), LikesVideo, 7, 42)
	if err != nil {
		t.Fatalf("EdgeExists: %v", err)
	}
	if !ok {
		t.Fatal("expected edge to exist")
	}
	expectDone(t, mock)
}

func TestTargetsBySubject(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT channel_id FROM subscriptions WHERE subscriber_id = $1 AND channel_id IS NOT NULL ORDER BY created_at DESC`)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"channel_id"}).AddRow(9).AddRow(3))

	ids, err := s.TargetsBySubject(context.Background(), SubscribesTo, 7)
	if err != nil {
		t.Fatalf("TargetsBySubject: %v", err)
	}
	if len(ids) != 2 || ids[0] != 9 || ids[1] != 3 {
		t.Fatalf("expected [9 3], got %v", ids)
	}
	expectDone(t, mock)
}
