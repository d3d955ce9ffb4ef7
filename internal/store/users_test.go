package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

func userRow(id int64, username, email, hash string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "username", "email", "full_name", "password_hash",
		"refresh_token", "avatar_url", "avatar_storage_id",
		"cover_url", "cover_storage_id", "created_at", "updated_at",
	}).AddRow(id, username, email, "Test User", hash, "", "", "", "", "", now, now)
}

func TestCreateUserDuplicate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := s.CreateUser(context.Background(), RegisterParams{
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice",
		Password: "hunter2hunter2",
	})
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	expectDone(t, mock)
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	s, mock := newMockStore(t)

	_, err := s.CreateUser(context.Background(), RegisterParams{
		Username: "alice",
		Email:    "alice@example.com",
		FullName: "Alice",
		Password: "short",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	expectDone(t, mock)
}

func TestAuthenticate(t *testing.T) {
	s, mock := newMockStore(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing test password: %v", err)
	}
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1 OR email = \$1`).
		WithArgs("alice").
		WillReturnRows(userRow(1, "alice", "alice@example.com", string(hash)))

	u, err := s.Authenticate(context.Background(), "Alice", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.ID != 1 || u.Username != "alice" {
		t.Fatalf("unexpected user: %+v", u)
	}
	expectDone(t, mock)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	s, mock := newMockStore(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing test password: %v", err)
	}
	mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1 OR email = \$1`).
		WithArgs("alice").
		WillReturnRows(userRow(1, "alice", "alice@example.com", string(hash)))

	_, err = s.Authenticate(context.Background(), "alice", "not-the-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	expectDone(t, mock)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1 OR email = \$1`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.Authenticate(context.Background(), "nobody", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	expectDone(t, mock)
}

func TestRotateRefreshTokenMismatch(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT refresh_token FROM users WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"refresh_token"}).AddRow("stored-token"))
	mock.ExpectRollback()

	err := s.RotateRefreshToken(context.Background(), 1, "stolen-token", "next-token")
	if !errors.Is(err, ErrInvalidRefresh) {
		t.Fatalf("expected ErrInvalidRefresh, got %v", err)
	}
	expectDone(t, mock)
}

func TestRotateRefreshToken(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT refresh_token FROM users WHERE id = $1 FOR UPDATE`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"refresh_token"}).AddRow("current-token"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1`)).
		WithArgs(int64(1), "next-token").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := s.RotateRefreshToken(context.Background(), 1, "current-token", "next-token"); err != nil {
		t.Fatalf("RotateRefreshToken: %v", err)
	}
	expectDone(t, mock)
}
