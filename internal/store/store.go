// Package store implements PostgreSQL-backed persistence for videotube.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors returned by store operations. Callers match them with
// errors.Is to pick a transport-level response.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("refresh token is invalid or expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrChannelNotFound    = errors.New("channel not found")
	ErrVideoNotFound      = errors.New("video not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrTweetNotFound      = errors.New("tweet not found")
	ErrPlaylistNotFound   = errors.New("playlist not found")
	ErrNotOwner           = errors.New("resource is owned by another user")
	ErrSelfSubscription   = errors.New("cannot subscribe to own channel")
	ErrInvalidInput       = errors.New("invalid input")
)

// Store wraps a SQL database handle and exposes videotube persistence
// operations. All methods are safe for concurrent use.
type Store struct {
	db *sql.DB
}

// New returns a Store backed by db.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isCheckViolation reports whether err is a PostgreSQL check constraint
// violation (SQLSTATE 23514).
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
