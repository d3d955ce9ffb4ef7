package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Predicate identifies one flavor of subject->target edge in the
// relationship tables. The column triples are fixed at compile time so
// they can be interpolated into SQL safely.
type Predicate struct {
	table      string
	subjectCol string
	targetCol  string
}

var (
	LikesVideo   = Predicate{table: "likes", subjectCol: "liked_by", targetCol: "video_id"}
	LikesComment = Predicate{table: "likes", subjectCol: "liked_by", targetCol: "comment_id"}
	LikesTweet   = Predicate{table: "likes", subjectCol: "liked_by", targetCol: "tweet_id"}
	SubscribesTo = Predicate{table: "subscriptions", subjectCol: "subscriber_id", targetCol: "channel_id"}
)

// EdgeExists reports whether subject has an edge of the given predicate
// to target.
func (s *Store) EdgeExists(ctx context.Context, p Predicate, subjectID, targetID int64) (bool, error) {
	query := fmt.Sprintf(
		`SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		p.table, p.subjectCol, p.targetCol,
	)
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, subjectID, targetID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking %s edge: %w", p.table, err)
	}
	return exists, nil
}

// CountEdges returns the number of subjects holding an edge of the given
// predicate to target.
func (s *Store) CountEdges(ctx context.Context, p Predicate, targetID int64) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, p.table, p.targetCol)
	var n int64
	if err := s.db.QueryRowContext(ctx, query, targetID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s edges: %w", p.table, err)
	}
	return n, nil
}

// TargetsBySubject returns the target ids the subject holds edges to,
// newest first.
func (s *Store) TargetsBySubject(ctx context.Context, p Predicate, subjectID int64) ([]int64, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = $1 AND %s IS NOT NULL ORDER BY created_at DESC`,
		p.targetCol, p.table, p.subjectCol, p.targetCol,
	)
	rows, err := s.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("listing %s targets: %w", p.table, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning %s target: %w", p.table, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// toggleEdge atomically flips the edge (subject, target) for a like
// predicate: if absent it is created and true is returned, if present it
// is removed and false is returned. A unique index on the column pair
// makes the insert race-safe; the loser of a concurrent insert observes
// zero affected rows and falls through to the delete branch.
func (s *Store) toggleEdge(ctx context.Context, p Predicate, subjectID, targetID int64) (active bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	insert := fmt.Sprintf(
		`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		p.table, p.subjectCol, p.targetCol,
	)
	res, err := tx.ExecContext(ctx, insert, subjectID, targetID)
	if err != nil {
		return false, fmt.Errorf("inserting %s edge: %w", p.table, err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}

	if inserted == 0 {
		del := fmt.Sprintf(
			`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
			p.table, p.subjectCol, p.targetCol,
		)
		if _, err := tx.ExecContext(ctx, del, subjectID, targetID); err != nil {
			return false, fmt.Errorf("deleting %s edge: %w", p.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing transaction: %w", err)
	}
	tx = nil
	return inserted == 1, nil
}

// requireRow verifies a single-row existence query and maps sql.ErrNoRows
// to the supplied sentinel.
func (s *Store) requireRow(ctx context.Context, query string, id int64, notFound error) error {
	var one int
	err := s.db.QueryRowContext(ctx, query, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	if err != nil {
		return fmt.Errorf("checking existence: %w", err)
	}
	return nil
}
