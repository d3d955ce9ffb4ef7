// Package feed implements the viewer-scoped listing machinery shared by
// every feed endpoint: cursor pagination, the page envelope, and the
// pipeline builder that compiles match/join/sort/project/limit stages into
// a single SQL statement with derived engagement columns.
package feed

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// CursorKind discriminates the two continuation semantics multiplexed
// through one opaque token: a creation-timestamp boundary for plain feeds
// and a relevance-rank boundary for search results.
type CursorKind string

const (
	// CursorCreated continues after a creation timestamp.
	CursorCreated CursorKind = "created"
	// CursorRank continues after a search relevance rank.
	CursorRank CursorKind = "rank"
)

// ErrBadCursor indicates an unparseable continuation token.
var ErrBadCursor = errors.New("malformed pagination cursor")

// Cursor is the decoded continuation point of a previous page.
type Cursor struct {
	Kind      CursorKind `json:"kind"`
	CreatedAt time.Time  `json:"createdAt,omitzero"`
	Rank      float64    `json:"rank,omitempty"`
	ID        int64      `json:"id,omitempty"`
}

// CreatedCursor builds a timestamp-boundary cursor.
func CreatedCursor(t time.Time) Cursor {
	return Cursor{Kind: CursorCreated, CreatedAt: t}
}

// RankCursor builds a search-rank continuation cursor. The document id
// breaks ties between equal ranks so no row is skipped or repeated at a
// page boundary.
func RankCursor(rank float64, id int64) Cursor {
	return Cursor{Kind: CursorRank, Rank: rank, ID: id}
}

// Encode serializes the cursor into the opaque token handed to clients.
func (c Cursor) Encode() string {
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// ParseCursor decodes a client-supplied token. An empty token means "first
// page". Bare RFC 3339 timestamps are accepted as timestamp cursors for
// callers still sending the legacy lastCreatedAt value.
func ParseCursor(raw string) (*Cursor, error) {
	if raw == "" {
		return nil, nil
	}

	if decoded, err := base64.RawURLEncoding.DecodeString(raw); err == nil {
		var c Cursor
		if err := json.Unmarshal(decoded, &c); err == nil && (c.Kind == CursorCreated || c.Kind == CursorRank) {
			return &c, nil
		}
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		c := CreatedCursor(t)
		return &c, nil
	}

	return nil, ErrBadCursor
}
