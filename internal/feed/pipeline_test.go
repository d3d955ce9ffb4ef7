package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineDefaultOrderAndLimit(t *testing.T) {
	sql, args := NewPipeline("videos v", "v.created_at", "v.id").
		Project("v.id", "v.title").
		Match("v.is_published = TRUE").
		Limit(10).
		Build()

	assert.Equal(t,
		"SELECT v.id, v.title FROM videos v WHERE v.is_published = TRUE "+
			"ORDER BY v.created_at DESC, v.id DESC LIMIT $1",
		sql)
	assert.Equal(t, []any{10}, args)
}

func TestPipelineCanonicalStageOrder(t *testing.T) {
	// Stages composed out of order must still compile to
	// match -> joins -> sort -> limit.
	p := NewPipeline("videos v", "v.created_at", "v.id")
	p.Limit(5)
	p.Join(CountEdges("likes", "video_id", "v.id", "likes_count"))
	p.Project("v.id")
	p.Match("v.owner_id = ?", int64(9))

	sql, args := p.Build()

	assert.Equal(t,
		"SELECT v.id, (SELECT COUNT(*) FROM likes e WHERE e.video_id = v.id) AS likes_count "+
			"FROM videos v WHERE v.owner_id = $1 "+
			"ORDER BY v.created_at DESC, v.id DESC LIMIT $2",
		sql)
	assert.Equal(t, []any{int64(9), 5}, args)
}

func TestPipelineViewerJoinsAndOwnerSummary(t *testing.T) {
	sql, args := NewPipeline("videos v", "v.created_at", "v.id").
		Project("v.id").
		Join(
			CountEdges("likes", "video_id", "v.id", "likes_count"),
			ViewerHasEdge("likes", "video_id", "v.id", "liked_by", 77, "is_liked"),
			OwnerSummary("v.owner_id"),
		).
		Build()

	assert.Contains(t, sql, "EXISTS(SELECT 1 FROM likes e WHERE e.video_id = v.id AND e.liked_by = $1) AS is_liked")
	assert.Contains(t, sql, "LEFT JOIN users own ON own.id = v.owner_id")
	// The owner projection is an allow-list; credential columns are not
	// representable in the output at all.
	assert.Contains(t, sql, "own.id, own.username, own.full_name, own.avatar_url")
	assert.NotContains(t, sql, "password")
	assert.NotContains(t, sql, "refresh_token")
	assert.NotContains(t, sql, "email")
	assert.Equal(t, []any{int64(77)}, args)
}

func TestPipelineCreatedCursorBoundary(t *testing.T) {
	boundary := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	c := CreatedCursor(boundary)

	sql, args := NewPipeline("videos v", "v.created_at", "v.id").
		Project("v.id").
		After(&c).
		Limit(2).
		Build()

	assert.Contains(t, sql, "WHERE v.created_at < $1")
	require.Len(t, args, 2)
	assert.Equal(t, boundary, args[0])
	assert.Equal(t, 2, args[1])
}

func TestPipelineCustomSortSkipsTimestampBoundary(t *testing.T) {
	c := CreatedCursor(time.Now())

	sql, args := NewPipeline("videos v", "v.created_at", "v.id").
		Project("v.id").
		SortBy(&Sort{Field: "v.views", Dir: SortAsc}).
		After(&c).
		Build()

	// An alternate sort field cannot interpret a timestamp boundary, so the
	// cursor is dropped instead of producing a wrong WHERE clause. No
	// tie-break is appended either.
	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, "ORDER BY v.views ASC")
	assert.NotContains(t, sql, "v.id DESC")
	assert.Empty(t, args)
}

func TestPipelineCustomSortOnCreatedKeepsBoundary(t *testing.T) {
	boundary := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	c := CreatedCursor(boundary)

	sql, args := NewPipeline("videos v", "v.created_at", "v.id").
		Project("v.id").
		SortBy(&Sort{Field: "v.created_at", Dir: SortAsc}).
		After(&c).
		Build()

	assert.Contains(t, sql, "WHERE v.created_at > $1")
	assert.Contains(t, sql, "ORDER BY v.created_at ASC")
	assert.Equal(t, []any{boundary}, args)
}

func TestPipelineSearchStage(t *testing.T) {
	sql, args := NewPipeline("videos v", "v.created_at", "v.id").
		Project("v.id").
		Search("synthwave", "v.title", "v.description").
		Limit(10).
		Build()

	assert.Contains(t, sql, "v.title % $1 OR v.description % $2")
	assert.Contains(t, sql, "levenshtein_less_equal(lower(v.title), lower($3), 2) <= 2")
	assert.Contains(t, sql, "GREATEST(similarity(v.title, $4), similarity(v.description, $5)) AS search_rank")
	assert.Contains(t, sql, "ORDER BY search_rank DESC, v.id DESC")
	assert.Equal(t, []any{"synthwave", "synthwave", "synthwave", "synthwave", "synthwave", 10}, args)
}

func TestPipelineRankCursorContinuation(t *testing.T) {
	c := RankCursor(0.5, 41)

	sql, args := NewPipeline("videos v", "v.created_at", "v.id").
		Project("v.id").
		Search("dogs", "v.title").
		After(&c).
		Build()

	// The rank boundary repeats the similarity expression in WHERE since
	// the select alias is not visible there. Equal ranks fall through to
	// the id comparison so page boundaries never drop a tied row.
	assert.Contains(t, sql, "(similarity(v.title, $3) < $4 OR (similarity(v.title, $5) = $6 AND v.id < $7))")
	assert.Equal(t, []any{"dogs", "dogs", "dogs", 0.5, "dogs", 0.5, int64(41), "dogs"}, args)
}

func TestPipelineRankCursorWithoutSearchIgnored(t *testing.T) {
	c := RankCursor(0.5, 41)

	sql, args := NewPipeline("videos v", "v.created_at", "v.id").
		Project("v.id").
		After(&c).
		Build()

	assert.NotContains(t, sql, "WHERE")
	assert.Empty(t, args)
}
