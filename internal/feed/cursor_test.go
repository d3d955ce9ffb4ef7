package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	created := CreatedCursor(time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC))
	parsed, err := ParseCursor(created.Encode())
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, CursorCreated, parsed.Kind)
	assert.True(t, parsed.CreatedAt.Equal(created.CreatedAt))

	rank := RankCursor(0.4375, 91)
	parsed, err = ParseCursor(rank.Encode())
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, CursorRank, parsed.Kind)
	assert.Equal(t, 0.4375, parsed.Rank)
	assert.Equal(t, int64(91), parsed.ID)
}

func TestParseCursorEmpty(t *testing.T) {
	parsed, err := ParseCursor("")
	require.NoError(t, err)
	assert.Nil(t, parsed)
}

func TestParseCursorLegacyTimestamp(t *testing.T) {
	parsed, err := ParseCursor("2024-05-01T12:30:00Z")
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, CursorCreated, parsed.Kind)
	assert.True(t, parsed.CreatedAt.Equal(time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)))
}

func TestParseCursorGarbage(t *testing.T) {
	_, err := ParseCursor("definitely;;not//a cursor")
	assert.ErrorIs(t, err, ErrBadCursor)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, 25, NormalizeLimit(25))
}

func TestNewPageEnvelope(t *testing.T) {
	type doc struct{ at time.Time }
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	docs := []doc{
		{at: now.Add(2 * time.Hour)},
		{at: now.Add(time.Hour)},
	}
	last := func(d doc) Cursor { return CreatedCursor(d.at) }

	// Exactly full page: cursor points at the last doc, hasNextPage true
	// even if nothing follows. That over-report is the documented contract.
	page := NewPage(docs, 2, last)
	assert.True(t, page.HasNextPage)
	parsed, err := ParseCursor(page.NextCursor)
	require.NoError(t, err)
	assert.True(t, parsed.CreatedAt.Equal(now.Add(time.Hour)))

	// Short page: more pages cannot exist.
	page = NewPage(docs, 5, last)
	assert.False(t, page.HasNextPage)

	// Empty page: no cursor at all.
	page = NewPage(nil, 2, last)
	assert.False(t, page.HasNextPage)
	assert.Empty(t, page.NextCursor)
}
