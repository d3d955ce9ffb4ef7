package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintAndVerifyPair(t *testing.T) {
	m := NewManager("test-secret-at-least-16", time.Minute, time.Hour)

	pair, err := m.MintPair(42)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	userID, err := m.Verify(pair.AccessToken, Access)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	userID, err = m.Verify(pair.RefreshToken, Refresh)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	m := NewManager("test-secret-at-least-16", time.Minute, time.Hour)

	pair, err := m.MintPair(7)
	require.NoError(t, err)

	_, err = m.Verify(pair.AccessToken, Refresh)
	assert.ErrorIs(t, err, ErrWrongKind)

	_, err = m.Verify(pair.RefreshToken, Access)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	m := NewManager("test-secret-at-least-16", time.Minute, time.Hour)
	other := NewManager("another-secret-entirely", time.Minute, time.Hour)

	pair, err := other.MintPair(7)
	require.NoError(t, err)

	_, err = m.Verify(pair.AccessToken, Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewManager("test-secret-at-least-16", -time.Minute, time.Hour)

	pair, err := m.MintPair(7)
	require.NoError(t, err)

	_, err = m.Verify(pair.AccessToken, Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("test-secret-at-least-16", time.Minute, time.Hour)

	_, err := m.Verify("not-a-token", Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
