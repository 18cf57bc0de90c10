package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "walletgate/pkg/domain-errors"
)

func TestMemoryTransient(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTransient()

	_, err := s.Get(ctx, KeyState)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))

	require.NoError(t, s.Set(ctx, KeyState, "abc"))
	got, err := s.Get(ctx, KeyState)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	// Overwrite wins; the next login attempt replaces an abandoned one.
	require.NoError(t, s.Set(ctx, KeyState, "def"))
	got, _ = s.Get(ctx, KeyState)
	assert.Equal(t, "def", got)

	require.NoError(t, s.Delete(ctx, KeyState))
	_, err = s.Get(ctx, KeyState)
	assert.ErrorIs(t, err, ErrNotFound)

	// Delete of a missing key is a no-op, not an error.
	assert.NoError(t, s.Delete(ctx, KeyState))
}

func TestMemoryDurable(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryDurable()

	_, err := s.Get(ctx, KeyTokens)
	assert.ErrorIs(t, err, ErrNotFound)

	payload := []byte(`{"access_token":"AT1"}`)
	require.NoError(t, s.Put(ctx, KeyTokens, payload))

	got, err := s.Get(ctx, KeyTokens)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// The store hands back copies, not aliases.
	got[0] = 'X'
	again, err := s.Get(ctx, KeyTokens)
	require.NoError(t, err)
	assert.Equal(t, payload, again)

	require.NoError(t, s.Delete(ctx, KeyTokens))
	_, err = s.Get(ctx, KeyTokens)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(ctx, KeyTokens))
}
