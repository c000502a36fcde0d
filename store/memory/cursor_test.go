package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorStore(t *testing.T) {
	s := NewCursorStore()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return at }
	ctx := context.Background()

	_, ok, err := s.Load(ctx, "payments")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, "payments", "100"))
	require.NoError(t, s.Save(ctx, "payments", ""))
	cursor, ok, err := s.Load(ctx, "payments")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "100", cursor)

	updated, ok := s.UpdatedAt("payments")
	assert.True(t, ok)
	assert.Equal(t, at, updated)

	save := s.Saver("other")
	require.NoError(t, save("7"))
	cursor, _, _ = s.Load(ctx, "other")
	assert.Equal(t, "7", cursor)
	cursor, _, _ = s.Load(ctx, "payments")
	assert.Equal(t, "100", cursor)
}

func TestCursorStoreHonoursContext(t *testing.T) {
	s := NewCursorStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Save(ctx, "payments", "1"), context.Canceled)
	_, _, err := s.Load(ctx, "payments")
	assert.ErrorIs(t, err, context.Canceled)
}
