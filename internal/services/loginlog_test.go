package services

import (
	"context"
	"testing"
	"time"

	"parish-backend-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginLog_OpenAndClose(t *testing.T) {
	s := store.NewMemoryStore()
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	logs := NewLoginLog(s, nil, clock)
	ctx := context.Background()

	require.NoError(t, logs.Open(ctx, "Admin@Example.com", "Admin"))
	now = now.Add(90 * time.Second)
	require.NoError(t, logs.Open(ctx, "admin@example.com", "Admin"))
	now = now.Add(125*time.Second + 700*time.Millisecond)

	closed, err := logs.Close(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	assert.True(t, closed)

	entries := logs.List(ctx)
	require.Len(t, entries, 2)
	assert.Nil(t, entries[0].LogoutTime)
	require.NotNil(t, entries[1].LogoutTime)
	require.NotNil(t, entries[1].DurationSeconds)
	assert.Equal(t, int64(125), *entries[1].DurationSeconds)

	closed, err = logs.Close(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.True(t, closed)
	entries = logs.List(ctx)
	assert.NotNil(t, entries[0].LogoutTime)

	closed, err = logs.Close(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.False(t, closed)
}

func TestLoginLog_CloseIgnoresOtherEmails(t *testing.T) {
	s := store.NewMemoryStore()
	logs := NewLoginLog(s, nil, nil)
	ctx := context.Background()

	require.NoError(t, logs.Open(ctx, "one@example.com", "One"))
	closed, err := logs.Close(ctx, "two@example.com")
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Nil(t, logs.List(ctx)[0].LogoutTime)
}
