package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, ok, err := l.Acquire(ctx, JobCleanup, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.Acquire(ctx, JobCleanup, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// Other jobs are independent.
	other, ok, err := l.Acquire(ctx, JobWeeklyStats, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	other()

	release()
	release()

	again, ok, err := l.Acquire(ctx, JobCleanup, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	again()
}

func TestNewRedisClient_RejectsBadURL(t *testing.T) {
	_, err := NewRedisClient("http://localhost:6379")
	assert.Error(t, err)

	rdb, err := NewRedisClient("redis://:secret@localhost:6379/2")
	require.NoError(t, err)
	defer rdb.Close()
	assert.Equal(t, 2, rdb.Options().DB)
	assert.Equal(t, "secret", rdb.Options().Password)
}
