package lease

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"club-recon/pkg/logger"
)

func TestLocalManager(t *testing.T) {
	m := NewLocalManager()
	ctx := context.Background()

	release, err := m.Acquire(ctx, "club:1", time.Minute)
	require.NoError(t, err)

	_, err = m.Acquire(ctx, "club:1", time.Minute)
	assert.ErrorIs(t, err, ErrHeld)

	_, err = m.Acquire(ctx, "club:2", time.Minute)
	assert.NoError(t, err, "leases are per key")

	release()
	_, err = m.Acquire(ctx, "club:1", time.Minute)
	assert.NoError(t, err)
}

func TestLocalManager_Expires(t *testing.T) {
	m := NewLocalManager()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	_, err := m.Acquire(context.Background(), "k", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	release, err := m.Acquire(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	release()
}

func TestRedisManager_ReleaseFailureIsLogged(t *testing.T) {
	hook := logtest.NewLocal(logger.GetLogger())
	defer hook.Reset()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	m := NewRedisManager(client, "test:")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := m.release(ctx, "test:sync:club:1", "token")
	require.Error(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "test:sync:club:1", entry.Data["lease"])
}
