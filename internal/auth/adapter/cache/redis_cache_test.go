package cache

import (
	"context"
	"testing"
	"time"

	"pass-questions/internal/auth/domain/model"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:         "localhost:6379",
		DB:           15,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available for testing:", err)
	}
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

func TestRedisSessionCache_GetSetInvalidate(t *testing.T) {
	client := createTestRedisClient(t)
	c := NewRedisSessionCache(client, nil)
	ctx := context.Background()

	state, err := c.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Nil(t, state)

	created := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, c.Set(ctx, "uid-1", &model.SessionState{ActiveSessionID: "s1", SessionCreated: &created}, time.Minute))

	state, err = c.Get(ctx, "uid-1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "s1", state.ActiveSessionID)
	assert.True(t, created.Equal(*state.SessionCreated))

	require.NoError(t, c.Invalidate(ctx, "uid-1"))
	state, err = c.Get(ctx, "uid-1")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestRedisSessionCache_RevocationFanOut(t *testing.T) {
	client := createTestRedisClient(t)
	publisher := NewRedisSessionCache(client, nil)
	listener := NewRedisSessionCache(client, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan model.Revocation, 2)
	go func() {
		_ = listener.Subscribe(ctx, func(rev model.Revocation) { received <- rev })
	}()
	go func() {
		_ = publisher.Subscribe(ctx, func(rev model.Revocation) { received <- rev })
	}()
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, publisher.PublishRevocation(ctx, model.Revocation{UID: "uid-1", SessionID: "s1", Reason: model.ReasonAnotherLogin}))

	select {
	case rev := <-received:
		assert.Equal(t, "uid-1", rev.UID)
		assert.Equal(t, publisher.Instance(), rev.Origin)
	case <-ctx.Done():
		t.Fatal("revocation not delivered")
	}

	// the publisher ignores its own message
	select {
	case rev := <-received:
		t.Fatalf("unexpected second delivery: %+v", rev)
	case <-time.After(300 * time.Millisecond):
	}
}
