package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/domain/repository"
	"pass-questions/internal/shared/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	sessionKeyPrefix  = "pq:session:"
	RevocationChannel = "pq:session:revoked"
)

// RedisSessionCache keeps a short-lived copy of each user's session state
// and broadcasts revocations to the other instances over pub/sub.
type RedisSessionCache struct {
	client   *redis.Client
	logger   logger.Logger
	instance string
}

var _ repository.SessionCache = (*RedisSessionCache)(nil)

func NewRedisSessionCache(client *redis.Client, log logger.Logger) *RedisSessionCache {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RedisSessionCache{
		client:   client,
		logger:   log.WithComponent("session-cache"),
		instance: uuid.NewString(),
	}
}

// Instance identifies this process on the revocation channel.
func (c *RedisSessionCache) Instance() string { return c.instance }

// Get returns nil without error on a cache miss.
func (c *RedisSessionCache) Get(ctx context.Context, uid string) (*model.SessionState, error) {
	raw, err := c.client.Get(ctx, sessionKeyPrefix+uid).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state model.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *RedisSessionCache) Set(ctx context.Context, uid string, state *model.SessionState, ttl time.Duration) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionKeyPrefix+uid, raw, ttl).Err()
}

func (c *RedisSessionCache) Invalidate(ctx context.Context, uid string) error {
	return c.client.Del(ctx, sessionKeyPrefix+uid).Err()
}

func (c *RedisSessionCache) PublishRevocation(ctx context.Context, rev model.Revocation) error {
	rev.Origin = c.instance
	payload, err := json.Marshal(rev)
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, RevocationChannel, payload).Err()
}

// Subscribe delivers revocations published by other instances until ctx
// is cancelled.
func (c *RedisSessionCache) Subscribe(ctx context.Context, handle func(model.Revocation)) error {
	sub := c.client.Subscribe(ctx, RevocationChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var rev model.Revocation
			if err := json.Unmarshal([]byte(msg.Payload), &rev); err != nil {
				c.logger.Warn("Dropping malformed revocation", zap.Error(err))
				continue
			}
			if rev.Origin == c.instance {
				continue
			}
			handle(rev)
		}
	}
}

func (c *RedisSessionCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
