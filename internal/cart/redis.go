package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Kishore-028/KoreConnect/internal/domain"
)

func NewRedisPersister(client *redis.Client) *RedisPersister {
	return &RedisPersister{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisPersister struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisPersister) Save(ctx context.Context, sessionID string, snap domain.CartSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter
	if err := r.client.Set(ctx, cartKey(sessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisPersister) Load(ctx context.Context, sessionID string) (domain.CartSnapshot, error) {
	data, err := r.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CartSnapshot{}, ErrNoSavedCart
	}
	if err != nil {
		return domain.CartSnapshot{}, fmt.Errorf("redis get failed: %w", err)
	}

	var snap domain.CartSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.CartSnapshot{}, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return snap, nil
}

func (r *RedisPersister) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
