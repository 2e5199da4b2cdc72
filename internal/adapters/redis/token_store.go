package redis

// Package redis provides Redis-based adapters for the session core's durable
// key-value ports.

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/modernstarter/sessionkit/internal/ports"
)

var (
	_ ports.TokenStore = (*TokenStore)(nil)
	_ ports.KeyValue   = (*KeyValue)(nil)
)

// TokenStore persists the access/refresh token pair under fixed, configured
// key names. Clear issues a single DEL covering both keys, so the pair is
// removed as one logical operation.
type TokenStore struct {
	client     redis.UniversalClient
	accessKey  string
	refreshKey string
}

// NewTokenStore creates a Redis-based token store using the given key names.
func NewTokenStore(client redis.UniversalClient, accessKey, refreshKey string) (*TokenStore, error) {
	if accessKey == "" || refreshKey == "" {
		return nil, errors.New("token key names are required")
	}
	if accessKey == refreshKey {
		return nil, fmt.Errorf("access and refresh keys must differ: %q", accessKey)
	}
	return &TokenStore{
		client:     client,
		accessKey:  accessKey,
		refreshKey: refreshKey,
	}, nil
}

func (s *TokenStore) Access(ctx context.Context) (string, error) {
	return s.get(ctx, s.accessKey)
}

func (s *TokenStore) Refresh(ctx context.Context) (string, error) {
	return s.get(ctx, s.refreshKey)
}

func (s *TokenStore) SetAccess(ctx context.Context, token string) error {
	return s.set(ctx, s.accessKey, token)
}

func (s *TokenStore) SetRefresh(ctx context.Context, token string) error {
	return s.set(ctx, s.refreshKey, token)
}

// Clear removes both tokens with one command.
func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.accessKey, s.refreshKey).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *TokenStore) get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

func (s *TokenStore) set(ctx context.Context, key, token string) error {
	if token == "" {
		return fmt.Errorf("token for %s cannot be empty", key)
	}
	if err := s.client.Set(ctx, key, token, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// KeyValue exposes the raw medium for preference storage (theme mode and the
// like) under a shared prefix.
type KeyValue struct {
	client redis.UniversalClient
	prefix string
}

// NewKeyValue creates a prefix-scoped Redis key-value adapter.
func NewKeyValue(client redis.UniversalClient, prefix string) *KeyValue {
	return &KeyValue{client: client, prefix: prefix}
}

func (kv *KeyValue) Get(ctx context.Context, key string) (string, error) {
	value, err := kv.client.Get(ctx, kv.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

func (kv *KeyValue) Set(ctx context.Context, key, value string) error {
	if err := kv.client.Set(ctx, kv.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (kv *KeyValue) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, kv.prefix+key)
	}
	if err := kv.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
