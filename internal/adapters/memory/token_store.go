package memory

// Package memory provides in-process adapters for the durable KV ports,
// used by tests and by the CLI when Redis is disabled.

import (
	"context"
	"sync"

	"github.com/modernstarter/sessionkit/internal/ports"
)

var (
	_ ports.TokenStore = (*TokenStore)(nil)
	_ ports.KeyValue   = (*KeyValue)(nil)
)

// TokenStore keeps the token pair behind a mutex. Clear removes both tokens
// inside one critical section, so readers never observe a half-cleared pair.
type TokenStore struct {
	mu      sync.Mutex
	access  string
	refresh string
}

// NewTokenStore constructs an empty in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

func (s *TokenStore) Access(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access, nil
}

func (s *TokenStore) Refresh(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh, nil
}

func (s *TokenStore) SetAccess(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = token
	return nil
}

func (s *TokenStore) SetRefresh(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = token
	return nil
}

func (s *TokenStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	return nil
}

// KeyValue is a mutex-guarded map implementing the raw KV medium.
type KeyValue struct {
	mu     sync.Mutex
	values map[string]string
}

// NewKeyValue constructs an empty in-memory key-value store.
func NewKeyValue() *KeyValue {
	return &KeyValue{values: make(map[string]string)}
}

func (kv *KeyValue) Get(_ context.Context, key string) (string, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	return kv.values[key], nil
}

func (kv *KeyValue) Set(_ context.Context, key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.values[key] = value
	return nil
}

func (kv *KeyValue) Delete(_ context.Context, keys ...string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	for _, key := range keys {
		delete(kv.values, key)
	}
	return nil
}
