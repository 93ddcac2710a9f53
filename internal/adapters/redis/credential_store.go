package redis

// Package redis provides the Redis-backed credential store, for deployments where
// several web client replicas must share one signed-in session.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
)

// DefaultKey is the storage key used when none is configured.
const DefaultKey = "auth"

// CredentialStore keeps the serialized session under a single key.
type CredentialStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// CredentialStoreOptions configures a CredentialStore.
type CredentialStoreOptions struct {
	Key string
	// TTL expires the key; zero keeps it until Clear.
	TTL time.Duration
}

// NewCredentialStore creates a Redis-backed credential store.
func NewCredentialStore(client redis.UniversalClient, opts CredentialStoreOptions) *CredentialStore {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}
	ttl := opts.TTL
	if ttl < 0 {
		ttl = 0
	}
	return &CredentialStore{client: client, key: key, ttl: ttl}
}

// Load returns the stored session, or a zero Session when the key is absent.
func (s *CredentialStore) Load(ctx context.Context) (domainauth.Session, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, nil
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return sess.Normalized(), nil
}

// Save replaces the stored session. Saving a session without a credential clears the key.
func (s *CredentialStore) Save(ctx context.Context, sess domainauth.Session) error {
	sess = sess.Normalized()
	if !sess.HasCredential() {
		return s.Clear(ctx)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Clear removes the stored session.
func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
