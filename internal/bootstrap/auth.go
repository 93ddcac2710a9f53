package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/medbook/medbook-ui/config"
	"github.com/medbook/medbook-ui/internal/adapters/backend"
	"github.com/medbook/medbook-ui/internal/adapters/devauth"
	"github.com/medbook/medbook-ui/internal/adapters/filestore"
	redisadapter "github.com/medbook/medbook-ui/internal/adapters/redis"
	"github.com/medbook/medbook-ui/internal/adapters/sealed"
	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
	"github.com/medbook/medbook-ui/internal/ports"
)

// Backends are the ports the services talk to.
type Backends struct {
	Auth     ports.AuthAPI
	Profiles ports.ProfileAPI
	Booking  ports.BookingAPI
}

// BuildBackends creates the backend REST client and, when the auth mode is mock,
// swaps the auth and profile ports for the in-process dev backend.
func BuildBackends(cfg config.AppConfig, logger *slog.Logger) (Backends, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := backend.NewClient(backend.Options{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return Backends{}, fmt.Errorf("backend client: %w", err)
	}
	b := Backends{Auth: client, Profiles: client, Booking: client}

	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		users, err := devauth.ParseUsers(cfg.Auth.Mock.Users)
		if err != nil {
			return Backends{}, fmt.Errorf("mock auth users: %w", err)
		}
		dev, err := devauth.NewBackend(devauth.Config{Users: users, SigningKey: cfg.Auth.Mock.SigningKey})
		if err != nil {
			return Backends{}, fmt.Errorf("mock auth backend: %w", err)
		}
		logger.Warn("mock auth enabled; sign-in is served in-process", "users", len(users))
		b.Auth, b.Profiles = dev, dev
	case config.AuthModeBackend:
		logger.Info("auth served by backend", "base_url", client.BaseURL())
	default:
		return Backends{}, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
	return b, nil
}

// CredentialStoreConfig contains what BuildCredentialStore needs.
type CredentialStoreConfig struct {
	Session config.SessionConfig
	Redis   config.RedisConfig
	Logger  *slog.Logger
}

// BuildCredentialStore creates the configured session store, sealing the token when an
// encryption key is configured. The returned close function releases any connection
// the store owns and is never nil.
func BuildCredentialStore(ctx context.Context, cfg CredentialStoreConfig) (ports.CredentialStore, func() error, error) {
	store, closeFn, err := buildPlainStore(ctx, cfg)
	if err != nil || cfg.Session.EncryptionKey == "" {
		return store, closeFn, err
	}
	key, err := sealed.KeyFromString(cfg.Session.EncryptionKey)
	if err == nil {
		var sealer *sealed.Sealer
		if sealer, err = sealed.NewSealer(key); err == nil {
			return sealed.NewStore(store, sealer), closeFn, nil
		}
	}
	return nil, func() error { return nil }, errors.Join(fmt.Errorf("session encryption: %w", err), closeFn())
}

func buildPlainStore(ctx context.Context, cfg CredentialStoreConfig) (ports.CredentialStore, func() error, error) {
	noop := func() error { return nil }
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Session.Store {
	case config.SessionStoreFile, "":
		store := filestore.New(cfg.Session.File, cfg.Session.Key)
		logger.Info("session store ready", "kind", "file", "path", store.Path())
		return store, noop, nil
	case config.SessionStoreRedis:
		client, err := ConnectRedis(ctx, RedisOptions{Config: cfg.Redis, Logger: logger})
		if err != nil {
			return nil, noop, err
		}
		store := redisadapter.NewCredentialStore(client, redisadapter.CredentialStoreOptions{
			Key: cfg.Session.Key,
			TTL: cfg.Session.TTL,
		})
		logger.Info("session store ready", "kind", "redis", "key", cfg.Session.Key)
		return store, closeRedis(client), nil
	case config.SessionStoreMemory:
		logger.Info("session store ready", "kind", "memory")
		return &memoryStore{}, noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported session store %q", cfg.Session.Store)
	}
}

func closeRedis(client redis.UniversalClient) func() error {
	return func() error {
		if err := client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			return fmt.Errorf("close redis: %w", err)
		}
		return nil
	}
}

// memoryStore keeps the session for the life of the process.
type memoryStore struct {
	mu   sync.Mutex
	sess domainauth.Session
}

func (m *memoryStore) Load(context.Context) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess, nil
}

func (m *memoryStore) Save(_ context.Context, sess domainauth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess = sess.Normalized()
	m.sess = domainauth.Session{Token: sess.Token, Role: sess.Role, Profile: sess.Profile}
	return nil
}

func (m *memoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = domainauth.Session{}
	return nil
}
