package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SessionStoreKind selects the credential store implementation.
type SessionStoreKind string

const (
	// SessionStoreFile persists the session as a JSON file.
	SessionStoreFile SessionStoreKind = "file"
	// SessionStoreRedis persists the session under a single Redis key.
	SessionStoreRedis SessionStoreKind = "redis"
	// SessionStoreMemory keeps the session for the life of the process.
	SessionStoreMemory SessionStoreKind = "memory"
)

const (
	defaultSessionKey = "auth"
	sessionDirName    = ".medbook"
	sessionFileName   = "session.json"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionStoreKind.
func (k *SessionStoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "file", "redis", "memory":
		*k = SessionStoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionStoreKind: %q (valid options: file, redis, memory)", v)
	}
}

// SessionConfig controls where the serialized session lives between restarts.
type SessionConfig struct {
	Store SessionStoreKind `env:"SESSION_STORE" envDefault:"file"`

	// File is the path used by the file store. Defaults to ~/.medbook/session.json.
	File string `env:"SESSION_FILE"`

	// Key is the storage key holding the serialized session.
	Key string `env:"SESSION_KEY" envDefault:"auth"`

	// TTL expires the persisted session in Redis. Zero keeps it until logout.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"0s"`
	// EncryptionKey seals the stored token at rest when set. A 64-character hex
	// string is used as the AES-256 key; any other value is hashed into one.
	EncryptionKey string `env:"SESSION_ENCRYPTION_KEY"`
}

// Sanitize fills the default key and file path.
func (s *SessionConfig) Sanitize() {
	if s.Store == "" {
		s.Store = SessionStoreFile
	}
	if s.Key = strings.TrimSpace(s.Key); s.Key == "" {
		s.Key = defaultSessionKey
	}
	if s.TTL < 0 {
		s.TTL = 0
	}
	if s.File = strings.TrimSpace(s.File); s.File == "" {
		s.File = defaultSessionFile()
	}
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(sessionDirName, sessionFileName)
	}
	return filepath.Join(home, sessionDirName, sessionFileName)
}
