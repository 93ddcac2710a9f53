// Package filestore persists the session in a small JSON document on disk,
// keyed the way browser local storage is: one key, one serialized value.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
)

const (
	// DefaultKey is the storage key used when none is configured.
	DefaultKey = "auth"

	fileMode = 0o600
	dirMode  = 0o700
)

// Store implements ports.CredentialStore on top of a JSON file.
type Store struct {
	path string
	key  string
	mu   sync.Mutex
}

// New returns a store writing to path under key.
func New(path, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{path: path, key: key}
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// Load returns the stored session, or a zero Session when the file or key is absent.
func (s *Store) Load(_ context.Context) (domainauth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return domainauth.Session{}, err
	}
	raw, ok := doc[s.key]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return domainauth.Session{}, nil
	}
	var sess domainauth.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("decode session %q: %w", s.key, err)
	}
	return sess.Normalized(), nil
}

// Save replaces the stored session. Saving a session without a credential clears the key.
func (s *Store) Save(ctx context.Context, sess domainauth.Session) error {
	sess = sess.Normalized()
	if !sess.HasCredential() {
		return s.Clear(ctx)
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		// An unreadable document is replaced rather than blocking sign-in.
		doc = map[string]json.RawMessage{}
	}
	doc[s.key] = raw
	return s.write(doc)
}

// Clear removes the key, and the file once nothing else is stored in it.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil || len(doc) == 0 {
		return s.remove()
	}
	delete(doc, s.key)
	if len(doc) == 0 {
		return s.remove()
	}
	return s.write(doc)
}

func (s *Store) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	doc := map[string]json.RawMessage{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return doc, nil
}

// write replaces the file atomically so a crash never leaves half a document behind.
func (s *Store) write(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("rename to %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", s.path, err)
	}
	return nil
}
