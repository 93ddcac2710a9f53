package sealed

import (
	"context"
	"fmt"

	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
	"github.com/medbook/medbook-ui/internal/ports"
)

// Store seals the token before handing the session to the wrapped store.
// Sessions saved before sealing was enabled still load; they are sealed on the next save.
type Store struct {
	inner  ports.CredentialStore
	sealer *Sealer
}

// NewStore wraps inner.
func NewStore(inner ports.CredentialStore, sealer *Sealer) *Store {
	return &Store{inner: inner, sealer: sealer}
}

func (s *Store) Load(ctx context.Context) (domainauth.Session, error) {
	sess, err := s.inner.Load(ctx)
	if err != nil || !IsSealed(sess.Token) {
		return sess, err
	}
	token, err := s.sealer.Open(sess.Token)
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("unseal session: %w", err)
	}
	sess.Token = string(token)
	return sess, nil
}

func (s *Store) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.HasCredential() {
		token, err := s.sealer.Seal([]byte(sess.Token))
		if err != nil {
			return fmt.Errorf("seal session: %w", err)
		}
		sess.Token = token
	}
	return s.inner.Save(ctx, sess)
}

func (s *Store) Clear(ctx context.Context) error {
	return s.inner.Clear(ctx)
}
