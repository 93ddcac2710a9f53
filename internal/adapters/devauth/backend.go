// Package devauth provides an in-process stand-in for the backend's auth and
// profile endpoints, so the app can run locally without the booking backend.
package devauth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
	apperrors "github.com/medbook/medbook-ui/internal/errors"
	"github.com/medbook/medbook-ui/internal/ports"
)

// User is one configured account.
type User struct {
	ID        int64
	Email     string
	Password  string
	Role      domainauth.Role
	FirstName string
	LastName  string
}

// Config controls the dev backend behavior.
type Config struct {
	Users []User
	// SigningKey signs issued tokens; a random key is generated when empty.
	SigningKey string
	TokenTTL   time.Duration // default 8h when zero
}

// Backend implements ports.AuthAPI and ports.ProfileAPI in memory.
// Tokens are real HS256 JWTs carrying a role claim, so the claims decoder
// sees the same shape it would from the real backend.
type Backend struct {
	mu     sync.RWMutex
	users  map[string]User
	nextID int64
	key    []byte
	ttl    time.Duration
	now    func() time.Time
}

var profileRoles = map[string]domainauth.Role{
	"/api/patients/me": domainauth.RolePatient,
	"/api/doctors/me":  domainauth.RoleDoctor,
	"/api/admins/me":   domainauth.RoleAdmin,
	"/api/users/me":    domainauth.RoleNone,
	"/api/auth/me":     domainauth.RoleNone,
}

// NewBackend constructs a dev backend from Config.
func NewBackend(cfg Config) (*Backend, error) {
	key := cfg.SigningKey
	if key == "" {
		generated, err := randomString(32)
		if err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		key = generated
	}
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = 8 * time.Hour
	}
	b := &Backend{
		users: make(map[string]User, len(cfg.Users)),
		key:   []byte(key),
		ttl:   ttl,
		now:   time.Now,
	}
	for _, u := range cfg.Users {
		if err := b.add(u); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// ParseUsers parses "email:password:ROLE" entries.
func ParseUsers(specs []string) ([]User, error) {
	out := make([]User, 0, len(specs))
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		parts := strings.Split(spec, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("dev auth: user %q must be email:password:ROLE", spec)
		}
		role := domainauth.NormalizeRole(parts[2])
		if role == domainauth.RoleNone {
			return nil, fmt.Errorf("dev auth: user %q has unknown role %q", parts[0], parts[2])
		}
		out = append(out, User{Email: strings.TrimSpace(parts[0]), Password: parts[1], Role: role})
	}
	return out, nil
}

func (b *Backend) add(u User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Email == "" {
		return errors.New("dev auth: user email is required")
	}
	if !u.Role.Valid() {
		return fmt.Errorf("dev auth: user %q has no valid role", u.Email)
	}
	if _, exists := b.users[u.Email]; exists {
		return fmt.Errorf("dev auth: duplicate user %q", u.Email)
	}
	b.nextID++
	if u.ID == 0 {
		u.ID = b.nextID
	}
	if u.FirstName == "" {
		u.FirstName, _, _ = strings.Cut(u.Email, "@")
	}
	b.users[u.Email] = u
	return nil
}

// Login checks the credentials and issues a signed token.
func (b *Backend) Login(_ context.Context, email, password string) (ports.LoginResult, error) {
	b.mu.RLock()
	u, ok := b.users[strings.ToLower(strings.TrimSpace(email))]
	b.mu.RUnlock()
	if !ok || subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
		return ports.LoginResult{}, apperrors.FromStatus(http.StatusUnauthorized, "Invalid email or password")
	}

	now := b.now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  u.Email,
		"uid":  u.ID,
		"role": string(u.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(b.ttl).Unix(),
	}).SignedString(b.key)
	if err != nil {
		return ports.LoginResult{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "sign token")
	}
	return ports.LoginResult{Token: token}, nil
}

// Register adds a patient account. Only PATIENT registrations are accepted.
func (b *Backend) Register(_ context.Context, in ports.RegisterInput) error {
	role := domainauth.NormalizeRole(in.Role)
	if role != domainauth.RolePatient {
		return apperrors.FromStatus(http.StatusBadRequest, "only patients can register")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[strings.ToLower(strings.TrimSpace(in.Email))]; exists {
		return apperrors.FromStatus(http.StatusConflict, "email already registered")
	}
	return b.add(User{
		Email:     in.Email,
		Password:  in.Password,
		Role:      role,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
}

// FetchProfile verifies token and answers the way the backend's profile endpoints do:
// 401 for a bad token, 403 for another role's endpoint, 404 for unknown paths.
func (b *Backend) FetchProfile(_ context.Context, token, path string) (map[string]any, error) {
	endpointRole, known := profileRoles[path]
	if !known {
		return nil, apperrors.FromStatus(http.StatusNotFound, "")
	}

	u, err := b.verify(token)
	if err != nil {
		return nil, err
	}
	if endpointRole != domainauth.RoleNone && endpointRole != u.Role {
		return nil, apperrors.FromStatus(http.StatusForbidden, "Access Denied")
	}
	return map[string]any{
		"id":        u.ID,
		"email":     u.Email,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"role":      string(u.Role),
	}, nil
}

func (b *Backend) verify(token string) (User, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return b.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(b.now))
	if err != nil {
		return User{}, apperrors.FromStatus(http.StatusUnauthorized, "invalid token")
	}
	sub, _ := claims.GetSubject()

	b.mu.RLock()
	u, ok := b.users[sub]
	b.mu.RUnlock()
	if !ok {
		return User{}, apperrors.FromStatus(http.StatusUnauthorized, "unknown subject")
	}
	return u, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, (n*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
