package backend

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/medbook/medbook-ui/internal/errors"
	"github.com/medbook/medbook-ui/internal/ports"
)

const (
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (ports.LoginResult, error) {
	var res ports.LoginResult
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   loginPath,
		body:   map[string]string{"email": email, "password": password},
		out:    &res,
	})
	if err != nil {
		return ports.LoginResult{}, err
	}
	res.Token = strings.TrimSpace(res.Token)
	if res.Token == "" {
		return ports.LoginResult{}, apperrors.Internal("login response did not include a token")
	}
	return res, nil
}

// Register creates a backend account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, in ports.RegisterInput) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   registerPath,
		body:   in,
	})
}

// FetchProfile reads the principal's profile from path, e.g. /api/patients/me.
func (c *Client) FetchProfile(ctx context.Context, token, path string) (map[string]any, error) {
	var out map[string]any
	err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      path,
		token:     token,
		out:       &out,
		useNumber: true,
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
