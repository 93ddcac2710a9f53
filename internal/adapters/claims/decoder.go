// Package claims reads advisory role claims out of bearer tokens and profile bodies.
// Nothing here verifies signatures; the backend re-validates every request.
package claims

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	jmespath "github.com/jmespath-community/go-jmespath"

	domainauth "github.com/medbook/medbook-ui/internal/domain/auth"
)

const (
	// DefaultRolePath prefers the singular claim, then the first roles entry, then the first authority.
	DefaultRolePath = "role || roles[0] || authorities[0]"
	// DefaultProfileRolePath reads the role field of a profile body.
	DefaultProfileRolePath = "role"

	bearerPrefix = "Bearer "
)

var (
	ErrMalformedToken  = errors.New("token is not three dot-separated segments")
	ErrInvalidEncoding = errors.New("token payload is not base64url")
	ErrInvalidPayload  = errors.New("token payload is not a JSON object")
	ErrNoRoleClaim     = errors.New("token carries no role claim")
)

// RoleClaim is the result of decoding a credential: either a role (possibly RoleNone
// for unrecognized values) or the stage at which decoding failed.
type RoleClaim struct {
	Raw  string
	Role domainauth.Role
	Err  error
}

// OK reports whether a canonical role was decoded.
func (c RoleClaim) OK() bool { return c.Err == nil && c.Role != domainauth.RoleNone }

// Decoder extracts role claims with JMESPath expressions.
type Decoder struct {
	rolePath        string
	profileRolePath string
	parser          *jwt.Parser
}

// DecoderOptions groups the expressions used by Decoder. Empty fields take the defaults.
type DecoderOptions struct {
	RolePath        string
	ProfileRolePath string
}

// NewDecoder compiles both expressions up front so bad configuration fails at startup.
func NewDecoder(opts DecoderOptions) (*Decoder, error) {
	d := &Decoder{
		rolePath:        strings.TrimSpace(opts.RolePath),
		profileRolePath: strings.TrimSpace(opts.ProfileRolePath),
		parser:          jwt.NewParser(jwt.WithPaddingAllowed()),
	}
	if d.rolePath == "" {
		d.rolePath = DefaultRolePath
	}
	if d.profileRolePath == "" {
		d.profileRolePath = DefaultProfileRolePath
	}
	if _, err := jmespath.Compile(d.rolePath); err != nil {
		return nil, fmt.Errorf("compile role claim path %q: %w", d.rolePath, err)
	}
	if _, err := jmespath.Compile(d.profileRolePath); err != nil {
		return nil, fmt.Errorf("compile profile role path %q: %w", d.profileRolePath, err)
	}
	return d, nil
}

// MustDecoder is NewDecoder for the built-in expressions.
func MustDecoder() *Decoder {
	d, err := NewDecoder(DecoderOptions{})
	if err != nil {
		panic(err)
	}
	return d
}

// Payload decodes the middle segment of token into a claims map.
func (d *Decoder) Payload(token string) (jwt.MapClaims, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), bearerPrefix))
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[1] == "" {
		return nil, ErrMalformedToken
	}
	raw, err := d.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	var claims jwt.MapClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if claims == nil {
		return nil, ErrInvalidPayload
	}
	return claims, nil
}

// Decode extracts the role claim from token. It never panics and never returns an error
// directly; failures are reported in RoleClaim.Err.
func (d *Decoder) Decode(token string) RoleClaim {
	claims, err := d.Payload(token)
	if err != nil {
		return RoleClaim{Err: err}
	}
	raw := d.search(d.rolePath, map[string]any(claims))
	if raw == "" {
		return RoleClaim{Err: ErrNoRoleClaim}
	}
	return RoleClaim{Raw: raw, Role: domainauth.NormalizeRole(raw)}
}

// DecodeRole returns the canonical role carried by token, or RoleNone.
func (d *Decoder) DecodeRole(token string) domainauth.Role {
	return d.Decode(token).Role
}

// ProfileRole returns the canonical role named in a profile body, or RoleNone.
func (d *Decoder) ProfileRole(data map[string]any) domainauth.Role {
	if data == nil {
		return domainauth.RoleNone
	}
	return domainauth.NormalizeRole(d.search(d.profileRolePath, data))
}

func (d *Decoder) search(expr string, data map[string]any) string {
	v, err := jmespath.Search(expr, data)
	if err != nil {
		return ""
	}
	return roleString(v)
}

// roleString accepts a plain string or a Spring-style {"authority": "..."} object.
func roleString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		if s, ok := t["authority"].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
