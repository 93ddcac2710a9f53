package config

import (
	"log/slog"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "MOCK")
	t.Setenv("AUTH_ROLE_CLAIM_PATH", "realm_access.roles[0]")
	t.Setenv("AUTH_PROFILE_ROLE_PATH", "user.role")
	t.Setenv("AUTH_FORBIDDEN_REDIRECT", "/")
	t.Setenv("AUTH_MOCK_USERS", "a@example.com:pw:PATIENT,b@example.com:pw:DOCTOR")
	t.Setenv("AUTH_MOCK_SIGNING_KEY", "k")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		Mode:              AuthModeMock,
		RoleClaimPath:     "realm_access.roles[0]",
		ProfileRolePath:   "user.role",
		LoginPath:         "/login",
		ForbiddenRedirect: "/",
		Mock: MockAuthConfig{
			Users:      []string{"a@example.com:pw:PATIENT", "b@example.com:pw:DOCTOR"},
			SigningKey: "k",
		},
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth config:\nwant %#v\ngot  %#v", expected, cfg.Auth)
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Auth.Mode != AuthModeBackend {
		t.Errorf("expected backend mode, got %q", cfg.Auth.Mode)
	}
	if cfg.Auth.RoleClaimPath != DefaultRoleClaimPath {
		t.Errorf("unexpected role claim path %q", cfg.Auth.RoleClaimPath)
	}
	if cfg.Auth.ForbiddenRedirect != "/403" {
		t.Errorf("unexpected forbidden redirect %q", cfg.Auth.ForbiddenRedirect)
	}
	if cfg.Backend.BaseURL != "http://localhost:8080" || cfg.Backend.Timeout != 15*time.Second {
		t.Errorf("unexpected backend config %#v", cfg.Backend)
	}
	if cfg.Session.Store != SessionStoreFile || cfg.Session.Key != "auth" {
		t.Errorf("unexpected session config %#v", cfg.Session)
	}
	if filepath.Base(cfg.Session.File) != "session.json" {
		t.Errorf("unexpected session file %q", cfg.Session.File)
	}
	if !cfg.Observability.Metrics.Enabled || cfg.Observability.Metrics.Path != "/metrics" {
		t.Errorf("unexpected metrics config %#v", cfg.Observability.Metrics)
	}
}

func TestAppConfig_InvalidEnums(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "auth mode", key: "AUTH_MODE", value: "oauth"},
		{name: "session store", key: "SESSION_STORE", value: "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			var cfg AppConfig
			if err := env.Parse(&cfg); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestBackendConfig_Sanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    BackendConfig
		expected BackendConfig
	}{
		{
			name:     "trailing slash trimmed",
			input:    BackendConfig{BaseURL: "https://api.example.com/", Timeout: time.Second},
			expected: BackendConfig{BaseURL: "https://api.example.com", Timeout: time.Second},
		},
		{
			name:     "empty values restored",
			input:    BackendConfig{BaseURL: "  "},
			expected: BackendConfig{BaseURL: defaultBackendBaseURL, Timeout: defaultBackendTimeout},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.input
			cfg.Sanitize()
			if !reflect.DeepEqual(cfg, tt.expected) {
				t.Fatalf("want %#v, got %#v", tt.expected, cfg)
			}
		})
	}
}

func TestAuthConfig_SanitizeRedirects(t *testing.T) {
	cfg := AuthConfig{
		LoginPath:         "https://evil.example.com/login",
		ForbiddenRedirect: "//evil.example.com",
	}
	cfg.Sanitize()

	if cfg.LoginPath != "/login" {
		t.Errorf("expected login path fallback, got %q", cfg.LoginPath)
	}
	if cfg.ForbiddenRedirect != "/403" {
		t.Errorf("expected forbidden fallback, got %q", cfg.ForbiddenRedirect)
	}
	if cfg.ProfileRolePath != DefaultProfileRolePath {
		t.Errorf("expected default profile role path, got %q", cfg.ProfileRolePath)
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	cfg := HTTPConfig{LoginRate: -1, LoginBurst: 0}
	cfg.Sanitize()

	if cfg.Addr != ":8081" || cfg.LoginRate != 1 || cfg.LoginBurst != 1 {
		t.Fatalf("unexpected http config %#v", cfg)
	}
}

func TestObservabilityConfig_SlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for input, want := range tests {
		cfg := ObservabilityConfig{LogLevel: input}
		cfg.Sanitize()
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
