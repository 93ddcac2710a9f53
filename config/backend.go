package config

import (
	"strings"
	"time"
)

const (
	defaultBackendBaseURL = "http://localhost:8080"
	defaultBackendTimeout = 15 * time.Second
)

// BackendConfig describes how to reach the booking backend REST API.
type BackendConfig struct {
	// BaseURL is the backend origin; a trailing slash is trimmed.
	BaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8080"`

	// Timeout bounds every backend request.
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"15s"`
}

// Sanitize trims the base URL and restores defaults for empty values.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	if b.BaseURL == "" {
		b.BaseURL = defaultBackendBaseURL
	}
	if b.Timeout <= 0 {
		b.Timeout = defaultBackendTimeout
	}
}
