package config

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8081"`

	// LoginRate is the sustained number of login attempts allowed per second.
	LoginRate float64 `env:"HTTP_LOGIN_RATE" envDefault:"1"`

	// LoginBurst is the number of login attempts allowed in a burst.
	LoginBurst int `env:"HTTP_LOGIN_BURST" envDefault:"5"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr == "" {
		h.Addr = ":8081"
	}
	if h.LoginRate <= 0 {
		h.LoginRate = 1
	}
	if h.LoginBurst < 1 {
		h.LoginBurst = 1
	}
}
