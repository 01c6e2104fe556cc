package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vireo-dev/vireo/pkg/metrics"
)

// Config holds server settings. Zero-value fields are filled from
// DefaultConfig.
type Config struct {
	// Address is the listen address (default: ":8080").
	Address string

	// ReadBufferSize is the WebSocket read buffer size in bytes.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size in bytes.
	WriteBufferSize int

	// ReadTimeout bounds each WebSocket read (default: 60s).
	ReadTimeout time.Duration

	// WriteTimeout bounds each WebSocket write (default: 10s).
	WriteTimeout time.Duration

	// EventQueueSize is the per-session event queue capacity.
	EventQueueSize int

	// ShutdownTimeout bounds graceful shutdown (default: 10s).
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout bounds HTTP header reads (default: 10s).
	ReadHeaderTimeout time.Duration

	// CheckOrigin validates the WebSocket handshake origin. Defaults
	// to same-origin only.
	CheckOrigin func(r *http.Request) bool

	// IndexHTML is the page served on GET /. Defaults to a bare shell;
	// applications override it with a page that loads their client
	// bundle.
	IndexHTML string

	// Logger is the structured logger (default: slog.Default()).
	Logger *slog.Logger

	// Observer records reconciliation metrics. Optional.
	Observer *metrics.Observer
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:           ":8080",
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		EventQueueSize:    64,
		ShutdownTimeout:   10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		Logger:            slog.Default(),
	}
}

func (c *Config) fillDefaults() {
	d := DefaultConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.EventQueueSize == 0 {
		c.EventQueueSize = d.EventQueueSize
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if c.IndexHTML == "" {
		c.IndexHTML = defaultIndexPage
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
}

// Option configures a Server.
type Option func(*Config)

// WithAddress sets the listen address.
func WithAddress(addr string) Option {
	return func(c *Config) {
		c.Address = addr
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithObserver installs a metrics observer on every session.
func WithObserver(obs *metrics.Observer) Option {
	return func(c *Config) {
		c.Observer = obs
	}
}

// WithCheckOrigin sets the WebSocket origin check.
func WithCheckOrigin(check func(r *http.Request) bool) Option {
	return func(c *Config) {
		c.CheckOrigin = check
	}
}

// WithIndexHTML sets the page served on GET /.
func WithIndexHTML(html string) Option {
	return func(c *Config) {
		c.IndexHTML = html
	}
}

// WithEventQueueSize sets the per-session event queue capacity.
func WithEventQueueSize(n int) Option {
	return func(c *Config) {
		c.EventQueueSize = n
	}
}
