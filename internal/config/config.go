// Package config provides application configuration.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultLogLevel        = "INFO"
	DefaultLogFormat       = "text"
	DefaultProbeTimeout    = 2 * time.Second
	DefaultDetectorTimeout = 60 * time.Second
	DefaultLogSearchLimit  = 100
	DefaultCatalogPageSize = 20
	MaxCatalogPageSize     = 100
)

// PersistenceMode selects the adapter family backing the stores.
type PersistenceMode string

// PersistenceMode values.
const (
	PersistenceMemory  PersistenceMode = "memory"
	PersistenceDurable PersistenceMode = "durable"
)

// ParsePersistenceMode parses a persistence mode string, defaulting to durable.
func ParsePersistenceMode(s string) PersistenceMode {
	if strings.EqualFold(s, string(PersistenceMemory)) {
		return PersistenceMemory
	}
	return PersistenceDurable
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host            string
	port            int
	documentStore   string
	documentStoreDB string
	blobBucket      string
	apiKey          string
	persistence     PersistenceMode
	busRedisURL     string
	logLevel        string
	logFormat       string
	probeTimeout    time.Duration
	detectorTimeout time.Duration
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:            DefaultHost,
		port:            DefaultPort,
		persistence:     PersistenceDurable,
		logLevel:        DefaultLogLevel,
		logFormat:       DefaultLogFormat,
		probeTimeout:    DefaultProbeTimeout,
		detectorTimeout: DefaultDetectorTimeout,
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DocumentStoreURI returns the document-store connection string.
func (c AppConfig) DocumentStoreURI() string { return c.documentStore }

// DocumentStoreDB returns the logical database name.
func (c AppConfig) DocumentStoreDB() string { return c.documentStoreDB }

// BlobBucket returns the optional raw-content blob target directory.
func (c AppConfig) BlobBucket() string { return c.blobBucket }

// APIKey returns the optional shared secret gating non-health routes.
func (c AppConfig) APIKey() string { return c.apiKey }

// Persistence returns the persistence mode.
func (c AppConfig) Persistence() PersistenceMode { return c.persistence }

// BusRedisURL returns the optional Redis URL for the integration bus.
func (c AppConfig) BusRedisURL() string { return c.busRedisURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log output format.
func (c AppConfig) LogFormat() string { return c.logFormat }

// ProbeTimeout returns the per-call deadline for health probes.
func (c AppConfig) ProbeTimeout() time.Duration { return c.probeTimeout }

// DetectorTimeout returns the per-call deadline for detector subprocesses.
func (c AppConfig) DetectorTimeout() time.Duration { return c.detectorTimeout }

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDocumentStore sets the document-store URI and database name.
func WithDocumentStore(uri, db string) AppConfigOption {
	return func(c *AppConfig) {
		c.documentStore = uri
		c.documentStoreDB = db
	}
}

// WithBlobBucket sets the blob target.
func WithBlobBucket(bucket string) AppConfigOption {
	return func(c *AppConfig) { c.blobBucket = bucket }
}

// WithAPIKey sets the shared secret.
func WithAPIKey(key string) AppConfigOption {
	return func(c *AppConfig) { c.apiKey = key }
}

// WithPersistence sets the persistence mode.
func WithPersistence(mode PersistenceMode) AppConfigOption {
	return func(c *AppConfig) { c.persistence = mode }
}

// WithBusRedisURL sets the integration-bus Redis URL.
func WithBusRedisURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.busRedisURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format string) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithProbeTimeout sets the health-probe deadline.
func WithProbeTimeout(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d > 0 {
			c.probeTimeout = d
		}
	}
}

// WithDetectorTimeout sets the detector subprocess deadline.
func WithDetectorTimeout(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d > 0 {
			c.detectorTimeout = d
		}
	}
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
