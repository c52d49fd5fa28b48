package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DocumentStoreURI is the document-store connection string.
	// Env: DOCUMENT_STORE_URI
	DocumentStoreURI string `envconfig:"DOCUMENT_STORE_URI"`

	// DocumentStoreDB is the logical database name.
	// Env: DOCUMENT_STORE_DB
	DocumentStoreDB string `envconfig:"DOCUMENT_STORE_DB"`

	// BlobBucket is the optional raw-content blob target.
	// Env: BLOB_BUCKET
	BlobBucket string `envconfig:"BLOB_BUCKET"`

	// APIKey is the optional shared secret gating non-health routes.
	// Env: API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Persistence selects in-memory vs durable adapters.
	// Env: PERSISTENCE (default: durable)
	Persistence string `envconfig:"PERSISTENCE" default:"durable"`

	// BusRedisURL is the optional Redis URL for the integration bus.
	// Env: BUS_REDIS_URL
	BusRedisURL string `envconfig:"BUS_REDIS_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (text or json).
	// Env: LOG_FORMAT (default: text)
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// ProbeTimeoutSeconds is the health-probe deadline in seconds.
	// Env: PROBE_TIMEOUT_SECONDS (default: 2)
	ProbeTimeoutSeconds float64 `envconfig:"PROBE_TIMEOUT_SECONDS" default:"2"`

	// DetectorTimeoutSeconds is the detector subprocess deadline in seconds.
	// Env: DETECTOR_TIMEOUT_SECONDS (default: 60)
	DetectorTimeoutSeconds float64 `envconfig:"DETECTOR_TIMEOUT_SECONDS" default:"60"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	opts := []AppConfigOption{
		WithPersistence(ParsePersistenceMode(e.Persistence)),
		WithProbeTimeout(time.Duration(e.ProbeTimeoutSeconds * float64(time.Second))),
		WithDetectorTimeout(time.Duration(e.DetectorTimeoutSeconds * float64(time.Second))),
	}

	if e.Host != "" {
		opts = append(opts, WithHost(e.Host))
	}
	if e.Port != 0 {
		opts = append(opts, WithPort(e.Port))
	}
	if e.DocumentStoreURI != "" {
		opts = append(opts, WithDocumentStore(e.DocumentStoreURI, e.DocumentStoreDB))
	}
	if e.BlobBucket != "" {
		opts = append(opts, WithBlobBucket(e.BlobBucket))
	}
	if e.APIKey != "" {
		opts = append(opts, WithAPIKey(e.APIKey))
	}
	if e.BusRedisURL != "" {
		opts = append(opts, WithBusRedisURL(e.BusRedisURL))
	}
	if e.LogLevel != "" {
		opts = append(opts, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		opts = append(opts, WithLogFormat(e.LogFormat))
	}

	return NewAppConfigWithOptions(opts...)
}
