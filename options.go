package praxis

import (
	"io"

	appops "github.com/praxisops/praxis/application/ops"
	"github.com/praxisops/praxis/domain/gate"
	"github.com/praxisops/praxis/domain/ops"
	"github.com/praxisops/praxis/internal/config"
	"github.com/praxisops/praxis/internal/log"
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	appConfig config.AppConfig
	logger    *log.Logger
	bus       ops.IntegrationBus
	runner    appops.Runner
	detectors []gate.Detector
	closers   []io.Closer
}

func newClientConfig() *clientConfig {
	return &clientConfig{appConfig: config.NewAppConfig()}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithConfig sets the application configuration.
func WithConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) { c.appConfig = cfg }
}

// WithLogger sets a custom logger.
func WithLogger(l *log.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithBus overrides the integration bus adapter.
func WithBus(b ops.IntegrationBus) Option {
	return func(c *clientConfig) { c.bus = b }
}

// WithRunner sets the runbook action dispatcher.
func WithRunner(r appops.Runner) Option {
	return func(c *clientConfig) { c.runner = r }
}

// WithDetectors overrides the default gate detector set.
func WithDetectors(ds ...gate.Detector) Option {
	return func(c *clientConfig) { c.detectors = ds }
}

// WithCloser registers a resource to be closed when the Client shuts down.
func WithCloser(closer io.Closer) Option {
	return func(c *clientConfig) { c.closers = append(c.closers, closer) }
}
