// Package ops provides the ops-controller domain: service registry,
// incidents with append-only timelines, and guarded runbook execution.
package ops

import (
	"fmt"
	"strings"
)

// Environment classifies where a service runs.
type Environment string

// Environment values.
const (
	EnvProd    Environment = "prod"
	EnvStaging Environment = "staging"
	EnvDev     Environment = "dev"
	EnvOther   Environment = "other"
)

// ParseEnvironment converts a string to an Environment, defaulting to other.
func ParseEnvironment(s string) Environment {
	switch Environment(strings.ToLower(strings.TrimSpace(s))) {
	case EnvProd:
		return EnvProd
	case EnvStaging:
		return EnvStaging
	case EnvDev:
		return EnvDev
	default:
		return EnvOther
	}
}

// Service is a registered, observable system.
type Service struct {
	id              string
	name            string
	env             Environment
	owners          []string
	healthURL       string
	loggingEndpoint string
	tags            []string
	otelConfig      map[string]string
	metadata        map[string]string
}

// NewService creates a Service, validating id and name.
func NewService(id, name string, env Environment, opts ...ServiceOption) (Service, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Service{}, fmt.Errorf("service id must not be empty")
	}
	if strings.TrimSpace(name) == "" {
		return Service{}, fmt.Errorf("service name must not be empty")
	}
	s := Service{id: id, name: name, env: env}
	for _, opt := range opts {
		opt(&s)
	}
	return s, nil
}

// ServiceOption configures optional Service attributes.
type ServiceOption func(*Service)

// WithOwners sets the owning teams or people.
func WithOwners(owners []string) ServiceOption {
	return func(s *Service) { s.owners = owners }
}

// WithHealthURL sets the health-probe endpoint.
func WithHealthURL(url string) ServiceOption {
	return func(s *Service) { s.healthURL = url }
}

// WithLoggingEndpoint sets the downstream log destination.
func WithLoggingEndpoint(url string) ServiceOption {
	return func(s *Service) { s.loggingEndpoint = url }
}

// WithServiceTags sets free-form tags.
func WithServiceTags(tags []string) ServiceOption {
	return func(s *Service) { s.tags = tags }
}

// WithOtelConfig sets the OpenTelemetry configuration map.
func WithOtelConfig(cfg map[string]string) ServiceOption {
	return func(s *Service) { s.otelConfig = cfg }
}

// WithServiceMetadata sets the free-form metadata map.
func WithServiceMetadata(md map[string]string) ServiceOption {
	return func(s *Service) { s.metadata = md }
}

// ID returns the service identifier.
func (s Service) ID() string { return s.id }

// Name returns the service name.
func (s Service) Name() string { return s.name }

// Env returns the deployment environment.
func (s Service) Env() Environment { return s.env }

// Owners returns the owning teams or people.
func (s Service) Owners() []string { return s.owners }

// HealthURL returns the health-probe endpoint, if any.
func (s Service) HealthURL() string { return s.healthURL }

// LoggingEndpoint returns the downstream log destination, if any.
func (s Service) LoggingEndpoint() string { return s.loggingEndpoint }

// Tags returns the free-form tags.
func (s Service) Tags() []string { return s.tags }

// OtelConfig returns the OpenTelemetry configuration map.
func (s Service) OtelConfig() map[string]string { return s.otelConfig }

// Metadata returns the free-form metadata map.
func (s Service) Metadata() map[string]string { return s.metadata }
