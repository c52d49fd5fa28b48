// Package ops orchestrates the service registry, log ingestion, health
// probing, incidents, and guarded runbook execution.
package ops

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/praxisops/praxis/domain/ops"
	"github.com/praxisops/praxis/domain/severity"
	"github.com/praxisops/praxis/internal/config"
	"github.com/praxisops/praxis/internal/locks"
	"github.com/praxisops/praxis/internal/log"
)

// Runner executes a runbook action against a service. The controller
// does not define concrete actions; deployments plug in a dispatcher.
type Runner interface {
	Run(ctx context.Context, action ops.RunbookAction, service ops.Service, params map[string]string) (string, error)
}

// NoopRunner acknowledges execution without side effects.
type NoopRunner struct{}

// Run returns a synthetic output naming the action.
func (NoopRunner) Run(_ context.Context, action ops.RunbookAction, service ops.Service, _ map[string]string) (string, error) {
	return fmt.Sprintf("executed %s on %s", action.ID(), service.ID()), nil
}

// Controller is the ops use-case layer.
type Controller struct {
	services  ops.ServiceStore
	incidents ops.IncidentStore
	actions   ops.ActionStore
	jobs      ops.JobStore
	logs      ops.LogSink
	bus       ops.IntegrationBus
	audit     ops.AuditLog
	prober    ops.HealthProber
	runner    Runner
	clock     ops.Clock
	locks     *locks.Keyed
	logger    *log.Logger
}

// ControllerOption configures optional Controller collaborators.
type ControllerOption func(*Controller)

// WithRunner sets the action dispatcher.
func WithRunner(r Runner) ControllerOption {
	return func(c *Controller) { c.runner = r }
}

// WithClock overrides the time source.
func WithClock(clock ops.Clock) ControllerOption {
	return func(c *Controller) { c.clock = clock }
}

// WithProber sets the health prober.
func WithProber(p ops.HealthProber) ControllerOption {
	return func(c *Controller) { c.prober = p }
}

// NewController creates a Controller.
func NewController(
	services ops.ServiceStore,
	incidents ops.IncidentStore,
	actions ops.ActionStore,
	jobs ops.JobStore,
	logs ops.LogSink,
	bus ops.IntegrationBus,
	audit ops.AuditLog,
	logger *log.Logger,
	opts ...ControllerOption,
) *Controller {
	c := &Controller{
		services:  services,
		incidents: incidents,
		actions:   actions,
		jobs:      jobs,
		logs:      logs,
		bus:       bus,
		audit:     audit,
		runner:    NoopRunner{},
		clock:     ops.SystemClock{},
		locks:     locks.NewKeyed(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// publish sends a bus event; bus failures are logged, never surfaced.
func (c *Controller) publish(ctx context.Context, name, correlationID string, payload map[string]string) {
	err := c.bus.Publish(ctx, ops.BusEvent{
		Name:          name,
		TS:            c.clock.Now(),
		CorrelationID: correlationID,
		Payload:       payload,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "bus publish failed", "event", name, "error", err)
	}
}

func (c *Controller) record(ctx context.Context, actor, action, entityID, correlationID string) {
	err := c.audit.Record(ctx, ops.AuditRecord{
		TS:            c.clock.Now(),
		Actor:         actor,
		Action:        action,
		EntityID:      entityID,
		CorrelationID: correlationID,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "audit record failed", "action", action, "error", err)
	}
}

// RegisterService upserts a service by id.
func (c *Controller) RegisterService(ctx context.Context, svc ops.Service, actor, correlationID string) error {
	if err := c.services.Save(ctx, svc); err != nil {
		return fmt.Errorf("register service %s: %w", svc.ID(), err)
	}
	c.publish(ctx, ops.EventBusServiceRegistered, correlationID, map[string]string{
		"service_id": svc.ID(),
		"env":        string(svc.Env()),
	})
	c.record(ctx, actor, "service.registered", svc.ID(), correlationID)
	return nil
}

// GetService returns a registered service.
func (c *Controller) GetService(ctx context.Context, id string) (ops.Service, error) {
	return c.services.Get(ctx, id)
}

// ListServices returns all registered services.
func (c *Controller) ListServices(ctx context.Context) ([]ops.Service, error) {
	return c.services.List(ctx)
}

// IngestLog stores a log record for a registered service.
func (c *Controller) IngestLog(ctx context.Context, record ops.LogRecord, actor string) error {
	if _, err := c.services.Get(ctx, record.ServiceID); err != nil {
		return err
	}
	if record.TS.IsZero() {
		record.TS = c.clock.Now()
	}
	if err := c.logs.Write(ctx, record); err != nil {
		return fmt.Errorf("write log for %s: %w", record.ServiceID, err)
	}
	c.publish(ctx, ops.EventBusLogsIngested, record.CorrelationID, map[string]string{
		"service_id": record.ServiceID,
	})
	c.record(ctx, actor, "logs.ingested", record.ServiceID, record.CorrelationID)
	return nil
}

// SearchLogs returns newest-first records matching the filter.
func (c *Controller) SearchLogs(ctx context.Context, filter ops.LogFilter) ([]ops.LogRecord, error) {
	if filter.Limit <= 0 {
		filter.Limit = config.DefaultLogSearchLimit
	}
	return c.logs.Search(ctx, filter)
}

// CheckHealth probes a registered service's health URL.
func (c *Controller) CheckHealth(ctx context.Context, serviceID string) (ops.HealthReport, error) {
	svc, err := c.services.Get(ctx, serviceID)
	if err != nil {
		return ops.HealthReport{}, err
	}
	if c.prober == nil {
		return ops.HealthReport{ServiceID: serviceID, Status: ops.HealthUnknown, CheckedAt: c.clock.Now()}, nil
	}
	state, detail := c.prober.Probe(ctx, svc.HealthURL())
	return ops.HealthReport{
		ServiceID: serviceID,
		Status:    state,
		Detail:    detail,
		CheckedAt: c.clock.Now(),
	}, nil
}

// RegisterAction adds a runbook action to the allow-list.
func (c *Controller) RegisterAction(ctx context.Context, action ops.RunbookAction, actor string) error {
	if err := c.actions.Save(ctx, action); err != nil {
		return fmt.Errorf("register action %s: %w", action.ID(), err)
	}
	c.record(ctx, actor, "runbook.action_registered", action.ID(), "")
	return nil
}

// ListActions returns the allow-listed actions.
func (c *Controller) ListActions(ctx context.Context) ([]ops.RunbookAction, error) {
	return c.actions.List(ctx)
}

// OpenIncident opens an incident manually.
func (c *Controller) OpenIncident(ctx context.Context, serviceID string, sev severity.Severity, summary, actor, correlationID, traceID string) (ops.Incident, error) {
	if _, err := c.services.Get(ctx, serviceID); err != nil {
		return ops.Incident{}, err
	}

	now := c.clock.Now()
	incident, err := ops.NewIncident(uuid.NewString(), serviceID, sev, summary, ops.TimelineEvent{
		Message:       summary,
		Actor:         actor,
		EventType:     ops.EventOpened,
		TS:            now,
		CorrelationID: correlationID,
		TraceID:       traceID,
	}, correlationID)
	if err != nil {
		return ops.Incident{}, err
	}

	if err := c.incidents.Save(ctx, incident); err != nil {
		return ops.Incident{}, fmt.Errorf("save incident: %w", err)
	}
	c.publish(ctx, ops.EventBusIncidentOpened, correlationID, map[string]string{
		"incident_id": incident.ID(),
		"service_id":  serviceID,
		"severity":    sev.String(),
	})
	c.record(ctx, actor, "incident.opened", incident.ID(), correlationID)
	return incident, nil
}

// OpenFromSignal opens an incident carrying the triggering signal.
func (c *Controller) OpenFromSignal(ctx context.Context, signal ops.Signal, actor string) (ops.Incident, error) {
	if _, err := c.services.Get(ctx, signal.ServiceID); err != nil {
		return ops.Incident{}, err
	}

	now := c.clock.Now()
	if signal.TS.IsZero() {
		signal.TS = now
	}
	incident, err := ops.NewIncident(uuid.NewString(), signal.ServiceID, signal.Severity, signal.Message, ops.TimelineEvent{
		Message:       signal.Message,
		Actor:         actor,
		EventType:     ops.EventSignal,
		TS:            now,
		CorrelationID: signal.CorrelationID,
		TraceID:       signal.TraceID,
	}, signal.CorrelationID)
	if err != nil {
		return ops.Incident{}, err
	}
	incident.AddSignal(signal)

	if err := c.incidents.Save(ctx, incident); err != nil {
		return ops.Incident{}, fmt.Errorf("save incident: %w", err)
	}
	c.publish(ctx, ops.EventBusIncidentSignal, signal.CorrelationID, map[string]string{
		"incident_id": incident.ID(),
		"service_id":  signal.ServiceID,
		"type":        string(signal.Type),
	})
	c.record(ctx, actor, "incident.signal", incident.ID(), signal.CorrelationID)
	return incident, nil
}

// GetIncident returns an incident by id.
func (c *Controller) GetIncident(ctx context.Context, id string) (ops.Incident, error) {
	return c.incidents.Get(ctx, id)
}

// ListIncidents returns incidents, newest first.
func (c *Controller) ListIncidents(ctx context.Context) ([]ops.Incident, error) {
	return c.incidents.List(ctx)
}

// SetIncidentStatus transitions an incident and records the change.
func (c *Controller) SetIncidentStatus(ctx context.Context, incidentID string, status ops.IncidentStatus, actor, correlationID string) (ops.Incident, error) {
	var incident ops.Incident
	err := c.locks.Do("incident:"+incidentID, func() error {
		var err error
		incident, err = c.incidents.Get(ctx, incidentID)
		if err != nil {
			return err
		}
		incident.SetStatus(status, actor, c.clock.Now(), correlationID)
		return c.incidents.Save(ctx, incident)
	})
	if err != nil {
		return ops.Incident{}, err
	}

	c.publish(ctx, ops.EventBusIncidentStatus, correlationID, map[string]string{
		"incident_id": incidentID,
		"status":      string(status),
	})
	c.record(ctx, actor, "incident.status", incidentID, correlationID)
	return incident, nil
}

// Metrics is a public snapshot of controller counts.
type Metrics struct {
	Services  int `json:"services"`
	Incidents int `json:"incidents"`
	Jobs      int `json:"jobs"`
	Audits    int `json:"audits"`
}

// Snapshot returns current controller counts.
func (c *Controller) Snapshot(ctx context.Context) (Metrics, error) {
	services, err := c.services.List(ctx)
	if err != nil {
		return Metrics{}, err
	}
	incidents, err := c.incidents.List(ctx)
	if err != nil {
		return Metrics{}, err
	}
	jobs, err := c.jobs.List(ctx)
	if err != nil {
		return Metrics{}, err
	}
	audits, err := c.audit.List(ctx, 0)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{
		Services:  len(services),
		Incidents: len(incidents),
		Jobs:      len(jobs),
		Audits:    len(audits),
	}, nil
}
