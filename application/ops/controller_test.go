package ops

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisops/praxis/domain/ops"
	"github.com/praxisops/praxis/domain/severity"
	"github.com/praxisops/praxis/infrastructure/bus"
	"github.com/praxisops/praxis/infrastructure/memory"
	"github.com/praxisops/praxis/internal/log"
)

// fakeClock advances on demand.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

// failingRunner always errors.
type failingRunner struct{}

func (failingRunner) Run(context.Context, ops.RunbookAction, ops.Service, map[string]string) (string, error) {
	return "", errors.New("dispatch failed")
}

type fixture struct {
	controller *Controller
	bus        *bus.Memory
	audit      *memory.AuditLog
	clock      *fakeClock
	logs       *memory.LogSink
}

func newFixture(t *testing.T, opts ...ControllerOption) *fixture {
	t.Helper()
	f := &fixture{
		bus:   bus.NewMemory(),
		audit: memory.NewAuditLog(),
		clock: &fakeClock{now: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)},
		logs:  memory.NewLogSink(),
	}
	opts = append([]ControllerOption{WithClock(f.clock)}, opts...)
	f.controller = NewController(
		memory.NewServiceStore(),
		memory.NewIncidentStore(),
		memory.NewActionStore(),
		memory.NewJobStore(),
		f.logs,
		f.bus,
		f.audit,
		log.New(log.FormatText, "ERROR"),
		opts...,
	)
	return f
}

func registerService(t *testing.T, f *fixture, id string) {
	t.Helper()
	svc, err := ops.NewService(id, id, ops.EnvProd)
	require.NoError(t, err)
	require.NoError(t, f.controller.RegisterService(context.Background(), svc, "alice", "corr-1"))
}

func registerAction(t *testing.T, f *fixture, id string, cooldown int, approval bool, params ...string) {
	t.Helper()
	action, err := ops.NewRunbookAction(id, id, "", params, cooldown, approval, nil)
	require.NoError(t, err)
	require.NoError(t, f.controller.RegisterAction(context.Background(), action, "alice"))
}

func openIncident(t *testing.T, f *fixture, serviceID string) ops.Incident {
	t.Helper()
	incident, err := f.controller.OpenIncident(context.Background(), serviceID, severity.High, "db latency", "alice", "corr-1", "")
	require.NoError(t, err)
	return incident
}

func TestRegisterServicePublishesAndAudits(t *testing.T) {
	f := newFixture(t)
	registerService(t, f, "svc-1")

	assert.Equal(t, []string{ops.EventBusServiceRegistered}, f.bus.Names())
	assert.Equal(t, 1, f.audit.Len())
}

func TestIngestLogUnknownService(t *testing.T) {
	f := newFixture(t)

	err := f.controller.IngestLog(context.Background(), ops.LogRecord{ServiceID: "ghost", Message: "hi"}, "alice")
	assert.ErrorIs(t, err, ops.ErrUnknownService)
}

func TestIngestAndSearchLogsNewestFirst(t *testing.T) {
	f := newFixture(t)
	registerService(t, f, "svc-1")
	ctx := context.Background()

	require.NoError(t, f.controller.IngestLog(ctx, ops.LogRecord{ServiceID: "svc-1", Level: "error", Message: "first"}, "alice"))
	require.NoError(t, f.controller.IngestLog(ctx, ops.LogRecord{ServiceID: "svc-1", Level: "error", Message: "second"}, "alice"))

	records, err := f.controller.SearchLogs(ctx, ops.LogFilter{ServiceID: "svc-1"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "second", records[0].Message)
	assert.Contains(t, f.bus.Names(), ops.EventBusLogsIngested)
}

func TestOpenIncidentUnknownService(t *testing.T) {
	f := newFixture(t)

	_, err := f.controller.OpenIncident(context.Background(), "ghost", severity.High, "s", "alice", "", "")
	assert.ErrorIs(t, err, ops.ErrUnknownService)
}

func TestOpenFromSignalAttachesSignal(t *testing.T) {
	f := newFixture(t)
	registerService(t, f, "svc-1")

	incident, err := f.controller.OpenFromSignal(context.Background(), ops.Signal{
		ServiceID: "svc-1",
		Type:      ops.SignalAlert,
		Severity:  severity.Critical,
		Message:   "p99 exploded",
	}, "alerter")
	require.NoError(t, err)

	assert.Equal(t, ops.IncidentOpen, incident.Status())
	require.Len(t, incident.Signals(), 1)
	assert.Equal(t, ops.EventSignal, incident.Timeline()[0].EventType)
	assert.Contains(t, f.bus.Names(), ops.EventBusIncidentSignal)
}

func TestExecuteRunbookHappyPath(t *testing.T) {
	f := newFixture(t)
	registerService(t, f, "svc-1")
	registerAction(t, f, "restart", 0, false, "reason")
	incident := openIncident(t, f, "svc-1")
	ctx := context.Background()

	job, err := f.controller.ExecuteRunbook(ctx, ExecuteRequest{
		ServiceID:  "svc-1",
		IncidentID: incident.ID(),
		ActionID:   "restart",
		Params:     map[string]string{"reason": "oom"},
		Actor:      "alice",
	})
	require.NoError(t, err)

	assert.Equal(t, ops.JobCompleted, job.Status())
	assert.NotEmpty(t, job.Output())
	assert.False(t, job.FinishedAt().Before(job.StartedAt()))

	updated, err := f.controller.GetIncident(ctx, incident.ID())
	require.NoError(t, err)
	last := updated.Timeline()[len(updated.Timeline())-1]
	assert.Equal(t, ops.EventRunbookExecuted, last.EventType)
	assert.Contains(t, updated.RunbookRefs(), job.ID())
	assert.Contains(t, f.bus.Names(), ops.EventBusRunbookExecuted)
}

func TestExecuteRunbookParamWhitelist(t *testing.T) {
	f := newFixture(t)
	registerService(t, f, "svc-1")
	registerAction(t, f, "restart", 0, false, "reason")
	incident := openIncident(t, f, "svc-1")

	_, err := f.controller.ExecuteRunbook(context.Background(), ExecuteRequest{
		ServiceID:  "svc-1",
		IncidentID: incident.ID(),
		ActionID:   "restart",
		Params:     map[string]string{"reason": "oom", "target": "pod-7"},
		Actor:      "alice",
	})
	assert.ErrorIs(t, err, ops.ErrParamNotAllowed)
}

func TestExecuteRunbookUnknownAction(t *testing.T) {
	f := newFixture(t)
	registerService(t, f, "svc-1")
	incident := openIncident(t, f, "svc-1")

	_, err := f.controller.ExecuteRunbook(context.Background(), ExecuteRequest{
		ServiceID:  "svc-1",
		IncidentID: incident.ID(),
		ActionID:   "rm-rf",
		Actor:      "alice",
	})
	assert.ErrorIs(t, err, ops.ErrUnknownAction)
}

func TestExecuteRunbookCooldownBlocksSecondRun(t *testing.T) {
	f := newFixture(t)
	registerService(t, f, "svc-1")
	registerAction(t, f, "restart", 300, false, "reason")
	incident := openIncident(t, f, "svc-1")
	ctx := context.Background()

	first, err := f.controller.ExecuteRunbook(ctx, ExecuteRequest{
		ServiceID: "svc-1", IncidentID: incident.ID(), ActionID: "restart", Actor: "alice",
	})
	require.NoError(t, err)
	require.Equal(t, ops.JobCompleted, first.Status())

	f.clock.Advance(30 * time.Second)
	second, err := f.controller.ExecuteRunbook(ctx, ExecuteRequest{
		ServiceID: "svc-1", IncidentID: incident.ID(), ActionID: "restart", Actor: "alice",
	})
	require.NoError(t, err)

	assert.Equal(t, ops.JobBlocked, second.Status())
	assert.Equal(t, ops.OutputCooldownInEffect, second.Output())
	assert.Contains(t, f.bus.Names(), ops.EventBusRunbookCooldownBlocked)

	updated, err := f.controller.GetIncident(ctx, incident.ID())
	require.NoError(t, err)
	last := updated.Timeline()[len(updated.Timeline())-1]
	assert.Equal(t, ops.EventRunbookBlocked, last.EventType)

	// After the window elapses the action runs again.
	f.clock.Advance(301 * time.Second)
	third, err := f.controller.ExecuteRunbook(ctx, ExecuteRequest{
		ServiceID: "svc-1", IncidentID: incident.ID(), ActionID: "restart", Actor: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, ops.JobCompleted, third.Status())
}

func TestBlockedJobDoesNotExtendCooldown(t *testing.T) {
	f := newFixture(t)
	registerService(t, f, "svc-1")
	registerAction(t, f, "restart", 60, false)
	incident := openIncident(t, f, "svc-1")
	ctx := context.Background()

	_, err := f.controller.ExecuteRunbook(ctx, ExecuteRequest{
		ServiceID: "svc-1", IncidentID: incident.ID(), ActionID: "restart", Actor: "alice",
	})
	require.NoError(t, err)

	f.clock.Advance(45 * time.Second)
	blocked, err := f.controller.ExecuteRunbook(ctx, ExecuteRequest{
		ServiceID: "svc-1", IncidentID: incident.ID(), ActionID: "restart", Actor: "alice",
	})
	require.NoError(t, err)
	require.Equal(t, ops.JobBlocked, blocked.Status())

	// 61s after the completed job, the blocked attempt must not count.
	f.clock.Advance(16 * time.Second)
	again, err := f.controller.ExecuteRunbook(ctx, ExecuteRequest{
		ServiceID: "svc-1", IncidentID: incident.ID(), ActionID: "restart", Actor: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, ops.JobCompleted, again.Status())
}

func TestApprovalGate(t *testing.T) {
	f := newFixture(t)
	registerService(t, f, "svc-1")
	registerAction(t, f, "drain", 0, true)
	incident := openIncident(t, f, "svc-1")
	ctx := context.Background()

	job, err := f.controller.ExecuteRunbook(ctx, ExecuteRequest{
		ServiceID: "svc-1", IncidentID: incident.ID(), ActionID: "drain", Actor: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, ops.JobBlocked, job.Status())
	assert.Equal(t, ops.OutputAwaitingApproval, job.Output())
	assert.Contains(t, f.bus.Names(), ops.EventBusRunbookAwaitingApproval)

	approved, err := f.controller.ApproveRunbook(ctx, job.ID(), "boss", "go ahead")
	require.NoError(t, err)
	assert.Equal(t, ops.JobCompleted, approved.Status())
	assert.Contains(t, f.bus.Names(), ops.EventBusRunbookApproved)

	updated, err := f.controller.GetIncident(ctx, incident.ID())
	require.NoError(t, err)
	var sawApproved bool
	for _, e := range updated.Timeline() {
		if e.EventType == ops.EventRunbookApproved {
			sawApproved = true
		}
	}
	assert.True(t, sawApproved)
}

func TestApproveRejectsNonApprovalTargets(t *testing.T) {
	f := newFixture(t)
	registerService(t, f, "svc-1")
	registerAction(t, f, "restart", 0, false)
	incident := openIncident(t, f, "svc-1")
	ctx := context.Background()

	job, err := f.controller.ExecuteRunbook(ctx, ExecuteRequest{
		ServiceID: "svc-1", IncidentID: incident.ID(), ActionID: "restart", Actor: "alice",
	})
	require.NoError(t, err)

	_, err = f.controller.ApproveRunbook(ctx, job.ID(), "boss", "")
	assert.ErrorIs(t, err, ops.ErrInvalidApprovalTarget)
}

func TestCooldownPrecedesApproval(t *testing.T) {
	f := newFixture(t)
	registerService(t, f, "svc-1")
	registerAction(t, f, "drain", 300, true)
	incident := openIncident(t, f, "svc-1")
	ctx := context.Background()

	// First attempt enters the approval queue, then runs on approval.
	pending, err := f.controller.ExecuteRunbook(ctx, ExecuteRequest{
		ServiceID: "svc-1", IncidentID: incident.ID(), ActionID: "drain", Actor: "alice",
	})
	require.NoError(t, err)
	_, err = f.controller.ApproveRunbook(ctx, pending.ID(), "boss", "")
	require.NoError(t, err)

	// Within the cooldown window a new attempt is cooldown-blocked, not
	// queued for approval.
	f.clock.Advance(10 * time.Second)
	blocked, err := f.controller.ExecuteRunbook(ctx, ExecuteRequest{
		ServiceID: "svc-1", IncidentID: incident.ID(), ActionID: "drain", Actor: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, ops.JobBlocked, blocked.Status())
	assert.Equal(t, ops.OutputCooldownInEffect, blocked.Output())
}

func TestApprovalIgnoresCooldownFromEarlierApproval(t *testing.T) {
	f := newFixture(t)
	registerService(t, f, "svc-1")
	registerAction(t, f, "drain", 300, true)
	incident := openIncident(t, f, "svc-1")
	ctx := context.Background()

	// Two attempts enter the approval queue before either runs.
	first, err := f.controller.ExecuteRunbook(ctx, ExecuteRequest{
		ServiceID: "svc-1", IncidentID: incident.ID(), ActionID: "drain", Actor: "alice",
	})
	require.NoError(t, err)
	second, err := f.controller.ExecuteRunbook(ctx, ExecuteRequest{
		ServiceID: "svc-1", IncidentID: incident.ID(), ActionID: "drain", Actor: "alice",
	})
	require.NoError(t, err)
	require.Equal(t, ops.OutputAwaitingApproval, second.Output())

	approved, err := f.controller.ApproveRunbook(ctx, first.ID(), "boss", "")
	require.NoError(t, err)
	require.Equal(t, ops.JobCompleted, approved.Status())

	// The second approval still executes; cooldown gates submission only.
	f.clock.Advance(10 * time.Second)
	also, err := f.controller.ApproveRunbook(ctx, second.ID(), "boss", "")
	require.NoError(t, err)
	assert.Equal(t, ops.JobCompleted, also.Status())
	assert.NotEqual(t, ops.OutputCooldownInEffect, also.Output())
}

func TestAutoAdvanceMitigatingToMonitoring(t *testing.T) {
	f := newFixture(t)
	registerService(t, f, "svc-1")
	registerAction(t, f, "restart", 0, false)
	incident := openIncident(t, f, "svc-1")
	ctx := context.Background()

	_, err := f.controller.SetIncidentStatus(ctx, incident.ID(), ops.IncidentMitigating, "alice", "")
	require.NoError(t, err)

	_, err = f.controller.ExecuteRunbook(ctx, ExecuteRequest{
		ServiceID: "svc-1", IncidentID: incident.ID(), ActionID: "restart", Actor: "alice",
	})
	require.NoError(t, err)

	updated, err := f.controller.GetIncident(ctx, incident.ID())
	require.NoError(t, err)
	assert.Equal(t, ops.IncidentMonitoring, updated.Status())
}

func TestNoAutoAdvanceFromOpen(t *testing.T) {
	f := newFixture(t)
	registerService(t, f, "svc-1")
	registerAction(t, f, "restart", 0, false)
	incident := openIncident(t, f, "svc-1")
	ctx := context.Background()

	_, err := f.controller.ExecuteRunbook(ctx, ExecuteRequest{
		ServiceID: "svc-1", IncidentID: incident.ID(), ActionID: "restart", Actor: "alice",
	})
	require.NoError(t, err)

	updated, err := f.controller.GetIncident(ctx, incident.ID())
	require.NoError(t, err)
	assert.Equal(t, ops.IncidentOpen, updated.Status())
}

func TestFailedRunbookDoesNotAdvanceIncident(t *testing.T) {
	f := newFixture(t, WithRunner(failingRunner{}))
	registerService(t, f, "svc-1")
	registerAction(t, f, "restart", 0, false)
	incident := openIncident(t, f, "svc-1")
	ctx := context.Background()

	_, err := f.controller.SetIncidentStatus(ctx, incident.ID(), ops.IncidentMitigating, "alice", "")
	require.NoError(t, err)

	job, err := f.controller.ExecuteRunbook(ctx, ExecuteRequest{
		ServiceID: "svc-1", IncidentID: incident.ID(), ActionID: "restart", Actor: "alice",
	})
	require.NoError(t, err)
	assert.Equal(t, ops.JobFailed, job.Status())
	assert.Equal(t, "dispatch failed", job.ErrorDetail())

	updated, err := f.controller.GetIncident(ctx, incident.ID())
	require.NoError(t, err)
	assert.Equal(t, ops.IncidentMitigating, updated.Status())
	assert.NotContains(t, f.bus.Names(), ops.EventBusRunbookExecuted)
}

func TestSnapshotCounts(t *testing.T) {
	f := newFixture(t)
	registerService(t, f, "svc-1")
	openIncident(t, f, "svc-1")

	metrics, err := f.controller.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.Services)
	assert.Equal(t, 1, metrics.Incidents)
	assert.Equal(t, 0, metrics.Jobs)
	assert.GreaterOrEqual(t, metrics.Audits, 2)
}

func TestCheckHealthUnknownWithoutProber(t *testing.T) {
	f := newFixture(t)
	registerService(t, f, "svc-1")

	report, err := f.controller.CheckHealth(context.Background(), "svc-1")
	require.NoError(t, err)
	assert.Equal(t, ops.HealthUnknown, report.Status)

	_, err = f.controller.CheckHealth(context.Background(), "ghost")
	assert.ErrorIs(t, err, ops.ErrUnknownService)
}
