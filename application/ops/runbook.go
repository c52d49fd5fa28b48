package ops

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/praxisops/praxis/domain/ops"
)

// ExecuteRequest carries one runbook execution attempt.
type ExecuteRequest struct {
	ServiceID     string
	IncidentID    string
	ActionID      string
	Params        map[string]string
	Actor         string
	CorrelationID string
}

// ExecuteRunbook validates, guards, and runs an allow-listed action.
// Cooldown is checked before the approval gate: a cooldown-blocked job
// never enters the approval queue.
func (c *Controller) ExecuteRunbook(ctx context.Context, req ExecuteRequest) (ops.RemediationJob, error) {
	service, err := c.services.Get(ctx, req.ServiceID)
	if err != nil {
		return ops.RemediationJob{}, err
	}
	incident, err := c.incidents.Get(ctx, req.IncidentID)
	if err != nil {
		return ops.RemediationJob{}, err
	}
	action, err := c.actions.Get(ctx, req.ActionID)
	if err != nil {
		return ops.RemediationJob{}, err
	}
	if err := action.ValidateParams(req.Params); err != nil {
		return ops.RemediationJob{}, err
	}

	job, err := ops.NewRemediationJob(uuid.NewString(), incident.ID(), action.ID(), service.ID(), req.Params, req.Actor, req.CorrelationID, c.clock.Now())
	if err != nil {
		return ops.RemediationJob{}, err
	}

	var blocked bool
	pairKey := "cooldown:" + service.ID() + "|" + action.ID()
	err = c.locks.Do(pairKey, func() error {
		inCooldown, cErr := c.inCooldown(ctx, service.ID(), action.ID(), action)
		if cErr != nil {
			return cErr
		}
		if !inCooldown {
			return nil
		}
		blocked = true
		if bErr := job.MarkBlocked(ops.OutputCooldownInEffect, c.clock.Now()); bErr != nil {
			return bErr
		}
		return c.jobs.Save(ctx, job)
	})
	if err != nil {
		return ops.RemediationJob{}, err
	}
	if blocked {
		c.recordBlocked(ctx, &incident, job, ops.EventRunbookBlocked, ops.EventBusRunbookCooldownBlocked,
			fmt.Sprintf("runbook %s blocked by cooldown", action.ID()))
		return job, nil
	}

	if action.RequiresApproval() {
		if err := job.MarkBlocked(ops.OutputAwaitingApproval, c.clock.Now()); err != nil {
			return ops.RemediationJob{}, err
		}
		if err := c.jobs.Save(ctx, job); err != nil {
			return ops.RemediationJob{}, fmt.Errorf("save job: %w", err)
		}
		c.recordBlocked(ctx, &incident, job, ops.EventRunbookPending, ops.EventBusRunbookAwaitingApproval,
			fmt.Sprintf("runbook %s awaiting approval", action.ID()))
		return job, nil
	}

	return c.run(ctx, job, action, service, incident, ops.EventRunbookExecuted, ops.EventBusRunbookExecuted)
}

// ApproveRunbook releases an approval-blocked job and executes it.
// Cooldown applies only when a job is first submitted: an approved job
// runs even if other executions landed while it waited.
func (c *Controller) ApproveRunbook(ctx context.Context, jobID, approver, note string) (ops.RemediationJob, error) {
	job, err := c.jobs.Get(ctx, jobID)
	if err != nil {
		return ops.RemediationJob{}, err
	}
	if err := job.Reopen(); err != nil {
		return ops.RemediationJob{}, err
	}

	service, err := c.services.Get(ctx, job.ServiceID())
	if err != nil {
		return ops.RemediationJob{}, err
	}
	incident, err := c.incidents.Get(ctx, job.IncidentID())
	if err != nil {
		return ops.RemediationJob{}, err
	}
	action, err := c.actions.Get(ctx, job.ActionID())
	if err != nil {
		return ops.RemediationJob{}, err
	}

	executed, err := c.run(ctx, job, action, service, incident, ops.EventRunbookApproved, ops.EventBusRunbookApproved)
	if err != nil {
		return executed, err
	}
	c.record(ctx, approver, "runbook.approved", executed.ID(), executed.CorrelationID())
	if note != "" {
		c.logger.InfoContext(ctx, "runbook approved", "job_id", executed.ID(), "approver", approver, "note", note)
	}
	return executed, nil
}

// GetJob returns a remediation job by id.
func (c *Controller) GetJob(ctx context.Context, id string) (ops.RemediationJob, error) {
	return c.jobs.Get(ctx, id)
}

// ListJobs returns remediation jobs, newest first.
func (c *Controller) ListJobs(ctx context.Context) ([]ops.RemediationJob, error) {
	return c.jobs.List(ctx)
}

// inCooldown reports whether any executed job for the pair finished
// within the action's cooldown window. Blocked jobs never executed and
// do not extend the window.
func (c *Controller) inCooldown(ctx context.Context, serviceID, actionID string, action ops.RunbookAction) (bool, error) {
	if action.CooldownSeconds() <= 0 {
		return false, nil
	}
	cutoff := c.clock.Now().Add(-action.Cooldown())
	finished, err := c.jobs.FinishedSince(ctx, serviceID, actionID, cutoff)
	if err != nil {
		return false, fmt.Errorf("scan cooldown window: %w", err)
	}
	for _, prior := range finished {
		if prior.Status() == ops.JobCompleted || prior.Status() == ops.JobFailed {
			return true, nil
		}
	}
	return false, nil
}

// run drives a job through running to a terminal state and updates the
// incident on success.
func (c *Controller) run(ctx context.Context, job ops.RemediationJob, action ops.RunbookAction, service ops.Service, incident ops.Incident, eventType ops.EventType, busEvent string) (ops.RemediationJob, error) {
	if err := job.MarkRunning(); err != nil {
		return ops.RemediationJob{}, err
	}
	if err := c.jobs.Save(ctx, job); err != nil {
		return ops.RemediationJob{}, fmt.Errorf("save job: %w", err)
	}

	output, runErr := c.runner.Run(ctx, action, service, job.Params())
	if runErr != nil {
		if err := job.MarkFailed(runErr.Error(), c.clock.Now()); err != nil {
			return ops.RemediationJob{}, err
		}
		if err := c.jobs.Save(ctx, job); err != nil {
			return ops.RemediationJob{}, fmt.Errorf("save job: %w", err)
		}
		c.logger.WarnContext(ctx, "runbook failed",
			"job_id", job.ID(),
			"action_id", action.ID(),
			"error", runErr,
		)
		c.record(ctx, job.Actor(), "runbook.failed", job.ID(), job.CorrelationID())
		return job, nil
	}

	if output == "" {
		output = "ok"
	}
	if err := job.MarkCompleted(output, c.clock.Now()); err != nil {
		return ops.RemediationJob{}, err
	}
	if err := c.jobs.Save(ctx, job); err != nil {
		return ops.RemediationJob{}, fmt.Errorf("save job: %w", err)
	}

	err := c.locks.Do("incident:"+incident.ID(), func() error {
		current, gErr := c.incidents.Get(ctx, incident.ID())
		if gErr != nil {
			return gErr
		}
		current.AddRunbookRef(job.ID())
		current.AddEvent(ops.TimelineEvent{
			Message:       fmt.Sprintf("runbook %s executed: %s", action.ID(), output),
			Actor:         job.Actor(),
			EventType:     eventType,
			TS:            c.clock.Now(),
			CorrelationID: job.CorrelationID(),
		})
		// A successful runbook while mitigating advances the incident
		// to monitoring.
		if current.Status() == ops.IncidentMitigating {
			current.SetStatus(ops.IncidentMonitoring, "system", c.clock.Now(), job.CorrelationID())
		}
		return c.incidents.Save(ctx, current)
	})
	if err != nil {
		return ops.RemediationJob{}, fmt.Errorf("update incident %s: %w", incident.ID(), err)
	}

	c.publish(ctx, busEvent, job.CorrelationID(), map[string]string{
		"job_id":      job.ID(),
		"incident_id": incident.ID(),
		"action_id":   action.ID(),
		"service_id":  service.ID(),
	})
	c.record(ctx, job.Actor(), "runbook.executed", job.ID(), job.CorrelationID())
	return job, nil
}

// recordBlocked appends the blocked timeline event, publishes the bus
// event, and audits.
func (c *Controller) recordBlocked(ctx context.Context, incident *ops.Incident, job ops.RemediationJob, eventType ops.EventType, busEvent, message string) {
	err := c.locks.Do("incident:"+incident.ID(), func() error {
		current, gErr := c.incidents.Get(ctx, incident.ID())
		if gErr != nil {
			return gErr
		}
		current.AddRunbookRef(job.ID())
		current.AddEvent(ops.TimelineEvent{
			Message:       message,
			Actor:         job.Actor(),
			EventType:     eventType,
			TS:            c.clock.Now(),
			CorrelationID: job.CorrelationID(),
		})
		*incident = current
		return c.incidents.Save(ctx, current)
	})
	if err != nil {
		c.logger.WarnContext(ctx, "incident update failed", "incident_id", incident.ID(), "error", err)
	}

	c.publish(ctx, busEvent, job.CorrelationID(), map[string]string{
		"job_id":      job.ID(),
		"incident_id": incident.ID(),
		"action_id":   job.ActionID(),
		"service_id":  job.ServiceID(),
	})
	c.record(ctx, job.Actor(), busEvent, job.ID(), job.CorrelationID())
}
