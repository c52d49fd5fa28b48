package ops

import (
	"fmt"
	"strings"
	"time"
)

// RunbookAction is an allow-listed operation with a parameter whitelist
// and execution guardrails.
type RunbookAction struct {
	id               string
	name             string
	description      string
	allowedParams    []string
	cooldownSeconds  int
	requiresApproval bool
	guardrails       map[string]string
}

// NewRunbookAction creates a RunbookAction, validating the id.
func NewRunbookAction(id, name, description string, allowedParams []string, cooldownSeconds int, requiresApproval bool, guardrails map[string]string) (RunbookAction, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return RunbookAction{}, fmt.Errorf("action id must not be empty")
	}
	if cooldownSeconds < 0 {
		return RunbookAction{}, fmt.Errorf("cooldown must not be negative")
	}
	return RunbookAction{
		id:               id,
		name:             name,
		description:      description,
		allowedParams:    allowedParams,
		cooldownSeconds:  cooldownSeconds,
		requiresApproval: requiresApproval,
		guardrails:       guardrails,
	}, nil
}

// ID returns the action identifier.
func (a RunbookAction) ID() string { return a.id }

// Name returns the action name.
func (a RunbookAction) Name() string { return a.name }

// Description returns the action description.
func (a RunbookAction) Description() string { return a.description }

// AllowedParams returns the exhaustive parameter whitelist.
func (a RunbookAction) AllowedParams() []string { return a.allowedParams }

// CooldownSeconds returns the minimum gap between executions.
func (a RunbookAction) CooldownSeconds() int { return a.cooldownSeconds }

// Cooldown returns the cooldown as a duration.
func (a RunbookAction) Cooldown() time.Duration {
	return time.Duration(a.cooldownSeconds) * time.Second
}

// RequiresApproval reports whether execution needs a human approver.
func (a RunbookAction) RequiresApproval() bool { return a.requiresApproval }

// Guardrails returns the free-form guardrail settings.
func (a RunbookAction) Guardrails() map[string]string { return a.guardrails }

// ValidateParams checks every supplied key against the whitelist.
func (a RunbookAction) ValidateParams(params map[string]string) error {
	allowed := make(map[string]bool, len(a.allowedParams))
	for _, p := range a.allowedParams {
		allowed[p] = true
	}
	for key := range params {
		if !allowed[key] {
			return fmt.Errorf("%w: %q", ErrParamNotAllowed, key)
		}
	}
	return nil
}

// JobStatus is a state of a remediation job.
type JobStatus string

// Remediation job states. Completed, failed, and blocked are terminal.
const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobBlocked   JobStatus = "blocked"
)

// Blocked-job outputs.
const (
	OutputCooldownInEffect = "cooldown_in_effect"
	OutputAwaitingApproval = "awaiting_approval"
)

// RemediationJob is one attempt to run an action against a service.
type RemediationJob struct {
	id            string
	incidentID    string
	actionID      string
	serviceID     string
	params        map[string]string
	actor         string
	correlationID string
	status        JobStatus
	startedAt     time.Time
	finishedAt    time.Time
	output        string
	errDetail     string
}

// NewRemediationJob creates a job in pending state.
func NewRemediationJob(id, incidentID, actionID, serviceID string, params map[string]string, actor, correlationID string, startedAt time.Time) (RemediationJob, error) {
	if id == "" {
		return RemediationJob{}, fmt.Errorf("job id must not be empty")
	}
	return RemediationJob{
		id:            id,
		incidentID:    incidentID,
		actionID:      actionID,
		serviceID:     serviceID,
		params:        params,
		actor:         actor,
		correlationID: correlationID,
		status:        JobPending,
		startedAt:     startedAt.UTC(),
	}, nil
}

// ReconstructRemediationJob rebuilds a job from persisted state.
func ReconstructRemediationJob(id, incidentID, actionID, serviceID string, params map[string]string, actor, correlationID string, status JobStatus, startedAt, finishedAt time.Time, output, errDetail string) RemediationJob {
	return RemediationJob{
		id:            id,
		incidentID:    incidentID,
		actionID:      actionID,
		serviceID:     serviceID,
		params:        params,
		actor:         actor,
		correlationID: correlationID,
		status:        status,
		startedAt:     startedAt.UTC(),
		finishedAt:    finishedAt.UTC(),
		output:        output,
		errDetail:     errDetail,
	}
}

// ID returns the job identifier.
func (j RemediationJob) ID() string { return j.id }

// IncidentID returns the target incident.
func (j RemediationJob) IncidentID() string { return j.incidentID }

// ActionID returns the executed action.
func (j RemediationJob) ActionID() string { return j.actionID }

// ServiceID returns the target service.
func (j RemediationJob) ServiceID() string { return j.serviceID }

// Params returns the validated parameters.
func (j RemediationJob) Params() map[string]string { return j.params }

// Actor returns who requested the execution.
func (j RemediationJob) Actor() string { return j.actor }

// CorrelationID returns the originating correlation id, if any.
func (j RemediationJob) CorrelationID() string { return j.correlationID }

// Status returns the current job state.
func (j RemediationJob) Status() JobStatus { return j.status }

// StartedAt returns when the job was created.
func (j RemediationJob) StartedAt() time.Time { return j.startedAt }

// FinishedAt returns when the job reached a terminal state, or the zero
// time for jobs still pending or running.
func (j RemediationJob) FinishedAt() time.Time { return j.finishedAt }

// Output returns the execution output or blocked reason.
func (j RemediationJob) Output() string { return j.output }

// ErrorDetail returns the failure detail for failed jobs.
func (j RemediationJob) ErrorDetail() string { return j.errDetail }

// IsTerminal reports whether the job state is final.
func (j RemediationJob) IsTerminal() bool {
	switch j.status {
	case JobCompleted, JobFailed, JobBlocked:
		return true
	}
	return false
}

func (j *RemediationJob) transition(to JobStatus) error {
	if j.IsTerminal() {
		return fmt.Errorf("job %s already %s", j.id, j.status)
	}
	j.status = to
	return nil
}

// MarkRunning moves the job into running state.
func (j *RemediationJob) MarkRunning() error {
	return j.transition(JobRunning)
}

// MarkCompleted finishes the job successfully with its output.
func (j *RemediationJob) MarkCompleted(output string, finishedAt time.Time) error {
	if err := j.transition(JobCompleted); err != nil {
		return err
	}
	j.output = output
	j.finishedAt = finishedAt.UTC()
	return nil
}

// MarkFailed finishes the job with an error.
func (j *RemediationJob) MarkFailed(detail string, finishedAt time.Time) error {
	if err := j.transition(JobFailed); err != nil {
		return err
	}
	j.errDetail = detail
	j.finishedAt = finishedAt.UTC()
	return nil
}

// MarkBlocked finishes the job without execution, recording why.
func (j *RemediationJob) MarkBlocked(output string, finishedAt time.Time) error {
	if err := j.transition(JobBlocked); err != nil {
		return err
	}
	j.output = output
	j.finishedAt = finishedAt.UTC()
	return nil
}

// AwaitingApproval reports whether the job sits in the approval queue.
func (j RemediationJob) AwaitingApproval() bool {
	return j.status == JobBlocked && j.output == OutputAwaitingApproval
}

// Reopen moves an approval-blocked job back to pending so an approver
// can drive it to execution. Only approval-blocked jobs may reopen.
func (j *RemediationJob) Reopen() error {
	if !j.AwaitingApproval() {
		return fmt.Errorf("%w: job %s is %s", ErrInvalidApprovalTarget, j.id, j.status)
	}
	j.status = JobPending
	j.output = ""
	j.finishedAt = time.Time{}
	return nil
}
