package ops

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateParamsWhitelist(t *testing.T) {
	action, err := NewRunbookAction("restart", "Restart", "", []string{"reason", "force"}, 300, false, nil)
	require.NoError(t, err)

	assert.NoError(t, action.ValidateParams(map[string]string{"reason": "oom"}))
	assert.NoError(t, action.ValidateParams(nil))

	err = action.ValidateParams(map[string]string{"reason": "oom", "target": "pod"})
	assert.ErrorIs(t, err, ErrParamNotAllowed)
}

func TestJobTerminalStatesAreFinal(t *testing.T) {
	start := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	job, err := NewRemediationJob("job-1", "inc-1", "restart", "svc-1", nil, "alice", "", start)
	require.NoError(t, err)

	require.NoError(t, job.MarkRunning())
	require.NoError(t, job.MarkCompleted("done", start.Add(time.Second)))

	assert.Equal(t, JobCompleted, job.Status())
	assert.True(t, job.FinishedAt().After(job.StartedAt()) || job.FinishedAt().Equal(job.StartedAt()))
	assert.Error(t, job.MarkFailed("too late", start.Add(2*time.Second)))
	assert.Error(t, job.MarkRunning())
}

func TestJobBlockedOutputs(t *testing.T) {
	start := time.Now()
	job, err := NewRemediationJob("job-2", "inc-1", "drain", "svc-1", nil, "alice", "", start)
	require.NoError(t, err)

	require.NoError(t, job.MarkBlocked(OutputAwaitingApproval, start))
	assert.True(t, job.AwaitingApproval())

	cool, err := NewRemediationJob("job-3", "inc-1", "restart", "svc-1", nil, "alice", "", start)
	require.NoError(t, err)
	require.NoError(t, cool.MarkBlocked(OutputCooldownInEffect, start))
	assert.False(t, cool.AwaitingApproval())
}

func TestReopenOnlyFromApprovalQueue(t *testing.T) {
	start := time.Now()
	job, err := NewRemediationJob("job-4", "inc-1", "drain", "svc-1", nil, "alice", "", start)
	require.NoError(t, err)
	require.NoError(t, job.MarkBlocked(OutputAwaitingApproval, start))

	require.NoError(t, job.Reopen())
	assert.Equal(t, JobPending, job.Status())
	assert.Empty(t, job.Output())
	assert.True(t, job.FinishedAt().IsZero())

	blocked, err := NewRemediationJob("job-5", "inc-1", "restart", "svc-1", nil, "alice", "", start)
	require.NoError(t, err)
	require.NoError(t, blocked.MarkBlocked(OutputCooldownInEffect, start))
	assert.ErrorIs(t, blocked.Reopen(), ErrInvalidApprovalTarget)
}

func TestNewRunbookActionRejectsNegativeCooldown(t *testing.T) {
	_, err := NewRunbookAction("x", "X", "", nil, -1, false, nil)
	assert.Error(t, err)
}
