package ledger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hearing-sync/internal/ledger"
)

func TestMarkStepLifecycle(t *testing.T) {
	l := openTestLedger(t)
	id := "abc123def456"

	require.NoError(t, l.MarkStep(id, "transcribe", ledger.StatusRunning, nil))

	steps, err := l.GetSteps(id)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, ledger.StatusRunning, steps[0].Status)
	assert.True(t, steps[0].StartedAt.Valid)
	assert.False(t, steps[0].CompletedAt.Valid)

	require.NoError(t, l.MarkStep(id, "transcribe", ledger.StatusDone, nil))

	steps, err = l.GetSteps(id)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, ledger.StatusDone, steps[0].Status)
	assert.True(t, steps[0].CompletedAt.Valid)
	assert.False(t, steps[0].Error.Valid)
}

func TestMarkStepFailureRecordsError(t *testing.T) {
	l := openTestLedger(t)
	id := "abc123def456"

	require.NoError(t, l.MarkStep(id, "transcribe", ledger.StatusFailed, errors.New("whisper timeout")))

	steps, err := l.GetSteps(id)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, ledger.StatusFailed, steps[0].Status)
	assert.Equal(t, "whisper timeout", steps[0].Error.String)
	assert.True(t, steps[0].CompletedAt.Valid)

	// A retry going back to running clears the stale error.
	require.NoError(t, l.MarkStep(id, "transcribe", ledger.StatusRunning, nil))

	steps, err = l.GetSteps(id)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, ledger.StatusRunning, steps[0].Status)
	assert.False(t, steps[0].Error.Valid)
}

func TestMarkStepPendingLeavesTimestamps(t *testing.T) {
	l := openTestLedger(t)
	id := "abc123def456"

	require.NoError(t, l.MarkStep(id, "transcribe", ledger.StatusDone, nil))
	require.NoError(t, l.MarkStep(id, "transcribe", ledger.StatusPending, nil))

	steps, err := l.GetSteps(id)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, ledger.StatusPending, steps[0].Status)
	assert.True(t, steps[0].StartedAt.Valid, "resetting to pending does not touch timestamps")
	assert.True(t, steps[0].CompletedAt.Valid, "resetting to pending does not touch timestamps")
	assert.False(t, steps[0].Error.Valid)

	done, err := l.IsStepDone(id, "transcribe")
	require.NoError(t, err)
	assert.False(t, done, "a reset step is eligible for re-execution")

	// First sighting as pending records the status only.
	require.NoError(t, l.MarkStep(id, "transcribe_clean", ledger.StatusPending, nil))
	steps, err = l.GetSteps(id)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, ledger.StatusPending, steps[1].Status)
	assert.False(t, steps[1].StartedAt.Valid)
	assert.False(t, steps[1].CompletedAt.Valid)
}

func TestIsStepDone(t *testing.T) {
	l := openTestLedger(t)
	id := "abc123def456"

	done, err := l.IsStepDone(id, "transcribe")
	require.NoError(t, err)
	assert.False(t, done, "unrecorded step is not done")

	require.NoError(t, l.MarkStep(id, "transcribe", ledger.StatusFailed, errors.New("boom")))
	done, err = l.IsStepDone(id, "transcribe")
	require.NoError(t, err)
	assert.False(t, done, "failed step stays eligible for retry")

	require.NoError(t, l.MarkStep(id, "transcribe", ledger.StatusDone, nil))
	done, err = l.IsStepDone(id, "transcribe")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestGetStepsOrdered(t *testing.T) {
	l := openTestLedger(t)
	id := "abc123def456"

	require.NoError(t, l.MarkStep(id, "transcribe", ledger.StatusDone, nil))
	require.NoError(t, l.MarkStep(id, "discover", ledger.StatusDone, nil))
	require.NoError(t, l.MarkStep("ffff00001111", "discover", ledger.StatusDone, nil))

	steps, err := l.GetSteps(id)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "discover", steps[0].Step)
	assert.Equal(t, "transcribe", steps[1].Step)
}
