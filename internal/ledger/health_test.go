package ledger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordScraperRunSuccessResetsFailures(t *testing.T) {
	l := openTestLedger(t)

	scrapeErr := errors.New("status 503")
	require.NoError(t, l.RecordScraperRun("senate.banking", "website", 0, scrapeErr))
	require.NoError(t, l.RecordScraperRun("senate.banking", "website", 0, scrapeErr))

	failing, err := l.GetFailingScrapers(2)
	require.NoError(t, err)
	require.Len(t, failing, 1)
	assert.Equal(t, 2, failing[0].ConsecutiveFailures)
	assert.True(t, failing[0].LastFailure.Valid)
	assert.False(t, failing[0].LastSuccess.Valid)

	require.NoError(t, l.RecordScraperRun("senate.banking", "website", 7, nil))

	failing, err = l.GetFailingScrapers(1)
	require.NoError(t, err)
	assert.Empty(t, failing, "a success resets the consecutive failure counter")
}

func TestGetFailingScrapersThresholdAndOrder(t *testing.T) {
	l := openTestLedger(t)

	scrapeErr := errors.New("timeout")
	for i := 0; i < 5; i++ {
		require.NoError(t, l.RecordScraperRun("house.judiciary", "video", 0, scrapeErr))
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, l.RecordScraperRun("senate.banking", "website", 0, scrapeErr))
	}
	require.NoError(t, l.RecordScraperRun("all", "congress_api", 0, scrapeErr))

	failing, err := l.GetFailingScrapers(3)
	require.NoError(t, err)
	require.Len(t, failing, 2)
	assert.Equal(t, "house.judiciary", failing[0].CommitteeKey, "worst first")
	assert.Equal(t, 5, failing[0].ConsecutiveFailures)
	assert.Equal(t, "senate.banking", failing[1].CommitteeKey)
}
