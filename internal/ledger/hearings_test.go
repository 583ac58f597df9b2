package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hearing-sync/internal/domain"
)

func TestRecordHearingRoundTrip(t *testing.T) {
	l := openTestLedger(t)
	h := sampleHearing()

	require.NoError(t, l.RecordHearing(h))

	rec, err := l.GetHearing(h.ID())
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, h.ID(), rec.ID)
	assert.Equal(t, "senate.banking", rec.CommitteeKey)
	assert.Equal(t, "2026-03-12", rec.Date)
	assert.Equal(t, h.Title, rec.Title)
	assert.Equal(t, h.Slug(), rec.Slug)
	assert.Equal(t, h.Sources.WebsiteURL, rec.Sources.WebsiteURL)
	assert.NotEmpty(t, rec.DiscoveredAt, "first sighting should stamp discovered_at")
	assert.Empty(t, rec.ProcessedAt)
}

func TestRecordHearingKeepsLearnedEventID(t *testing.T) {
	l := openTestLedger(t)

	h := sampleHearing()
	h.Sources.CongressEventID = "EVT-117744"
	require.NoError(t, l.RecordHearing(h))

	// The same hearing seen again from a source that does not carry the
	// congress event id must not clobber the one already learned.
	again := sampleHearing()
	again.Sources = domain.Sources{YouTubeURL: "https://youtube.com/watch?v=abc"}
	require.NoError(t, l.RecordHearing(again))

	rec, err := l.GetHearing(h.ID())
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "EVT-117744", rec.CongressEventID)
	assert.Equal(t, "https://youtube.com/watch?v=abc", rec.Sources.YouTubeURL)
}

func TestGetHearingAbsent(t *testing.T) {
	l := openTestLedger(t)

	rec, err := l.GetHearing("000000000000")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestFindByCongressEventID(t *testing.T) {
	l := openTestLedger(t)

	h := sampleHearing()
	h.Sources.CongressEventID = "EVT-5"
	require.NoError(t, l.RecordHearing(h))

	rec, err := l.FindByCongressEventID("EVT-5")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, h.ID(), rec.ID)

	rec, err = l.FindByCongressEventID("EVT-404")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestFindByCommitteeDate(t *testing.T) {
	l := openTestLedger(t)

	first := sampleHearing()
	second := sampleHearing()
	second.Title = "Nomination Hearing for the Comptroller of the Currency"
	other := sampleHearing()
	other.CommitteeKey = "house.judiciary"

	for _, h := range []domain.Hearing{first, second, other} {
		require.NoError(t, l.RecordHearing(h))
	}

	recs, err := l.FindByCommitteeDate("senate.banking", "2026-03-12")
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = l.FindByCommitteeDate("senate.banking", "2026-03-13")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestUnprocessedAndMarkProcessed(t *testing.T) {
	l := openTestLedger(t)

	older := sampleHearing()
	older.Date = "2026-03-10"
	newer := sampleHearing()
	newer.Date = "2026-03-14"

	require.NoError(t, l.RecordHearing(older))
	require.NoError(t, l.RecordHearing(newer))

	recs, err := l.GetUnprocessedHearings()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "2026-03-14", recs[0].Date, "most recent hearing date first")

	done, err := l.IsProcessed(newer.ID())
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, l.MarkProcessed(newer.ID()))

	done, err = l.IsProcessed(newer.ID())
	require.NoError(t, err)
	assert.True(t, done)

	recs, err = l.GetUnprocessedHearings()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, older.ID(), recs[0].ID)

	done, err = l.IsProcessed("000000000000")
	require.NoError(t, err)
	assert.False(t, done, "unknown hearing is simply not processed")
}

func TestListHearings(t *testing.T) {
	l := openTestLedger(t)

	recs, err := l.ListHearings()
	require.NoError(t, err)
	assert.Empty(t, recs)

	require.NoError(t, l.RecordHearing(sampleHearing()))

	recs, err = l.ListHearings()
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
