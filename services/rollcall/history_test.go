package rollcall

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestHistory(t *testing.T) *History {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	history, err := NewHistory(db)
	require.NoError(t, err)
	return history
}

func TestHistoryRecordAndList(t *testing.T) {
	history := newTestHistory(t)
	ctx := context.Background()

	started := time.Date(2023, 5, 13, 9, 0, 0, 0, time.UTC)
	id, err := history.Record(ctx, HistoryEntry{
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Minute),
		ClassDate:  "2023/05/13",
		Result:     Result{Code: Succeeded},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	entries, err := history.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, id, entries[0].ID)
	require.Equal(t, "2023/05/13", entries[0].ClassDate)
	require.Equal(t, Succeeded, entries[0].Result.Code)
	require.True(t, entries[0].StartedAt.Equal(started))
}

func TestHistoryListNewestFirst(t *testing.T) {
	history := newTestHistory(t)
	ctx := context.Background()

	base := time.Date(2023, 5, 13, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := history.Record(ctx, HistoryEntry{
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
			ClassDate:  "2023/05/13",
			Result:     Result{Code: UnableToLogIn},
		})
		require.NoError(t, err)
	}

	entries, err := history.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.True(t, entries[0].StartedAt.After(entries[1].StartedAt))
}

func TestHistoryRecordsFailureData(t *testing.T) {
	history := newTestHistory(t)
	ctx := context.Background()

	_, err := history.Record(ctx, HistoryEntry{
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		Result:     Result{Code: UnableToReadAttendanceReportSheet, Data: "一組"},
	})
	require.NoError(t, err)

	entries, err := history.List(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "一組", entries[0].Result.Data)
	require.Empty(t, entries[0].ClassDate)
}
