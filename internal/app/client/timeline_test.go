package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtag/internal/domain/application"
)

func assertReverseChronological(t *testing.T, events []application.StatusEvent) {
	t.Helper()
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Date.After(events[i-1].Date), "event %d is newer than event %d", i, i-1)
	}
}

func TestTimeline_EmptyHistory(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	created := now.AddDate(0, 0, -5)
	app := application.Application{ID: "1", Status: application.StatusScreening, CreatedAt: created}

	got := Timeline(app, now)

	require.Len(t, got, 2)
	assert.Equal(t, application.StatusEvent{Status: application.StatusScreening, Date: now, Note: NoteCurrentStatus}, got[0])
	assert.Equal(t, application.StatusEvent{Status: application.StatusApplied, Date: created, Note: application.NoteSubmitted}, got[1])
}

func TestTimeline_SortsHistoryAndSkipsSyntheticApplied(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	created := now.AddDate(0, 0, -20)
	app := application.Application{
		ID:        "1",
		Status:    application.StatusInterview,
		CreatedAt: created,
		StatusHistory: []application.StatusEvent{
			{Status: application.StatusApplied, Date: created, Note: application.NoteSubmitted},
			{Status: application.StatusInterview, Date: now.AddDate(0, 0, -2)},
			{Status: application.StatusScreening, Date: now.AddDate(0, 0, -10)},
		},
	}

	got := Timeline(app, now)

	require.Len(t, got, 4)
	assert.Equal(t, NoteCurrentStatus, got[0].Note)
	assert.Equal(t, []application.Status{
		application.StatusInterview,
		application.StatusInterview,
		application.StatusScreening,
		application.StatusApplied,
	}, []application.Status{got[0].Status, got[1].Status, got[2].Status, got[3].Status})
	assertReverseChronological(t, got)

	// input history is untouched
	assert.Equal(t, application.StatusApplied, app.StatusHistory[0].Status)
}

func TestTimeline_AlwaysNonEmptyAndOrdered(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	cases := []application.Application{
		{},
		{Status: application.StatusOffer, CreatedAt: now.Add(time.Hour)},
		{
			Status:    application.StatusRejected,
			CreatedAt: now.AddDate(0, -1, 0),
			StatusHistory: []application.StatusEvent{
				{Status: application.StatusRejected, Date: now.AddDate(0, 0, 3)},
				{Status: application.StatusScreening, Date: now.AddDate(0, 0, -9)},
			},
		},
	}

	for _, app := range cases {
		got := Timeline(app, now)
		require.NotEmpty(t, got)
		assertReverseChronological(t, got)
	}
}

func TestTimeline_CurrentStatusStaysFirst(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 2)
	app := application.Application{
		Status:    application.StatusInterview,
		CreatedAt: now.AddDate(0, 0, -5),
		StatusHistory: []application.StatusEvent{
			{Status: application.StatusApplied, Date: now.AddDate(0, 0, -5)},
			{Status: application.StatusInterview, Date: future, Note: "scheduled"},
		},
	}

	got := Timeline(app, now)

	require.Len(t, got, 3)
	assert.Equal(t, NoteCurrentStatus, got[0].Note)
	assert.Equal(t, application.StatusInterview, got[0].Status)
	assert.Equal(t, future, got[0].Date)
	assert.Equal(t, "scheduled", got[1].Note)
	assertReverseChronological(t, got)

	// createdAt in the future also never outruns the current status
	ahead := application.Application{Status: application.StatusApplied, CreatedAt: future}
	got = Timeline(ahead, now)
	assert.Equal(t, NoteCurrentStatus, got[0].Note)
	assertReverseChronological(t, got)
}
