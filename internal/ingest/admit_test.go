package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redditqueue/internal/queue"
)

var admitNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestAdmitter(seenIDs []string) *Admitter {
	seen := queue.NewSeenSet(100, seenIDs)
	window := Window{Start: admitNow.Add(-168 * time.Hour)}
	return NewAdmitter(seen, window, func() time.Time { return admitNow })
}

func validRaw() queue.RawItem {
	return queue.RawItem{
		ID:        "t3_abc",
		Feed:      "Findom general",
		Title:     "A thread worth reading",
		URL:       "https://www.reddit.com/r/x/comments/abc",
		Snippet:   "  some text  ",
		CreatedAt: admitNow.Add(-3 * time.Hour),
	}
}

func TestAdmitAccepts(t *testing.T) {
	a := newTestAdmitter(nil)

	item, reason, ok := a.Admit(validRaw())

	require.True(t, ok)
	assert.Empty(t, reason)
	assert.Equal(t, "t3_abc", item.ID)
	assert.Equal(t, 3, item.AgeHours)
	assert.Equal(t, "some text", item.Snippet, "snippet is trimmed")
}

func TestAdmitRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*queue.RawItem)
		seen   []string
		reason Reason
	}{
		{
			name: "no identity at all",
			mutate: func(r *queue.RawItem) {
				r.ID = "  "
				r.URL = ""
			},
			reason: ReasonNoIdentity,
		},
		{
			name:   "duplicate from persisted state",
			mutate: func(r *queue.RawItem) {},
			seen:   []string{"t3_abc"},
			reason: ReasonDuplicate,
		},
		{
			name: "older than the window",
			mutate: func(r *queue.RawItem) {
				r.CreatedAt = admitNow.Add(-200 * time.Hour)
			},
			reason: ReasonStale,
		},
		{
			name:   "blank title",
			mutate: func(r *queue.RawItem) { r.Title = "   " },
			reason: ReasonIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdmitter(tt.seen)
			raw := validRaw()
			tt.mutate(&raw)

			_, reason, ok := a.Admit(raw)

			assert.False(t, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestAdmitFallsBackToURLIdentity(t *testing.T) {
	a := newTestAdmitter(nil)
	raw := validRaw()
	raw.ID = ""

	item, _, ok := a.Admit(raw)

	require.True(t, ok)
	assert.Equal(t, raw.URL, item.ID)
}

func TestAdmitSameIdentityTwiceInOneRun(t *testing.T) {
	a := newTestAdmitter(nil)

	_, _, ok := a.Admit(validRaw())
	require.True(t, ok)

	// Overlapping queries surface the same post again within the run.
	_, reason, ok := a.Admit(validRaw())
	assert.False(t, ok)
	assert.Equal(t, ReasonDuplicate, reason)
}

func TestAdmitRejectedItemLeavesSeenSetUntouched(t *testing.T) {
	seen := queue.NewSeenSet(100, nil)
	a := NewAdmitter(seen, Window{Start: admitNow.Add(-168 * time.Hour)}, func() time.Time { return admitNow })

	raw := validRaw()
	raw.Title = ""
	_, _, ok := a.Admit(raw)

	assert.False(t, ok)
	assert.Equal(t, 0, seen.Len(), "incomplete items must stay eligible for later runs")
}

func TestAdmitFutureTimestampClampsAgeToZero(t *testing.T) {
	a := newTestAdmitter(nil)
	raw := validRaw()
	raw.CreatedAt = admitNow.Add(30 * time.Minute)

	item, _, ok := a.Admit(raw)

	require.True(t, ok)
	assert.Equal(t, 0, item.AgeHours)
}
