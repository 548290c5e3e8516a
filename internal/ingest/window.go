package ingest

import "time"

// Window is the earliest acceptable creation instant for one run:
// max(last successful run, now minus the backfill horizon). Because the
// last-run instant only advances on successful commits, the bound is
// monotonic across runs unless the state file is reset externally.
type Window struct {
	Start time.Time
}

// NewWindow computes the window lower bound for a run starting at now.
func NewWindow(lastRun, now time.Time, backfill time.Duration) Window {
	floor := now.Add(-backfill)
	if lastRun.After(floor) {
		return Window{Start: lastRun}
	}
	return Window{Start: floor}
}

// Allows reports whether a creation instant falls inside the window.
func (w Window) Allows(t time.Time) bool {
	return !t.Before(w.Start)
}
