package ingest

import (
	"strings"
	"time"

	"redditqueue/internal/queue"
)

// Reason names why an item was rejected during admission.
type Reason string

const (
	ReasonNoIdentity Reason = "no-identity"
	ReasonDuplicate  Reason = "duplicate"
	ReasonStale      Reason = "stale"
	ReasonIncomplete Reason = "incomplete"
)

// Admitter normalizes raw entries and rejects duplicates, stale items and
// incomplete records. It is the only component that mutates the shared seen
// set during ingestion, which also catches the same identity arriving twice
// in one run from overlapping queries.
type Admitter struct {
	seen   *queue.SeenSet
	window Window
	clock  func() time.Time
}

// NewAdmitter wires the shared seen set and the run window.
func NewAdmitter(seen *queue.SeenSet, window Window, clock func() time.Time) *Admitter {
	if clock == nil {
		clock = time.Now
	}
	return &Admitter{seen: seen, window: window, clock: clock}
}

// Admit validates one raw entry. On success the identity is registered in
// the seen set immediately and a ProcessedItem is returned with its age
// filled in; classification and scoring are attached downstream.
func (a *Admitter) Admit(raw queue.RawItem) (queue.ProcessedItem, Reason, bool) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = strings.TrimSpace(raw.URL)
	}
	if id == "" {
		return queue.ProcessedItem{}, ReasonNoIdentity, false
	}

	if a.seen.Contains(id) {
		return queue.ProcessedItem{}, ReasonDuplicate, false
	}

	if !a.window.Allows(raw.CreatedAt) {
		return queue.ProcessedItem{}, ReasonStale, false
	}

	title := strings.TrimSpace(raw.Title)
	link := strings.TrimSpace(raw.URL)
	if title == "" || link == "" {
		return queue.ProcessedItem{}, ReasonIncomplete, false
	}

	a.seen.Add(id)

	age := int(a.clock().Sub(raw.CreatedAt).Hours())
	if age < 0 {
		age = 0
	}

	return queue.ProcessedItem{
		ID:        id,
		Feed:      raw.Feed,
		Title:     title,
		URL:       link,
		Snippet:   strings.TrimSpace(raw.Snippet),
		CreatedAt: raw.CreatedAt,
		AgeHours:  age,
	}, "", true
}
