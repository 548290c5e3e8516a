package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redditqueue/internal/classify"
	"redditqueue/internal/config"
	"redditqueue/internal/queue"
	"redditqueue/internal/report"
	"redditqueue/internal/scoring"
)

var runNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeCollector struct {
	feeds   map[string][]queue.RawItem
	order   []string
	failing map[string]error
	fetched []string
}

func (f *fakeCollector) Sources() []string { return f.order }

func (f *fakeCollector) Fetch(_ context.Context, label string) ([]queue.RawItem, error) {
	f.fetched = append(f.fetched, label)
	if err := f.failing[label]; err != nil {
		return nil, err
	}
	return f.feeds[label], nil
}

type memStore struct {
	st      queue.State
	loadErr error
	saveErr error
	saved   int
}

func (m *memStore) Load(context.Context) (queue.State, error) {
	if m.loadErr != nil {
		return queue.State{}, m.loadErr
	}
	return m.st, nil
}

func (m *memStore) Save(_ context.Context, st queue.State) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.st = st
	m.saved++
	return nil
}

type memDispatcher struct {
	err      error
	subjects []string
	plain    []string
}

func (d *memDispatcher) Dispatch(_ context.Context, subject, plain, _ string) error {
	if d.err != nil {
		return d.err
	}
	d.subjects = append(d.subjects, subject)
	d.plain = append(d.plain, plain)
	return nil
}

type memArchive struct {
	snapshots [][]queue.ProcessedItem
}

func (a *memArchive) Write(items []queue.ProcessedItem) (string, error) {
	a.snapshots = append(a.snapshots, items)
	return fmt.Sprintf("output/queue_%d.json", len(a.snapshots)), nil
}

func rawItem(id, feed, title string, age time.Duration) queue.RawItem {
	return queue.RawItem{
		ID:        id,
		Feed:      feed,
		Title:     title,
		URL:       "https://www.reddit.com/comments/" + id,
		CreatedAt: runNow.Add(-age),
	}
}

func newTestPipeline(collector *fakeCollector, store *memStore, dispatcher *memDispatcher, archive *memArchive, cfg config.Pipeline) *Pipeline {
	def := config.Default()
	return New(Deps{
		Collector:  collector,
		Classifier: classify.New(def.Classify),
		Scorer:     scoring.New(def.Scoring),
		Renderer:   report.NewRenderer(def.Report),
		Dispatcher: dispatcher,
		Store:      store,
		Archive:    archive,
		Clock:      func() time.Time { return runNow },
		Config:     cfg,
	})
}

func defaultPipelineConfig() config.Pipeline {
	return config.Default().Pipeline
}

func TestRunEndToEnd(t *testing.T) {
	collector := &fakeCollector{
		order: []string{"Beginner findomme", "Paypig"},
		feeds: map[string][]queue.RawItem{
			"Beginner findomme": {
				rawItem("t3_a", "Beginner findomme", "How do I start as a beginner findomme?", time.Hour),
			},
			"Paypig": {
				rawItem("t3_b", "Paypig", "Weekly Megathread", 72*time.Hour),
			},
		},
	}
	store := &memStore{}
	dispatcher := &memDispatcher{}
	archive := &memArchive{}

	p := newTestPipeline(collector, store, dispatcher, archive, defaultPipelineConfig())
	require.NoError(t, p.Run(context.Background()))

	require.Equal(t, 1, store.saved)
	assert.ElementsMatch(t, []string{"t3_a", "t3_b"}, store.st.SeenIDs)
	assert.Equal(t, runNow, store.st.LastRun)

	require.Len(t, dispatcher.subjects, 1)
	assert.Equal(t, "Reddit queue: 2 new items", dispatcher.subjects[0])
	assert.Contains(t, dispatcher.plain[0], "How do I start as a beginner findomme?")

	// The archived snapshot is the ranked queue: the hot question first.
	require.Len(t, archive.snapshots, 1)
	require.Len(t, archive.snapshots[0], 2)
	assert.Equal(t, "t3_a", archive.snapshots[0][0].ID)
	assert.Equal(t, queue.CategoryDomme, archive.snapshots[0][0].Category)
	assert.Equal(t, 10, archive.snapshots[0][0].Priority)
}

func TestRunSecondPassYieldsNothingNew(t *testing.T) {
	collector := &fakeCollector{
		order: []string{"Findom general"},
		feeds: map[string][]queue.RawItem{
			"Findom general": {
				rawItem("t3_a", "Findom general", "A thread", time.Hour),
			},
		},
	}
	store := &memStore{}
	dispatcher := &memDispatcher{}
	archive := &memArchive{}

	p := newTestPipeline(collector, store, dispatcher, archive, defaultPipelineConfig())
	require.NoError(t, p.Run(context.Background()))
	require.NoError(t, p.Run(context.Background()))

	require.Len(t, dispatcher.subjects, 2)
	assert.Equal(t, "Reddit queue: 0 new items", dispatcher.subjects[1], "identical feed content is all duplicates")
	assert.Equal(t, []string{"t3_a"}, store.st.SeenIDs)
}

func TestRunDispatchFailureLeavesStateUncommitted(t *testing.T) {
	collector := &fakeCollector{
		order: []string{"Findom general"},
		feeds: map[string][]queue.RawItem{
			"Findom general": {
				rawItem("t3_a", "Findom general", "A thread", time.Hour),
			},
		},
	}
	store := &memStore{st: queue.State{SeenIDs: []string{"t3_old"}}}
	dispatcher := &memDispatcher{err: errors.New("smtp down")}
	archive := &memArchive{}

	p := newTestPipeline(collector, store, dispatcher, archive, defaultPipelineConfig())
	err := p.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dispatch report")
	assert.Equal(t, 0, store.saved, "no commit past a failed dispatch")
	assert.Equal(t, []string{"t3_old"}, store.st.SeenIDs)
}

func TestRunFailedRunIsRetriable(t *testing.T) {
	feeds := map[string][]queue.RawItem{
		"Findom general": {
			rawItem("t3_a", "Findom general", "A thread", time.Hour),
		},
	}
	store := &memStore{}
	archive := &memArchive{}

	failing := &memDispatcher{err: errors.New("smtp down")}
	p := newTestPipeline(&fakeCollector{order: []string{"Findom general"}, feeds: feeds}, store, failing, archive, defaultPipelineConfig())
	require.Error(t, p.Run(context.Background()))

	// Same feed, next run with a healthy dispatcher: the item surfaces again.
	working := &memDispatcher{}
	p = newTestPipeline(&fakeCollector{order: []string{"Findom general"}, feeds: feeds}, store, working, archive, defaultPipelineConfig())
	require.NoError(t, p.Run(context.Background()))

	require.Len(t, working.subjects, 1)
	assert.Equal(t, "Reddit queue: 1 new items", working.subjects[0])
}

func TestRunSourceErrorIsTolerated(t *testing.T) {
	collector := &fakeCollector{
		order: []string{"Broken", "Findom general"},
		feeds: map[string][]queue.RawItem{
			"Findom general": {
				rawItem("t3_a", "Findom general", "A thread", time.Hour),
			},
		},
		failing: map[string]error{"Broken": errors.New("status 429")},
	}
	store := &memStore{}
	dispatcher := &memDispatcher{}

	p := newTestPipeline(collector, store, dispatcher, &memArchive{}, defaultPipelineConfig())
	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, []string{"Broken", "Findom general"}, collector.fetched)
	assert.Equal(t, "Reddit queue: 1 new items", dispatcher.subjects[0])
	assert.Equal(t, 1, store.saved)
}

func TestRunCapCheckedAfterEachSource(t *testing.T) {
	firstBatch := make([]queue.RawItem, 0, 5)
	for i := 0; i < 5; i++ {
		firstBatch = append(firstBatch, rawItem(fmt.Sprintf("t3_first_%d", i), "First", "A thread", time.Hour))
	}
	collector := &fakeCollector{
		order: []string{"First", "Second"},
		feeds: map[string][]queue.RawItem{
			"First": firstBatch,
			"Second": {
				rawItem("t3_second", "Second", "A thread", time.Hour),
			},
		},
	}
	store := &memStore{}
	dispatcher := &memDispatcher{}
	archive := &memArchive{}

	cfg := defaultPipelineConfig()
	cfg.MaxItemsPerRun = 3

	p := newTestPipeline(collector, store, dispatcher, archive, cfg)
	require.NoError(t, p.Run(context.Background()))

	// The first source overshoots the cap with its full batch; the second is
	// never fetched.
	assert.Equal(t, []string{"First"}, collector.fetched)
	assert.Len(t, archive.snapshots[0], 5)
}

func TestRunCorruptStateAborts(t *testing.T) {
	sentinel := errors.New("state file corrupt")
	store := &memStore{loadErr: sentinel}
	collector := &fakeCollector{order: []string{"Findom general"}}
	dispatcher := &memDispatcher{}

	p := newTestPipeline(collector, store, dispatcher, &memArchive{}, defaultPipelineConfig())
	err := p.Run(context.Background())

	require.ErrorIs(t, err, sentinel)
	assert.Empty(t, collector.fetched, "no ingestion on a corrupt state file")
	assert.Empty(t, dispatcher.subjects)
}

func TestRunMissingDependency(t *testing.T) {
	p := New(Deps{})
	assert.ErrorIs(t, p.Run(context.Background()), ErrNotConfigured)
}

func TestRunWindowUsesLastRun(t *testing.T) {
	lastRun := runNow.Add(-24 * time.Hour)
	collector := &fakeCollector{
		order: []string{"Findom general"},
		feeds: map[string][]queue.RawItem{
			"Findom general": {
				rawItem("t3_fresh", "Findom general", "Inside the window", time.Hour),
				rawItem("t3_stale", "Findom general", "Before the last run", 30*time.Hour),
			},
		},
	}
	store := &memStore{st: queue.State{LastRun: lastRun}}
	dispatcher := &memDispatcher{}
	archive := &memArchive{}

	p := newTestPipeline(collector, store, dispatcher, archive, defaultPipelineConfig())
	require.NoError(t, p.Run(context.Background()))

	require.Len(t, archive.snapshots[0], 1)
	assert.Equal(t, "t3_fresh", archive.snapshots[0][0].ID)
}
