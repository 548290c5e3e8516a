// Package app wires the run stages together. One Run call is one batch pass:
// load state, ingest sources, rank, render, archive, dispatch, commit. The
// commit point is the single most important property here: the seen set is
// never persisted past a report that was not actually delivered.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"redditqueue/internal/config"
	"redditqueue/internal/ingest"
	"redditqueue/internal/queue"
	"redditqueue/internal/ranking"
	"redditqueue/internal/report"
)

// ErrNotConfigured is returned when the pipeline runs without required
// dependencies.
var ErrNotConfigured = errors.New("pipeline dependencies not configured")

// Clock supplies the current time, swappable in tests.
type Clock func() time.Time

// SourceCollector enumerates the configured sources and fetches one source's
// raw items. Fetch errors are absorbed: the source contributes nothing.
type SourceCollector interface {
	Sources() []string
	Fetch(ctx context.Context, label string) ([]queue.RawItem, error)
}

// Classifier assigns exactly one category per item.
type Classifier interface {
	Classify(title, feed string) queue.Category
}

// Scorer computes priority and signals, and suggests a reply opener.
type Scorer interface {
	Score(title, feed string, category queue.Category, ageHours int) (int, []string)
	Opener(category queue.Category, title string) string
}

// Renderer turns the ranked queue into delivery-ready bodies.
type Renderer interface {
	Render(ranked []queue.ProcessedItem, collected int, artifactPath string, now time.Time) (report.Rendered, error)
}

// Dispatcher hands the rendered report to the delivery collaborator.
type Dispatcher interface {
	Dispatch(ctx context.Context, subject, plain, html string) error
}

// StateStore loads and persists the cross-run state.
type StateStore interface {
	Load(ctx context.Context) (queue.State, error)
	Save(ctx context.Context, st queue.State) error
}

// ArtifactWriter stores the per-run snapshot of processed items.
type ArtifactWriter interface {
	Write(items []queue.ProcessedItem) (string, error)
}

// Deps lists the pipeline dependencies.
type Deps struct {
	Collector  SourceCollector
	Classifier Classifier
	Scorer     Scorer
	Renderer   Renderer
	Dispatcher Dispatcher
	Store      StateStore
	Archive    ArtifactWriter
	Clock      Clock
	Config     config.Pipeline
	Logger     *zap.Logger
}

// Pipeline executes one digest run.
type Pipeline struct {
	collector  SourceCollector
	classifier Classifier
	scorer     Scorer
	renderer   Renderer
	dispatcher Dispatcher
	store      StateStore
	archive    ArtifactWriter
	clock      Clock
	cfg        config.Pipeline
	logger     *zap.Logger
}

// New creates a pipeline from its dependencies.
func New(deps Deps) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		collector:  deps.Collector,
		classifier: deps.Classifier,
		scorer:     deps.Scorer,
		renderer:   deps.Renderer,
		dispatcher: deps.Dispatcher,
		store:      deps.Store,
		archive:    deps.Archive,
		clock:      clock,
		cfg:        deps.Config,
		logger:     logger,
	}
}

// Run executes the full batch pass. It is single-threaded and synchronous;
// process-level exclusivity per state file is the caller's responsibility.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.validateDeps(); err != nil {
		return err
	}

	// Loading. A missing state file is an empty state; a corrupt one is
	// fatal before any ingestion happens.
	st, err := p.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	now := p.clock()
	seen := queue.NewSeenSet(p.cfg.SeenHistory, st.SeenIDs)
	window := ingest.NewWindow(st.LastRun, now, time.Duration(p.cfg.BackfillHours)*time.Hour)
	admitter := ingest.NewAdmitter(seen, window, p.clock)

	p.logger.Info("starting run",
		zap.Time("window_start", window.Start),
		zap.Int("seen_history", seen.Len()))

	// Ingesting. Sources run sequentially in configured order; the global
	// cap is checked after each source's batch, so the source in flight may
	// overshoot the cap by its own allowance.
	var collected []queue.ProcessedItem
	rejected := make(map[ingest.Reason]int)
	for _, label := range p.collector.Sources() {
		raws, err := p.collector.Fetch(ctx, label)
		if err != nil {
			p.logger.Warn("source failed, skipping",
				zap.String("source", label),
				zap.Error(err))
			continue
		}

		for _, raw := range raws {
			item, reason, ok := admitter.Admit(raw)
			if !ok {
				rejected[reason]++
				continue
			}
			item.Category = p.classifier.Classify(item.Title, item.Feed)
			item.Priority, item.Signals = p.scorer.Score(item.Title, item.Feed, item.Category, item.AgeHours)
			item.Opener = p.scorer.Opener(item.Category, item.Title)
			collected = append(collected, item)
		}

		if len(collected) >= p.cfg.MaxItemsPerRun {
			p.logger.Info("per-run item cap reached, stopping ingestion",
				zap.Int("collected", len(collected)),
				zap.Int("cap", p.cfg.MaxItemsPerRun))
			break
		}
	}

	p.logger.Info("ingestion finished",
		zap.Int("collected", len(collected)),
		zap.Int("rejected_duplicate", rejected[ingest.ReasonDuplicate]),
		zap.Int("rejected_stale", rejected[ingest.ReasonStale]),
		zap.Int("rejected_incomplete", rejected[ingest.ReasonIncomplete]),
		zap.Int("rejected_no_identity", rejected[ingest.ReasonNoIdentity]))

	// Ranking and rendering are pure.
	ranked := ranking.Rank(collected)

	artifactPath, err := p.archive.Write(ranked)
	if err != nil {
		return fmt.Errorf("write run artifact: %w", err)
	}
	p.logger.Info("run artifact written", zap.String("path", artifactPath))

	rendered, err := p.renderer.Render(ranked, len(collected), artifactPath, now)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	// Dispatching. A failure here aborts before the commit so the next run
	// reconsiders the same window and candidates.
	if err := p.dispatcher.Dispatch(ctx, rendered.Subject, rendered.Plain, rendered.HTML); err != nil {
		return fmt.Errorf("dispatch report: %w", err)
	}

	// Committing. The admitter already registered every admitted identity
	// in the bounded seen set; persist it together with the run instant.
	st.SeenIDs = seen.IDs()
	st.LastRun = p.clock().UTC()
	if err := p.store.Save(ctx, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	p.logger.Info("run committed",
		zap.Int("items", len(collected)),
		zap.Time("last_run", st.LastRun))

	return nil
}

func (p *Pipeline) validateDeps() error {
	switch {
	case p.collector == nil,
		p.classifier == nil,
		p.scorer == nil,
		p.renderer == nil,
		p.dispatcher == nil,
		p.store == nil,
		p.archive == nil:
		return ErrNotConfigured
	default:
		return nil
	}
}
