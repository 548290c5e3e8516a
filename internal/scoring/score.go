// Package scoring computes an integer priority and a short list of signal
// tags for each admitted item. Every rule is additive and independently
// triggerable; the result is a pure function of title, feed label, category
// and age.
package scoring

import (
	"strings"

	"redditqueue/internal/config"
	"redditqueue/internal/queue"
)

// Signal tags emitted by the fixed rules. Lexicon tags come from config.
const (
	SignalQuestion   = "question"
	SignalTargetFeed = "target-feed"
	SignalMegathread = "megathread"
	SignalFresh      = "fresh"
	SignalRecent     = "recent"
	SignalOld        = "old"
)

// Scorer applies the configured rule table.
type Scorer struct {
	cfg config.Scoring
}

// New creates a scorer from the configured weights and lexicon.
func New(cfg config.Scoring) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score returns the priority and the triggered signal tags, in trigger
// order, deduplicated and capped at the configured maximum. The priority is
// the unclamped signed sum and may be negative.
func (s *Scorer) Score(title, feed string, category queue.Category, ageHours int) (int, []string) {
	t := strings.ToLower(title)
	f := strings.ToLower(feed)

	priority := 0
	var signals []string
	tagged := make(map[string]struct{})
	addSignal := func(tag string) {
		if _, ok := tagged[tag]; ok {
			return
		}
		tagged[tag] = struct{}{}
		signals = append(signals, tag)
	}

	if strings.Contains(title, "?") {
		priority += s.cfg.QuestionWeight
		addSignal(SignalQuestion)
	}

	// Lexicon terms add their weight on every hit; the tag is recorded once.
	for _, entry := range s.cfg.Lexicon {
		if entry.Term == "" {
			continue
		}
		if strings.Contains(t, strings.ToLower(entry.Term)) {
			priority += entry.Weight
			addSignal(entry.Tag)
		}
	}

	for _, term := range s.cfg.TargetFeedTerms {
		if term != "" && strings.Contains(f, strings.ToLower(term)) {
			priority += s.cfg.TargetFeedBonus
			addSignal(SignalTargetFeed)
			break
		}
	}

	for _, marker := range s.cfg.MegathreadMarkers {
		if marker != "" && strings.Contains(t, strings.ToLower(marker)) {
			priority -= s.cfg.MegathreadPenalty
			addSignal(SignalMegathread)
			break
		}
	}

	// Exactly one age tier applies; 12h < age < 48h scores nothing.
	switch {
	case ageHours <= 2:
		priority += s.cfg.FreshBonus
		addSignal(SignalFresh)
	case ageHours <= 6:
		priority += s.cfg.RecentBonus
		addSignal(SignalRecent)
	case ageHours <= 12:
		priority += s.cfg.NearbyBonus
	case ageHours >= 48:
		priority -= s.cfg.OldPenalty
		addSignal(SignalOld)
	}

	if len(signals) > s.cfg.MaxSignals {
		signals = signals[:s.cfg.MaxSignals]
	}

	return priority, signals
}

// Opener suggests a reply-opening line for the item, keyed by category with
// a variant for question-style titles. An empty string means no suggestion.
func (s *Scorer) Opener(category queue.Category, title string) string {
	if strings.Contains(title, "?") {
		if line, ok := s.cfg.Openers.Question[string(category)]; ok {
			return line
		}
	}
	return s.cfg.Openers.Default[string(category)]
}
