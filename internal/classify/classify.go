// Package classify assigns each item to exactly one category using an
// ordered table of keyword rules over the title and the feed label.
package classify

import (
	"strings"

	"redditqueue/internal/config"
	"redditqueue/internal/queue"
)

type rule struct {
	category queue.Category
	terms    []string
}

// Classifier evaluates its rules in fixed order, first match wins.
type Classifier struct {
	rules []rule
}

// New builds the rule table from the configured keyword sets. Evaluation
// order is fixed: domme terms, then paypig, then media, then the catch-all.
func New(cfg config.Classify) *Classifier {
	return &Classifier{
		rules: []rule{
			{category: queue.CategoryDomme, terms: lowered(cfg.DommeTerms)},
			{category: queue.CategoryPaypig, terms: lowered(cfg.PaypigTerms)},
			{category: queue.CategoryMedia, terms: lowered(cfg.MediaTerms)},
		},
	}
}

// Classify returns the category of an item from its title and feed label.
// Matching is case-insensitive substring matching, not word-boundary
// matching: a term embedded inside a longer unrelated word still matches.
// That imprecision is intentional and covered by tests.
func (c *Classifier) Classify(title, feed string) queue.Category {
	haystack := strings.ToLower(feed) + " " + strings.ToLower(title)

	for _, r := range c.rules {
		for _, term := range r.terms {
			if term != "" && strings.Contains(haystack, term) {
				return r.category
			}
		}
	}
	return queue.CategoryGeneral
}

func lowered(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		out = append(out, strings.ToLower(strings.TrimSpace(t)))
	}
	return out
}
