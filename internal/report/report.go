// Package report partitions the ranked queue into fixed sections and renders
// them. The Report value is the single canonical representation; the plain
// and HTML bodies are derived from it by pure formatting functions so the
// section logic exists exactly once.
package report

import (
	"fmt"
	"time"

	"redditqueue/internal/config"
	"redditqueue/internal/queue"
)

// Section is one named, bounded slice of the ranked queue.
type Section struct {
	Title string
	Items []queue.ProcessedItem
}

// Report is the rendered run summary before formatting.
type Report struct {
	GeneratedAt  time.Time
	Collected    int
	ArtifactPath string
	RoutineNote  string
	ActionNote   string
	Sections     []Section
}

// Rendered carries the delivery-ready representations of one Report.
type Rendered struct {
	Subject string
	Plain   string
	HTML    string
}

var categorySections = []struct {
	title    string
	category queue.Category
}{
	{"Dommes & creators", queue.CategoryDomme},
	{"Paypigs & tributes", queue.CategoryPaypig},
	{"Media mentions", queue.CategoryMedia},
}

// Renderer builds and formats reports with fixed section policy.
type Renderer struct {
	cfg config.Report
}

// NewRenderer creates a renderer from the report configuration.
func NewRenderer(cfg config.Report) *Renderer {
	return &Renderer{cfg: cfg}
}

// Build partitions ranked items into the fixed section list: high priority
// first, then one section per non-catch-all category, then the rest. Every
// section is always present, even when empty, and each is capped at the
// configured length. An item hot enough for the high-priority section also
// appears in its category section.
func (r *Renderer) Build(ranked []queue.ProcessedItem, collected int, artifactPath string, now time.Time) Report {
	rep := Report{
		GeneratedAt:  now,
		Collected:    collected,
		ArtifactPath: artifactPath,
		RoutineNote:  r.cfg.RoutineNote,
		ActionNote:   r.cfg.ActionNote,
	}

	var hot []queue.ProcessedItem
	for _, item := range ranked {
		if len(hot) >= r.cfg.SectionCap {
			break
		}
		if item.Priority >= r.cfg.HighPriorityMin && item.AgeHours <= r.cfg.HighPriorityMaxAge {
			hot = append(hot, item)
		}
	}
	rep.Sections = append(rep.Sections, Section{Title: "High priority", Items: hot})

	for _, cs := range categorySections {
		rep.Sections = append(rep.Sections, Section{
			Title: cs.title,
			Items: filterByCategory(ranked, cs.category, r.cfg.SectionCap),
		})
	}

	rep.Sections = append(rep.Sections, Section{
		Title: "Other",
		Items: filterByCategory(ranked, queue.CategoryGeneral, r.cfg.SectionCap),
	})

	return rep
}

// Render implements the orchestrator's Renderer dependency.
func (r *Renderer) Render(ranked []queue.ProcessedItem, collected int, artifactPath string, now time.Time) (Rendered, error) {
	rep := r.Build(ranked, collected, artifactPath, now)

	html, err := renderHTML(rep)
	if err != nil {
		return Rendered{}, fmt.Errorf("render html body: %w", err)
	}

	return Rendered{
		Subject: fmt.Sprintf("%s: %d new items", r.cfg.SubjectPrefix, collected),
		Plain:   renderPlain(rep),
		HTML:    html,
	}, nil
}

func filterByCategory(items []queue.ProcessedItem, cat queue.Category, limit int) []queue.ProcessedItem {
	var out []queue.ProcessedItem
	for _, item := range items {
		if item.Category != cat {
			continue
		}
		out = append(out, item)
		if len(out) >= limit {
			break
		}
	}
	return out
}
