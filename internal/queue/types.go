package queue

import "time"

// Category buckets an item by the audience segment a reply would address.
type Category string

const (
	// CategoryDomme covers creators: new and established findommes.
	CategoryDomme Category = "domme"
	// CategoryPaypig covers the paying side of the dynamic.
	CategoryPaypig Category = "paypig"
	// CategoryMedia covers cultural references: movies, tv, manga, stories.
	CategoryMedia Category = "media"
	// CategoryGeneral is the catch-all for everything else.
	CategoryGeneral Category = "general"
)

// RawItem is one search-feed entry as a source returns it, before admission.
type RawItem struct {
	ID        string    `json:"id"`
	Feed      string    `json:"feed"` // label of the search query it was found under
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Snippet   string    `json:"snippet,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ProcessedItem is an admitted item with classification and scoring attached.
// It is immutable once the ingestion stage has filled it in.
type ProcessedItem struct {
	ID        string    `json:"id"`
	Feed      string    `json:"feed"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Snippet   string    `json:"snippet,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	AgeHours  int       `json:"age_hours"`
	Category  Category  `json:"category"`
	Priority  int       `json:"priority"`
	Signals   []string  `json:"signals"`
	Opener    string    `json:"opener,omitempty"`
}

// State is the only entity with cross-run lifetime: the identities already
// reported plus the instant of the last successful run. Loaded once at run
// start and persisted exactly once, after the report went out.
type State struct {
	SeenIDs []string  `json:"seen_ids"`
	LastRun time.Time `json:"last_run_utc"`
}
