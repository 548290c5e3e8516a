package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"redditqueue/internal/queue"
)

type (
	// Root bundles every configuration block of the digest pipeline.
	Root struct {
		Pipeline  Pipeline  `yaml:"pipeline"`
		Classify  Classify  `yaml:"classify"`
		Scoring   Scoring   `yaml:"scoring"`
		Report    Report    `yaml:"report"`
		Publisher Publisher `yaml:"publisher"`
	}

	// Pipeline holds the run-level knobs: window, caps, state paths.
	Pipeline struct {
		BackfillHours  int    `yaml:"backfill_hours"`
		MaxItemsPerRun int    `yaml:"max_items_per_run"`
		PerSourceScan  int    `yaml:"per_source_scan"`
		SeenHistory    int    `yaml:"seen_history"`
		StatePath      string `yaml:"state_path"`
		OutputDir      string `yaml:"output_dir"`
	}

	// Classify lists the keyword tables, one per non-catch-all category,
	// in evaluation order: domme rules fire before paypig before media.
	Classify struct {
		DommeTerms  []string `yaml:"domme_terms"`
		PaypigTerms []string `yaml:"paypig_terms"`
		MediaTerms  []string `yaml:"media_terms"`
	}

	// LexiconEntry is one high-intent term with its weight and signal tag.
	LexiconEntry struct {
		Term   string `yaml:"term"`
		Weight int    `yaml:"weight"`
		Tag    string `yaml:"tag"`
	}

	// Scoring configures the additive priority rules.
	Scoring struct {
		QuestionWeight    int            `yaml:"question_weight"`
		Lexicon           []LexiconEntry `yaml:"lexicon"`
		TargetFeedTerms   []string       `yaml:"target_feed_terms"`
		TargetFeedBonus   int            `yaml:"target_feed_bonus"`
		MegathreadMarkers []string       `yaml:"megathread_markers"`
		MegathreadPenalty int            `yaml:"megathread_penalty"`
		FreshBonus        int            `yaml:"fresh_bonus"`  // age <= 2h
		RecentBonus       int            `yaml:"recent_bonus"` // age <= 6h
		NearbyBonus       int            `yaml:"nearby_bonus"` // age <= 12h
		OldPenalty        int            `yaml:"old_penalty"`  // age >= 48h
		MaxSignals        int            `yaml:"max_signals"`
		Openers           Openers        `yaml:"openers"`
	}

	// Openers maps a category to a suggested reply-opening line, with a
	// separate table for question-style titles.
	Openers struct {
		Question map[string]string `yaml:"question"`
		Default  map[string]string `yaml:"default"`
	}

	// Report configures section thresholds and the fixed body texture.
	Report struct {
		HighPriorityMin    int    `yaml:"high_priority_min"`
		HighPriorityMaxAge int    `yaml:"high_priority_max_age_hours"`
		SectionCap         int    `yaml:"section_cap"`
		SubjectPrefix      string `yaml:"subject_prefix"`
		RoutineNote        string `yaml:"routine_note"`
		ActionNote         string `yaml:"action_note"`
	}

	// Publisher configures the draft-post workflow (cmd/publish).
	Publisher struct {
		KeywordsCSV    string `yaml:"keywords_csv"`
		PromptPath     string `yaml:"prompt_path"`
		Model          string `yaml:"model"`
		MaxTokens      int    `yaml:"max_tokens"`
		RetryMaxTokens int    `yaml:"retry_max_tokens"`
		WordPressURL   string `yaml:"wordpress_url"`
	}

	// QueriesRoot lists the configured search queries, in dispatch order.
	// Order matters: when the per-run cap truncates ingestion, earlier
	// queries are favored.
	QueriesRoot struct {
		Queries []Query `yaml:"queries"`
	}

	// Query is one search-feed source: a human label plus the query string.
	Query struct {
		Label string `yaml:"label"`
		Query string `yaml:"query"`
	}
)

// LoadRoot reads the main configuration file and applies defaults for every
// value left unset.
func LoadRoot(path string) (Root, error) {
	var cfg Root

	data, err := os.ReadFile(path)
	if err != nil {
		return Root{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Root{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadQueries reads the search-query list.
func LoadQueries(path string) (QueriesRoot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return QueriesRoot{}, fmt.Errorf("read queries config: %w", err)
	}

	var cfg QueriesRoot
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return QueriesRoot{}, fmt.Errorf("unmarshal queries config: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration, used by tests and as the
// fallback for unset fields.
func Default() Root {
	var cfg Root
	cfg.applyDefaults()
	return cfg
}

func (c *Root) applyDefaults() {
	p := &c.Pipeline
	if p.BackfillHours <= 0 {
		p.BackfillHours = 168
	}
	if p.MaxItemsPerRun <= 0 {
		p.MaxItemsPerRun = 120
	}
	if p.PerSourceScan <= 0 {
		p.PerSourceScan = 200
	}
	if p.SeenHistory <= 0 {
		p.SeenHistory = 10000
	}
	if p.StatePath == "" {
		p.StatePath = "state/state.json"
	}
	if p.OutputDir == "" {
		p.OutputDir = "output"
	}

	cl := &c.Classify
	if len(cl.DommeTerms) == 0 {
		cl.DommeTerms = []string{"findomme", "domme", "dominatrix", "goddess"}
	}
	if len(cl.PaypigTerms) == 0 {
		cl.PaypigTerms = []string{"paypig", "pay pig", "tribute", "drain"}
	}
	if len(cl.MediaTerms) == 0 {
		cl.MediaTerms = []string{"media", "manga", "comic", "doujin", "stories", "movie", "tv"}
	}

	s := &c.Scoring
	if s.QuestionWeight == 0 {
		s.QuestionWeight = 2
	}
	if len(s.Lexicon) == 0 {
		s.Lexicon = []LexiconEntry{
			{Term: "how to", Weight: 1, Tag: "how-to"},
			{Term: "beginner", Weight: 1, Tag: "beginner"},
			{Term: "start", Weight: 1, Tag: "start"},
			{Term: "advice", Weight: 1, Tag: "advice"},
			{Term: "help", Weight: 1, Tag: "help"},
			{Term: "platform", Weight: 1, Tag: "platform"},
			{Term: "loyalfans", Weight: 1, Tag: "platform"},
			{Term: "fansly", Weight: 1, Tag: "platform"},
			{Term: "paypig", Weight: 1, Tag: "paypig"},
			{Term: "findom", Weight: 1, Tag: "findom"},
			{Term: "financial domination", Weight: 1, Tag: "findom"},
			{Term: "teamviewer", Weight: 1, Tag: "tooling"},
			{Term: "telegram", Weight: 1, Tag: "tooling"},
			{Term: "addiction", Weight: 2, Tag: "boundaries"},
			{Term: "limits", Weight: 1, Tag: "boundaries"},
		}
	}
	if len(s.TargetFeedTerms) == 0 {
		s.TargetFeedTerms = []string{"findom", "findomme", "paypig"}
	}
	if s.TargetFeedBonus == 0 {
		s.TargetFeedBonus = 2
	}
	if len(s.MegathreadMarkers) == 0 {
		s.MegathreadMarkers = []string{"megathread", "weekly thread", "daily thread"}
	}
	if s.MegathreadPenalty == 0 {
		s.MegathreadPenalty = 3
	}
	if s.FreshBonus == 0 {
		s.FreshBonus = 3
	}
	if s.RecentBonus == 0 {
		s.RecentBonus = 2
	}
	if s.NearbyBonus == 0 {
		s.NearbyBonus = 1
	}
	if s.OldPenalty == 0 {
		s.OldPenalty = 2
	}
	if s.MaxSignals <= 0 {
		s.MaxSignals = 6
	}
	if s.Openers.Question == nil {
		s.Openers.Question = map[string]string{
			string(queue.CategoryDomme):   "Answer the question directly from studio experience, then add one safety caveat.",
			string(queue.CategoryPaypig):  "Answer the question first, then point at one community resource.",
			string(queue.CategoryMedia):   "Answer briefly and name one concrete title worth a look.",
			string(queue.CategoryGeneral): "Answer the question in plain terms before anything else.",
		}
	}
	if s.Openers.Default == nil {
		s.Openers.Default = map[string]string{
			string(queue.CategoryDomme):  "Share one concrete lesson from coaching new creators.",
			string(queue.CategoryPaypig): "Add perspective from the paying side, no pitch.",
			string(queue.CategoryMedia):  "Add one related title or scene and why it holds up.",
		}
	}

	r := &c.Report
	if r.HighPriorityMin == 0 {
		r.HighPriorityMin = 5
	}
	if r.HighPriorityMaxAge <= 0 {
		r.HighPriorityMaxAge = 12
	}
	if r.SectionCap <= 0 {
		r.SectionCap = 10
	}
	if r.SubjectPrefix == "" {
		r.SubjectPrefix = "Reddit queue"
	}
	if r.RoutineNote == "" {
		r.RoutineNote = "Suggested routine: pick 3 threads, reply with value, no selling."
	}
	if r.ActionNote == "" {
		r.ActionNote = "Action: reply with 3 to 6 sentences, add your perspective, link only if truly relevant."
	}

	pub := &c.Publisher
	if pub.KeywordsCSV == "" {
		pub.KeywordsCSV = "data/keywords.csv"
	}
	if pub.PromptPath == "" {
		pub.PromptPath = "prompts/template_v1.txt"
	}
	if pub.Model == "" {
		pub.Model = "gpt-4o-mini"
	}
	if pub.MaxTokens <= 0 {
		pub.MaxTokens = 2500
	}
	if pub.RetryMaxTokens <= 0 {
		pub.RetryMaxTokens = 4000
	}
}
