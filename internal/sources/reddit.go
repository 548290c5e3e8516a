// Package sources fetches Reddit search feeds, one per configured query,
// and hands raw items to the pipeline. A failing feed never fails the run;
// it just contributes zero items.
package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"redditqueue/internal/config"
	"redditqueue/internal/queue"
)

const (
	searchBaseURL = "https://www.reddit.com/search.rss"
	// snippetMaxRunes bounds the plain-text excerpt kept from entry HTML.
	snippetMaxRunes = 240
)

// Collector loads search feeds in the configured order.
type Collector struct {
	queries []config.Query
	client  *http.Client
	clock   func() time.Time
	scanCap int
	logger  *zap.Logger
}

// NewCollector wires an HTTP client; scanCap bounds how many entries of a
// single feed are considered (defaults to 200).
func NewCollector(queries []config.Query, client *http.Client, clock func() time.Time, scanCap int, logger *zap.Logger) *Collector {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if clock == nil {
		clock = time.Now
	}
	if scanCap <= 0 {
		scanCap = 200
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		queries: queries,
		client:  client,
		clock:   clock,
		scanCap: scanCap,
		logger:  logger,
	}
}

// Sources returns the feed labels in configured order.
func (c *Collector) Sources() []string {
	labels := make([]string, 0, len(c.queries))
	for _, q := range c.queries {
		labels = append(labels, q.Label)
	}
	return labels
}

// Fetch loads one search feed by label and returns its entries as raw items.
func (c *Collector) Fetch(ctx context.Context, label string) ([]queue.RawItem, error) {
	var query config.Query
	found := false
	for _, q := range c.queries {
		if q.Label == label {
			query = q
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("unknown source label %q", label)
	}

	feedURL := buildFeedURL(query.Query)
	body, err := c.fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %q: %w", label, err)
	}

	entries, err := parseAtom(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %q: %w", label, err)
	}

	if len(entries) > c.scanCap {
		entries = entries[:c.scanCap]
	}

	items := make([]queue.RawItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, queue.RawItem{
			ID:        strings.TrimSpace(entry.ID),
			Feed:      label,
			Title:     strings.TrimSpace(entry.Title),
			URL:       entry.link(),
			Snippet:   extractSnippet(entry.Content),
			CreatedAt: entry.createdAt(c.clock()),
		})
	}

	c.logger.Debug("fetched source",
		zap.String("source", label),
		zap.Int("entries", len(items)))

	return items, nil
}

// buildFeedURL turns a search query into the search.rss URL, newest first,
// restricted to the past week.
func buildFeedURL(query string) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "new")
	params.Set("t", "week")
	return searchBaseURL + "?" + params.Encode()
}

func (c *Collector) fetch(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	// Browser-like headers; Reddit rejects default Go user agents.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/atom+xml, application/rss+xml, application/xml, text/xml, */*")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// --- Atom parsing ---

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string     `xml:"id"`
	Title     string     `xml:"title"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
	Content   string     `xml:"content"`
	Links     []atomLink `xml:"link"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

func parseAtom(data []byte) ([]atomEntry, error) {
	var feed atomFeed
	if err := xml.Unmarshal(data, &feed); err != nil {
		// Tolerant retry for feeds with loose markup.
		decoder := xml.NewDecoder(strings.NewReader(string(data)))
		decoder.Strict = false
		if err := decoder.Decode(&feed); err != nil {
			return nil, fmt.Errorf("parse atom XML: %w", err)
		}
	}
	return feed.Entries, nil
}

// link prefers the alternate link, falling back to the first one present.
func (e atomEntry) link() string {
	for _, l := range e.Links {
		if l.Rel == "" || l.Rel == "alternate" {
			return strings.TrimSpace(l.Href)
		}
	}
	if len(e.Links) > 0 {
		return strings.TrimSpace(e.Links[0].Href)
	}
	return ""
}

// createdAt resolves the entry timestamp: published, then updated, then the
// ingestion time.
func (e atomEntry) createdAt(fallback time.Time) time.Time {
	for _, raw := range []string{e.Published, e.Updated} {
		if t, ok := parseTime(raw); ok {
			return t
		}
	}
	return fallback
}

func parseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	formats := []string{
		time.RFC3339,
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// extractSnippet flattens entry HTML to a short plain-text excerpt for the
// run artifact and the HTML report.
func extractSnippet(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}

	text := strings.Join(strings.Fields(doc.Text()), " ")
	runes := []rune(text)
	if len(runes) > snippetMaxRunes {
		text = string(runes[:snippetMaxRunes]) + "..."
	}
	return text
}
