package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// WordPress posts drafts through the wp/v2 REST API using an application
// password.
type WordPress struct {
	baseURL     string
	user        string
	appPassword string
	client      *http.Client
	logger      *zap.Logger
}

// NewWordPress builds the REST client; baseURL is the site root.
func NewWordPress(baseURL, user, appPassword string, client *http.Client, logger *zap.Logger) *WordPress {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WordPress{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		user:        user,
		appPassword: appPassword,
		client:      client,
		logger:      logger,
	}
}

type wpPostRequest struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Status  string `json:"status"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt,omitempty"`
}

type wpPostResponse struct {
	ID   int64  `json:"id"`
	Link string `json:"link"`
}

// CreateDraft stores the draft post and returns its id and link.
func (w *WordPress) CreateDraft(ctx context.Context, draft Draft) (int64, string, error) {
	payload, err := json.Marshal(wpPostRequest{
		Title:   draft.Title,
		Slug:    draft.Slug,
		Status:  "draft",
		Content: draft.ContentHTML,
		Excerpt: draft.MetaDescription,
	})
	if err != nil {
		return 0, "", fmt.Errorf("marshal post payload: %w", err)
	}

	endpoint := w.baseURL + "/wp-json/wp/v2/posts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, "", fmt.Errorf("build post request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(w.user, w.appPassword)

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("post draft: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return 0, "", fmt.Errorf("wordpress returned %d: %s", resp.StatusCode, truncate(string(body), 300))
	}

	var created wpPostResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return 0, "", fmt.Errorf("unmarshal response: %w", err)
	}

	w.logger.Info("draft created",
		zap.Int64("post_id", created.ID),
		zap.String("link", created.Link))

	return created.ID, created.Link, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
