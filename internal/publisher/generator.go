package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Draft is the structured article the model must return.
type Draft struct {
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	MetaDescription string `json:"meta_description"`
	ContentHTML     string `json:"content_html"`
}

// ChatCompleter is the slice of the OpenAI client the generator needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator produces one draft article per keyword from a prompt template.
type Generator struct {
	client         ChatCompleter
	model          string
	maxTokens      int
	retryMaxTokens int
	template       string
	logger         *zap.Logger
}

// NewGenerator builds a generator. template must contain the {KEYWORD}
// placeholder.
func NewGenerator(client ChatCompleter, model string, maxTokens, retryMaxTokens int, template string, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		client:         client,
		model:          model,
		maxTokens:      maxTokens,
		retryMaxTokens: retryMaxTokens,
		template:       template,
		logger:         logger,
	}
}

// Generate asks the model for a JSON draft. A response cut off at the token
// limit is retried once with the larger retry budget before failing.
func (g *Generator) Generate(ctx context.Context, keyword string) (Draft, error) {
	prompt := strings.ReplaceAll(g.template, "{KEYWORD}", keyword)

	content, finish, err := g.complete(ctx, prompt, g.maxTokens)
	if err != nil {
		return Draft{}, err
	}
	if finish == openai.FinishReasonLength {
		g.logger.Warn("draft truncated at token limit, retrying",
			zap.String("keyword", keyword),
			zap.Int("retry_max_tokens", g.retryMaxTokens))
		content, finish, err = g.complete(ctx, prompt, g.retryMaxTokens)
		if err != nil {
			return Draft{}, err
		}
		if finish == openai.FinishReasonLength {
			return Draft{}, fmt.Errorf("draft for %q still truncated at %d tokens", keyword, g.retryMaxTokens)
		}
	}

	draft, err := parseDraft(content)
	if err != nil {
		return Draft{}, fmt.Errorf("parse draft for %q: %w", keyword, err)
	}

	if draft.Title == "" || draft.ContentHTML == "" {
		return Draft{}, fmt.Errorf("draft for %q is missing title or content", keyword)
	}
	if draft.Slug == "" {
		draft.Slug = Slugify(draft.Title)
	}

	return draft, nil
}

func (g *Generator) complete(ctx context.Context, prompt string, maxTokens int) (string, openai.FinishReason, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", "", fmt.Errorf("chat completion returned no choices")
	}

	choice := resp.Choices[0]
	return strings.TrimSpace(choice.Message.Content), choice.FinishReason, nil
}

// parseDraft unmarshals the response, tolerating surrounding prose by
// extracting the outermost JSON object if the direct parse fails.
func parseDraft(content string) (Draft, error) {
	var draft Draft
	if err := json.Unmarshal([]byte(content), &draft); err == nil {
		return draft, nil
	}

	extracted := extractJSONObject(content)
	if extracted == "" {
		return Draft{}, fmt.Errorf("no JSON object in response")
	}
	if err := json.Unmarshal([]byte(extracted), &draft); err != nil {
		return Draft{}, fmt.Errorf("unmarshal extracted object: %w", err)
	}
	return draft, nil
}

func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

var (
	slugInvalid  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces   = regexp.MustCompile(`\s+`)
	slugRepeated = regexp.MustCompile(`-{2,}`)
)

// Slugify derives a URL slug from a title, bounded to 80 characters.
func Slugify(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = slugInvalid.ReplaceAllString(text, "")
	text = slugSpaces.ReplaceAllString(text, "-")
	text = slugRepeated.ReplaceAllString(text, "-")
	text = strings.Trim(text, "-")
	if len(text) > 80 {
		text = text[:80]
	}
	if text == "" {
		return "draft"
	}
	return text
}
