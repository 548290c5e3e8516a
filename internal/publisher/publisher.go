// Package publisher implements the draft-post workflow: take the first
// pending keyword from the sheet, generate an article draft, store it as a
// WordPress draft, and write the row status back. It is independent of the
// digest pipeline and runs from its own binary.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PostCreator is the WordPress boundary, swappable in tests.
type PostCreator interface {
	CreateDraft(ctx context.Context, draft Draft) (int64, string, error)
}

// DraftGenerator is the model boundary, swappable in tests.
type DraftGenerator interface {
	Generate(ctx context.Context, keyword string) (Draft, error)
}

// Publisher processes one keyword row per invocation.
type Publisher struct {
	sheetPath string
	generator DraftGenerator
	wordpress PostCreator
	clock     func() time.Time
	logger    *zap.Logger
}

// New creates a publisher over the keywords sheet at sheetPath.
func New(sheetPath string, generator DraftGenerator, wordpress PostCreator, clock func() time.Time, logger *zap.Logger) *Publisher {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		sheetPath: sheetPath,
		generator: generator,
		wordpress: wordpress,
		clock:     clock,
		logger:    logger,
	}
}

// PublishNext handles the first pending keyword. On success the row becomes
// done with the post id and link recorded; on a generation or upload failure
// the row becomes error with a note, so the next invocation moves on instead
// of retrying the same keyword forever.
func (p *Publisher) PublishNext(ctx context.Context) error {
	sheet, err := LoadSheet(p.sheetPath)
	if err != nil {
		return err
	}

	idx, row, err := sheet.FirstPending()
	if err != nil {
		if errors.Is(err, ErrNoPendingKeyword) {
			p.logger.Info("no pending keywords, nothing to publish")
		}
		return err
	}

	keyword := row["keyword"]
	p.logger.Info("publishing keyword", zap.String("keyword", keyword), zap.Int("row", idx))

	draft, err := p.generator.Generate(ctx, keyword)
	if err != nil {
		p.markFailed(sheet, idx, err)
		return fmt.Errorf("generate draft: %w", err)
	}

	postID, link, err := p.wordpress.CreateDraft(ctx, draft)
	if err != nil {
		p.markFailed(sheet, idx, err)
		return fmt.Errorf("create wordpress draft: %w", err)
	}

	sheet.Update(idx, map[string]string{
		"status":     StatusDone,
		"post_id":    fmt.Sprintf("%d", postID),
		"post_url":   link,
		"updated_at": p.clock().UTC().Format(time.RFC3339),
		"note":       "",
	})
	if err := sheet.Save(); err != nil {
		return fmt.Errorf("save keywords sheet: %w", err)
	}

	p.logger.Info("keyword published",
		zap.String("keyword", keyword),
		zap.Int64("post_id", postID),
		zap.String("link", link))

	return nil
}

func (p *Publisher) markFailed(sheet *Sheet, idx int, cause error) {
	sheet.Update(idx, map[string]string{
		"status":     StatusError,
		"updated_at": p.clock().UTC().Format(time.RFC3339),
		"note":       truncate(cause.Error(), 200),
	})
	if err := sheet.Save(); err != nil {
		p.logger.Error("failed to record error status", zap.Error(err))
	}
}
