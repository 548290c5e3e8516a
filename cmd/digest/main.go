package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"redditqueue/internal/app"
	"redditqueue/internal/archive"
	"redditqueue/internal/classify"
	"redditqueue/internal/config"
	"redditqueue/internal/mailer"
	"redditqueue/internal/report"
	"redditqueue/internal/scoring"
	"redditqueue/internal/sources"
	"redditqueue/internal/state"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx := context.Background()

	rootCfg, err := config.LoadRoot(configPath("config.yaml"))
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	queriesCfg, err := config.LoadQueries(configPath("queries.yaml"))
	if err != nil {
		logger.Fatal("load queries config", zap.Error(err))
	}
	envCfg, err := config.LoadEnv()
	if err != nil {
		logger.Fatal("load env config", zap.Error(err))
	}
	if err := envCfg.RequireSMTP(); err != nil {
		logger.Fatal("check env config", zap.Error(err))
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	collector := sources.NewCollector(queriesCfg.Queries, httpClient, time.Now, rootCfg.Pipeline.PerSourceScan, logger)

	var dispatcher app.Dispatcher
	if envCfg.DryRun {
		logger.Info("DRY_RUN=1, report goes to stdout")
		dispatcher = stdoutDispatcher{}
	} else {
		dispatcher = mailer.New(mailer.Config{
			Host: envCfg.SMTPHost,
			Port: envCfg.SMTPPort,
			User: envCfg.SMTPUser,
			Pass: envCfg.SMTPPass,
			From: envCfg.MailFrom,
			To:   envCfg.MailTo,
		}, logger)
	}

	pipeline := app.New(app.Deps{
		Collector:  collector,
		Classifier: classify.New(rootCfg.Classify),
		Scorer:     scoring.New(rootCfg.Scoring),
		Renderer:   report.NewRenderer(rootCfg.Report),
		Dispatcher: dispatcher,
		Store:      state.NewFileStore(rootCfg.Pipeline.StatePath),
		Archive:    archive.NewWriter(rootCfg.Pipeline.OutputDir, time.Now),
		Config:     rootCfg.Pipeline,
		Logger:     logger,
	})

	if err := pipeline.Run(ctx); err != nil {
		logger.Fatal("pipeline failed", zap.Error(err))
	}

	logger.Info("pipeline completed successfully")
}

func configPath(name string) string {
	dir := os.Getenv("CONFIG_DIR")
	if dir == "" {
		dir = "configs"
	}
	return dir + "/" + name
}

// stdoutDispatcher keeps the report local during dry runs.
type stdoutDispatcher struct{}

func (stdoutDispatcher) Dispatch(ctx context.Context, subject, plain, html string) error {
	fmt.Printf("Subject: %s\n\n%s\n", subject, plain)
	return nil
}
