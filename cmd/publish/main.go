package main

import (
	"context"
	"errors"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"redditqueue/internal/config"
	"redditqueue/internal/publisher"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx := context.Background()

	rootCfg, err := config.LoadRoot(configPath("config.yaml"))
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	envCfg, err := config.LoadEnv()
	if err != nil {
		logger.Fatal("load env config", zap.Error(err))
	}
	if envCfg.OpenAIAPIKey == "" {
		logger.Fatal("OPENAI_API_KEY is required")
	}
	if rootCfg.Publisher.WordPressURL == "" || envCfg.WPUser == "" || envCfg.WPAppPassword == "" {
		logger.Fatal("wordpress settings are required: publisher.wordpress_url, WP_USER, WP_APP_PASSWORD")
	}

	model := rootCfg.Publisher.Model
	if envCfg.OpenAIModel != "" {
		model = envCfg.OpenAIModel
	}

	template, err := os.ReadFile(rootCfg.Publisher.PromptPath)
	if err != nil {
		logger.Fatal("read prompt template", zap.Error(err))
	}

	generator := publisher.NewGenerator(
		openai.NewClient(envCfg.OpenAIAPIKey),
		model,
		rootCfg.Publisher.MaxTokens,
		rootCfg.Publisher.RetryMaxTokens,
		string(template),
		logger,
	)
	wordpress := publisher.NewWordPress(rootCfg.Publisher.WordPressURL, envCfg.WPUser, envCfg.WPAppPassword, nil, logger)
	pub := publisher.New(rootCfg.Publisher.KeywordsCSV, generator, wordpress, time.Now, logger)

	if err := pub.PublishNext(ctx); err != nil {
		if errors.Is(err, publisher.ErrNoPendingKeyword) {
			return
		}
		logger.Fatal("publish failed", zap.Error(err))
	}
}

func configPath(name string) string {
	dir := os.Getenv("CONFIG_DIR")
	if dir == "" {
		dir = "configs"
	}
	return dir + "/" + name
}
