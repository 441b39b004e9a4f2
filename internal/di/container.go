package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/factory"
	"github.com/mikey/email-classifier/internal/metrics"
	"github.com/mikey/email-classifier/internal/noreply"
	"github.com/mikey/email-classifier/internal/report"
	"github.com/mikey/email-classifier/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer(opts Options) (*dig.Container, error) {
	container := dig.New()

	// Register configuration and logger
	if err := container.Provide(opts.configProvider()); err != nil {
		return nil, err
	}
	if err := container.Provide(opts.loggerProvider()); err != nil {
		return nil, err
	}

	if err := provideComponents(container); err != nil {
		return nil, err
	}

	return container, nil
}

// BuildContainerWithConfig creates a container around an already loaded configuration
func BuildContainerWithConfig(cfg *config.Config, logger *zap.Logger) (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := container.Provide(func() *zap.Logger { return logger }); err != nil {
		return nil, err
	}

	if err := provideComponents(container); err != nil {
		return nil, err
	}

	return container, nil
}

func provideComponents(container *dig.Container) error {
	providers := []interface{}{
		// Factories
		factory.NewLLMFactory,
		factory.NewCacheFactory,
		factory.NewSourceFactory,
		factory.NewTextProcessorFactory,

		// LLM client
		func(f *factory.LLMFactory) (core.LLMClient, error) {
			return f.CreateLLMClient()
		},

		// Cache repository and TTL
		func(f *factory.CacheFactory) (core.CacheRepository, error) {
			return f.CreateCacheRepository()
		},
		func(f *factory.CacheFactory) (time.Duration, error) {
			return f.GetCacheTTL()
		},

		// Mail source
		func(f *factory.SourceFactory) (core.MailSource, error) {
			return f.CreateMailSource()
		},

		// Text processor and prompt builder
		func(f *factory.TextProcessorFactory) *utils.TextProcessor {
			return f.CreateTextProcessor()
		},
		func(f *factory.TextProcessorFactory, tp *utils.TextProcessor) *core.PromptBuilder {
			return f.CreatePromptBuilder(tp)
		},

		metrics.New,

		// No-reply checker
		func(cfg *config.Config, logger *zap.Logger) *noreply.Checker {
			patterns := cfg.GetNoReplyPatterns()
			if len(patterns) > 0 {
				logger.Debug("Loaded no-reply patterns", zap.Strings("patterns", patterns))
			}
			return noreply.NewChecker(patterns, logger)
		},

		// Classification service
		func(
			cfg *config.Config,
			llmClient core.LLMClient,
			cache core.CacheRepository,
			prompts *core.PromptBuilder,
			m *metrics.Metrics,
			logger *zap.Logger,
			ttl time.Duration,
		) *core.ClassificationService {
			return core.NewClassificationService(llmClient, cache, prompts, m, logger, ttl, cfg.GetLLM().MaxTokens)
		},

		// Pipeline
		func(
			cfg *config.Config,
			source core.MailSource,
			service *core.ClassificationService,
			checker *noreply.Checker,
			m *metrics.Metrics,
			logger *zap.Logger,
		) *core.Pipeline {
			return core.NewPipeline(source, service, checker, m, logger, cfg.GetCategories())
		},

		// Reporting
		report.NewPlotter,
		func(cfg *config.Config, logger *zap.Logger) *report.Mailer {
			smtpCfg := cfg.GetSMTP()
			return report.NewMailer(smtpCfg.Address, smtpCfg.From, smtpCfg.Username, smtpCfg.Password, logger)
		},
	}

	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return err
		}
	}
	return nil
}
