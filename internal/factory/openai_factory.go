package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/adapters/openai"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
)

// OpenAIFactory creates clients for OpenAI-compatible model servers
type OpenAIFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewOpenAIFactory creates a new OpenAI factory
func NewOpenAIFactory(cfg *config.Config, logger *zap.Logger) *OpenAIFactory {
	return &OpenAIFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates an OpenAI-compatible LLM client. The default base
// URL targets a local llama.cpp server, which ignores the API key.
func (f *OpenAIFactory) CreateLLMClient() (core.LLMClient, error) {
	openaiCfg := f.cfg.GetOpenAI()
	llmCfg := f.cfg.GetLLM()

	return openai.NewOpenAIClient(
		openaiCfg.BaseURL,
		openaiCfg.APIKey,
		llmCfg.Model,
		llmCfg.Temperature,
		f.logger,
	), nil
}
