package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/adapters/ollama"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
)

// OllamaFactory creates clients for a local Ollama runtime
type OllamaFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewOllamaFactory creates a new Ollama factory
func NewOllamaFactory(cfg *config.Config, logger *zap.Logger) *OllamaFactory {
	return &OllamaFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateLLMClient creates an Ollama LLM client
func (f *OllamaFactory) CreateLLMClient() (core.LLMClient, error) {
	llmCfg := f.cfg.GetLLM()
	return ollama.NewOllamaClient(f.cfg.GetOllama().Host, llmCfg.Model, llmCfg.Temperature, f.logger)
}
