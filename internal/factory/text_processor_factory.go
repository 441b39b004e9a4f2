package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/utils"
)

// TextProcessorFactory creates text processors and the prompt builder that uses them
type TextProcessorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new TextProcessorFactory
func NewTextProcessorFactory(cfg *config.Config, logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTextProcessor creates a new TextProcessor
func (f *TextProcessorFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}

// CreatePromptBuilder creates a prompt builder limited to llm.max_field_size
func (f *TextProcessorFactory) CreatePromptBuilder(tp *utils.TextProcessor) *core.PromptBuilder {
	return core.NewPromptBuilder(tp, f.cfg.GetLLM().MaxFieldSize)
}
