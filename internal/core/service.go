package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ClassifyRequest carries the inputs of one classification call
type ClassifyRequest struct {
	Subject    string
	Sender     string
	Categories []string
	Task       Task
}

// Recorder receives classification telemetry; implementations must be nil-safe
type Recorder interface {
	CacheLookup(result string)
	ModelCall(task string, status string, elapsed time.Duration)
}

// ClassificationService asks the language model to classify emails,
// memoizing raw responses through the response cache
type ClassificationService struct {
	llmClient LLMClient
	cache     CacheRepository
	prompts   *PromptBuilder
	recorder  Recorder
	logger    *zap.Logger
	cacheTTL  time.Duration
	maxTokens int
}

// NewClassificationService creates a new classification service.
// cache and recorder may be nil.
func NewClassificationService(
	llmClient LLMClient,
	cache CacheRepository,
	prompts *PromptBuilder,
	recorder Recorder,
	logger *zap.Logger,
	cacheTTL time.Duration,
	maxTokens int,
) *ClassificationService {
	return &ClassificationService{
		llmClient: llmClient,
		cache:     cache,
		prompts:   prompts,
		recorder:  recorder,
		logger:    logger,
		cacheTTL:  cacheTTL,
		maxTokens: maxTokens,
	}
}

// Classify returns the model's literal response for the request. A cached
// response is returned verbatim without calling the model. When the model
// fails the result is empty and the error wraps ErrModelInvocation.
func (s *ClassificationService) Classify(ctx context.Context, req ClassifyRequest) (string, error) {
	if !req.Task.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTask, req.Task)
	}

	key := HashRequest(req.Subject, req.Sender, req.Categories, req.Task)

	if cached, ok := s.lookup(ctx, key); ok {
		s.logger.Debug("Using cached response",
			zap.String("task", string(req.Task)),
			zap.String("key", key))
		return cached, nil
	}

	prompt, err := s.prompts.Build(req.Task, req.Subject, req.Sender, req.Categories)
	if err != nil {
		return "", err
	}

	start := time.Now()
	output, err := s.generate(ctx, prompt)
	elapsed := time.Since(start)
	if err != nil {
		s.record(string(req.Task), "error", elapsed)
		s.logger.Warn("Model invocation failed",
			zap.String("task", string(req.Task)),
			zap.String("sender", req.Sender),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrModelInvocation, err)
	}
	s.record(string(req.Task), "ok", elapsed)

	s.store(ctx, key, output)
	return output, nil
}

// generate runs one prompt inside its own session. The session is closed
// whether or not generation succeeds.
func (s *ClassificationService) generate(ctx context.Context, prompt string) (output string, err error) {
	session, err := s.llmClient.NewSession(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to open model session: %w", err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			s.logger.Warn("Failed to close model session", zap.Error(closeErr))
		}
	}()

	return session.Generate(ctx, prompt, s.maxTokens)
}

// lookup treats every cache failure as a miss
func (s *ClassificationService) lookup(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}

	value, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		s.recordLookup("hit")
		return value, true
	case errors.Is(err, ErrCacheMiss):
		s.recordLookup("miss")
	default:
		s.recordLookup("error")
		s.logger.Warn("Cache read failed, treating as miss", zap.Error(err))
	}
	return "", false
}

// store is a no-op when the cache is unavailable
func (s *ClassificationService) store(ctx context.Context, key, value string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to update cache", zap.Error(err))
	}
}

func (s *ClassificationService) recordLookup(result string) {
	if s.recorder != nil {
		s.recorder.CacheLookup(result)
	}
}

func (s *ClassificationService) record(task, status string, elapsed time.Duration) {
	if s.recorder != nil {
		s.recorder.ModelCall(task, status, elapsed)
	}
}
