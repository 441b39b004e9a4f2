package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
)

// OllamaClient runs prompts against a local Ollama runtime
type OllamaClient struct {
	client      *api.Client
	modelName   string
	temperature float32
	logger      *zap.Logger
}

// NewOllamaClient creates a client for the Ollama server at host
func NewOllamaClient(host string, modelName string, temperature float32, logger *zap.Logger) (*OllamaClient, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}

	return &OllamaClient{
		client:      api.NewClient(base, http.DefaultClient),
		modelName:   modelName,
		temperature: temperature,
		logger:      logger,
	}, nil
}

// NewSession starts a conversation without prior context
func (c *OllamaClient) NewSession(ctx context.Context) (core.LLMSession, error) {
	return &session{client: c}, nil
}

// session carries the token context Ollama returns between turns
type session struct {
	client  *OllamaClient
	context []int
	closed  bool
}

// Generate runs prompt with the conversation context so far
func (s *session) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if s.closed {
		return "", errors.New("session is closed")
	}

	stream := false
	req := &api.GenerateRequest{
		Model:   s.client.modelName,
		Prompt:  prompt,
		Context: s.context,
		Stream:  &stream,
		Options: map[string]interface{}{
			"num_predict": maxTokens,
			"temperature": s.client.temperature,
		},
	}

	var out strings.Builder
	err := s.client.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		if resp.Done {
			s.context = resp.Context
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}

	s.client.logger.Debug("Model responded", zap.String("model", s.client.modelName))

	return out.String(), nil
}

// Close drops the conversation context
func (s *session) Close() error {
	s.context = nil
	s.closed = true
	return nil
}
