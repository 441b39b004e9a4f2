package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
)

// ErrEmptyResponse is returned when the server answers without choices
var ErrEmptyResponse = errors.New("empty response from model server")

// OpenAIClient talks to an OpenAI-compatible chat completion endpoint,
// typically a local llama.cpp or LM Studio server hosting a GGUF model
type OpenAIClient struct {
	client      *openai.Client
	modelName   string
	temperature float32
	logger      *zap.Logger
}

// NewOpenAIClient creates a new client for the server at baseURL
func NewOpenAIClient(
	baseURL string,
	apiKey string,
	modelName string,
	temperature float32,
	logger *zap.Logger,
) *OpenAIClient {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientConfig),
		modelName:   modelName,
		temperature: temperature,
		logger:      logger,
	}
}

// NewSession starts a conversation with an empty history
func (c *OpenAIClient) NewSession(ctx context.Context) (core.LLMSession, error) {
	return &session{client: c}, nil
}

// session accumulates the chat history of one conversation
type session struct {
	client   *OpenAIClient
	messages []openai.ChatCompletionMessage
	closed   bool
}

// Generate sends prompt as the next user turn and returns the reply
func (s *session) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if s.closed {
		return "", errors.New("session is closed")
	}

	s.messages = append(s.messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := s.client.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.client.modelName,
		Messages:    s.messages,
		MaxTokens:   maxTokens,
		Temperature: s.client.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	reply := resp.Choices[0].Message
	s.messages = append(s.messages, reply)

	s.client.logger.Debug("Model responded",
		zap.String("model", s.client.modelName),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return reply.Content, nil
}

// Close discards the conversation history
func (s *session) Close() error {
	s.messages = nil
	s.closed = true
	return nil
}
