package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/mikey/email-classifier/internal/core"
)

// ErrEmptyResponse is returned when Gemini answers without text
var ErrEmptyResponse = errors.New("empty response from Gemini")

// GeminiClient is an implementation of the LLMClient interface using Google Gemini
type GeminiClient struct {
	client      *genai.Client
	modelName   string
	temperature float32
	topP        float32
	logger      *zap.Logger
}

// NewGeminiClient creates a new Gemini client. Extra options are passed to
// the underlying genai client.
func NewGeminiClient(
	ctx context.Context,
	apiKey string,
	modelName string,
	temperature float32,
	topP float32,
	logger *zap.Logger,
	opts ...option.ClientOption,
) (*GeminiClient, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		modelName:   modelName,
		temperature: temperature,
		topP:        topP,
		logger:      logger,
	}, nil
}

// NewSession starts a chat with a freshly configured model
func (c *GeminiClient) NewSession(ctx context.Context) (core.LLMSession, error) {
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(c.temperature)
	model.SetTopP(c.topP)

	return &session{
		model: model,
		chat:  model.StartChat(),
	}, nil
}

// Close releases the underlying genai client
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

type session struct {
	model *genai.GenerativeModel
	chat  *genai.ChatSession
}

// Generate sends prompt as the next chat message
func (s *session) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	s.model.SetMaxOutputTokens(int32(maxTokens))

	resp, err := s.chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Close clears the chat history
func (s *session) Close() error {
	s.chat.History = nil
	return nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
