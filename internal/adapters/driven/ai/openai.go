package ai

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
)

// Ensure OpenAILLM implements LLMService
var _ driven.LLMService = (*OpenAILLM)(nil)

// GroqBaseURL is Groq's OpenAI-compatible endpoint
const GroqBaseURL = "https://api.groq.com/openai/v1"

// OpenAILLM proxies chat completions to any OpenAI-compatible API.
// It backs both the OpenAI and Groq providers; Groq speaks the same
// wire protocol under a different base URL.
type OpenAILLM struct {
	client   *openai.Client
	provider domain.LLMProvider
	model    string
}

// NewOpenAILLM creates an LLM service talking to the OpenAI API
func NewOpenAILLM(apiKey, model, baseURL string) (driven.LLMService, error) {
	return newCompatLLM(domain.LLMProviderOpenAI, apiKey, model, baseURL)
}

// NewGroqLLM creates an LLM service talking to the Groq API
func NewGroqLLM(apiKey, model, baseURL string) (driven.LLMService, error) {
	if baseURL == "" {
		baseURL = GroqBaseURL
	}
	return newCompatLLM(domain.LLMProviderGroq, apiKey, model, baseURL)
}

func newCompatLLM(provider domain.LLMProvider, apiKey, model, baseURL string) (driven.LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is required", provider)
	}
	if model == "" {
		model = domain.DefaultModelFor(provider)
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAILLM{
		client:   openai.NewClientWithConfig(cfg),
		provider: provider,
		model:    model,
	}, nil
}

// Chat runs a single completion over the message history
func (s *OpenAILLM) Chat(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, s.buildRequest(messages, opts, false))
	if err != nil {
		return "", wrapProviderError(s.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no completion choices", s.provider)
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatStream runs a completion and delivers the response incrementally
func (s *OpenAILLM) ChatStream(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions, fn func(domain.StreamDelta) error) (string, error) {
	stream, err := s.client.CreateChatCompletionStream(ctx, s.buildRequest(messages, opts, true))
	if err != nil {
		return "", wrapProviderError(s.provider, err)
	}
	defer stream.Close()

	var full []byte
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", wrapProviderError(s.provider, err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}
		full = append(full, content...)
		if err := fn(domain.StreamDelta{Content: content}); err != nil {
			return "", err
		}
	}

	if err := fn(domain.StreamDelta{Done: true}); err != nil {
		return "", err
	}
	return string(full), nil
}

// Provider returns which provider this service talks to
func (s *OpenAILLM) Provider() domain.LLMProvider {
	return s.provider
}

// Model returns the model name being used
func (s *OpenAILLM) Model() string {
	return s.model
}

// Ping verifies the provider is reachable with the configured key
func (s *OpenAILLM) Ping(ctx context.Context) error {
	_, err := s.client.ListModels(ctx)
	if err != nil {
		return wrapProviderError(s.provider, err)
	}
	return nil
}

// Close releases resources held by the service
func (s *OpenAILLM) Close() error {
	return nil
}

func (s *OpenAILLM) buildRequest(messages []domain.ChatMessage, opts domain.ChatOptions, stream bool) openai.ChatCompletionRequest {
	model := opts.Model
	if model == "" {
		model = s.model
	}

	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}

	return openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Stream:      stream,
	}
}

// wrapProviderError maps API failures to domain errors so callers can
// distinguish a misconfigured key from an unreachable provider.
func wrapProviderError(provider domain.LLMProvider, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403 {
			return fmt.Errorf("%w: %s rejected the API key", domain.ErrProviderNotConfigured, provider)
		}
		return fmt.Errorf("%w: %s: %s", domain.ErrServiceUnavailable, provider, apiErr.Message)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrServiceUnavailable, provider, err)
}
