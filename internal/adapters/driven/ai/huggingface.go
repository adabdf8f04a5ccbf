package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/campushq/campuschat-core/internal/core/domain"
	"github.com/campushq/campuschat-core/internal/core/ports/driven"
)

// Ensure HuggingFaceLLM implements LLMService
var _ driven.LLMService = (*HuggingFaceLLM)(nil)

// HuggingFaceBaseURL is the Hugging Face inference router endpoint
const HuggingFaceBaseURL = "https://router.huggingface.co/v1"

// HuggingFaceLLM proxies chat completions to the Hugging Face inference
// API. The router exposes an OpenAI-shaped chat completions endpoint, but
// its error payloads and auth quirks differ enough that it gets its own
// client rather than reusing the go-openai one.
type HuggingFaceLLM struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewHuggingFaceLLM creates a new Hugging Face LLM service
func NewHuggingFaceLLM(apiKey, model, baseURL string) (driven.LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Hugging Face API key is required")
	}
	if model == "" {
		model = domain.DefaultModelFor(domain.LLMProviderHuggingFace)
	}
	if baseURL == "" {
		baseURL = HuggingFaceBaseURL
	}

	return &HuggingFaceLLM{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// completionRequest is the request body for the chat completions endpoint
type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// completionResponse is the non-streaming response shape
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

// streamChunk is one server-sent event of a streaming response
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Chat runs a single completion over the message history
func (s *HuggingFaceLLM) Chat(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions) (string, error) {
	resp, err := s.doRequest(ctx, s.buildRequest(messages, opts, false))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var comp completionResponse
	if err := json.Unmarshal(body, &comp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if comp.Error != nil {
		return "", s.wrapError(resp.StatusCode, comp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", s.wrapError(resp.StatusCode, string(body))
	}
	if len(comp.Choices) == 0 {
		return "", fmt.Errorf("huggingface returned no completion choices")
	}
	return comp.Choices[0].Message.Content, nil
}

// ChatStream runs a completion and delivers the response incrementally.
// The router streams server-sent events, one JSON chunk per "data:" line,
// terminated by "data: [DONE]".
func (s *HuggingFaceLLM) ChatStream(ctx context.Context, messages []domain.ChatMessage, opts domain.ChatOptions, fn func(domain.StreamDelta) error) (string, error) {
	resp, err := s.doRequest(ctx, s.buildRequest(messages, opts, true))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", s.wrapError(resp.StatusCode, string(body))
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return "", fmt.Errorf("failed to parse stream chunk: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		content := chunk.Choices[0].Delta.Content
		if content == "" {
			continue
		}
		full.WriteString(content)
		if err := fn(domain.StreamDelta{Content: content}); err != nil {
			return "", err
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("%w: huggingface: stream read failed: %v", domain.ErrServiceUnavailable, err)
	}

	if err := fn(domain.StreamDelta{Done: true}); err != nil {
		return "", err
	}
	return full.String(), nil
}

// Provider returns which provider this service talks to
func (s *HuggingFaceLLM) Provider() domain.LLMProvider {
	return domain.LLMProviderHuggingFace
}

// Model returns the model name being used
func (s *HuggingFaceLLM) Model() string {
	return s.model
}

// Ping verifies the provider is reachable with the configured key.
// A minimal one-token completion is the cheapest authenticated call the
// router accepts for every hosted model.
func (s *HuggingFaceLLM) Ping(ctx context.Context) error {
	_, err := s.Chat(ctx,
		[]domain.ChatMessage{{Role: domain.RoleUser, Content: "ping"}},
		domain.ChatOptions{MaxTokens: 1},
	)
	return err
}

// Close releases resources held by the service
func (s *HuggingFaceLLM) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *HuggingFaceLLM) buildRequest(messages []domain.ChatMessage, opts domain.ChatOptions, stream bool) completionRequest {
	model := opts.Model
	if model == "" {
		model = s.model
	}

	msgs := make([]wireMessage, len(messages))
	for i, m := range messages {
		msgs[i] = wireMessage{Role: string(m.Role), Content: m.Content}
	}

	return completionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Stream:      stream,
	}
}

func (s *HuggingFaceLLM) doRequest(ctx context.Context, reqBody completionRequest) (*http.Response, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: huggingface: %v", domain.ErrServiceUnavailable, err)
	}
	return resp, nil
}

func (s *HuggingFaceLLM) wrapError(status int, message string) error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("%w: huggingface rejected the API key", domain.ErrProviderNotConfigured)
	}
	return fmt.Errorf("%w: huggingface returned status %d: %s", domain.ErrServiceUnavailable, status, message)
}
