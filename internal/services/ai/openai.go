package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second
	// DefaultMaxTokens caps the completion length
	DefaultMaxTokens = 500
	// DefaultTemperature is the sampling temperature for completions
	DefaultTemperature = 0.7

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

const (
	summaryPrompt = "Please provide a concise summary of the following text. Focus on the main points and key information.\n\n"

	suggestPrompt = "Based on the following text, generate a list of actionable tasks. " +
		"Each task should be a clear, actionable item that can be completed. " +
		"Return each task on a new line.\n\n"
)

// OpenAIProvider implements the TextService interface using OpenAI's API
type OpenAIProvider struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
	debugMode   bool
}

// OpenAIConfig holds the tunables for the OpenAI provider
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(OpenAIConfig{APIKey: apiKey, Model: model}, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(cfg OpenAIConfig, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
		debugMode:   debugMode,
	}
}

// Summarize produces a concise summary of the given note content
func (p *OpenAIProvider) Summarize(ctx context.Context, content string) (string, error) {
	text, err := p.complete(ctx, "summarize_note", summaryPrompt+content)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}
	return text, nil
}

// SuggestTasks extracts actionable task descriptions from note content.
// Blank lines and enumeration markers in the raw completion are stripped.
func (p *OpenAIProvider) SuggestTasks(ctx context.Context, content string) ([]string, error) {
	text, err := p.complete(ctx, "suggest_tasks", suggestPrompt+content)
	if err != nil {
		return nil, fmt.Errorf("failed to generate task suggestions: %w", err)
	}
	return ParseSuggestions(text), nil
}

// complete sends a single-message chat completion and returns the response content.
func (p *OpenAIProvider) complete(ctx context.Context, operation, prompt string) (string, error) {
	requestID := ExtractRequestID(ctx)
	userIDStr := ExtractUserID(ctx)
	noteIDStr := ExtractNoteID(ctx)

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("user_id", userIDStr),
			zap.String("note_id", noteIDStr),
			zap.String("request_id", requestID),
		)
	}

	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(int64(p.maxTokens)),
		Temperature: openai.Float(p.temperature),
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("user_id", userIDStr),
				zap.String("note_id", noteIDStr),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", apiErr
		}
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("user_id", userIDStr),
			zap.String("note_id", noteIDStr),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return content, nil
}
