// Package openaicompat builds chat models and raw SDK clients for any
// OpenAI-compatible endpoint (Groq, OpenRouter, OpenAI itself).
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"

	verifyPrompt = "Hello"
)

type LLMBuilder interface {
	New(ctx context.Context) (model.ToolCallingChatModel, error)
}

var _ LLMBuilder = (*Config)(nil)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.groq.com/openai/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"llama-3.3-70b-versatile"`
	MaxCompletionToken *int          `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

func (c *Config) modelName() string {
	if name := strings.TrimSpace(c.Model); name != "" {
		return name
	}
	return DefaultModel
}

func (c *Config) baseURL() string {
	if trimmed := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/"); trimmed != "" {
		return trimmed
	}
	return DefaultBaseURL
}

func (c *Config) New(ctx context.Context) (model.ToolCallingChatModel, error) {
	temp := c.Temperature
	conf := &openaimodel.ChatModelConfig{
		BaseURL:     c.baseURL(),
		APIKey:      strings.TrimSpace(c.APIKey),
		Model:       c.modelName(),
		MaxTokens:   c.MaxCompletionToken,
		Temperature: &temp,
		Timeout:     c.Timeout,
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("openaicompat: create chat model %s: %w", conf.Model, err)
	}

	return m, nil
}

// NewClient creates a raw OpenAI SDK client for the configured endpoint.
// It returns nil when no API key is set.
func NewClient(cfg Config) *openaisdk.Client {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil
	}

	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithBaseURL(cfg.baseURL()),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := openaisdk.NewClient(opts...)
	return &client
}

// Verify sends a one-word prompt through the raw client and returns the
// first choice's text. It is used to check credentials and model access.
func Verify(ctx context.Context, cfg Config) (string, error) {
	client := NewClient(cfg)
	if client == nil {
		return "", errors.New("openaicompat: api key is required")
	}

	resp, err := client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(verifyPrompt),
		},
		Model: openaisdk.ChatModel(cfg.modelName()),
	})
	if err != nil {
		return "", fmt.Errorf("openaicompat: verify %s: %w", cfg.modelName(), err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openaicompat: verify %s: empty choices", cfg.modelName())
	}

	return resp.Choices[0].Message.Content, nil
}
