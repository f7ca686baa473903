package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gpt-4o-mini"

const defaultMaxTokens = 1000

// ErrEmptyResponse is returned when the service replies without any choices
// or with empty content.
var ErrEmptyResponse = errors.New("ai: empty response")

// Client sends one structured prompt and decodes the reply into result.
type Client interface {
	Complete(ctx context.Context, req Request, result any) error
	Model() string
}

// Request is a single system+user prompt pair with a response schema.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	Schema       any
	MaxTokens    int
	Temperature  *float64 // nil = model default
}

// Config controls the OpenAI client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// MaxRetries is handed to the SDK; zero disables retries.
	MaxRetries int
	// RequestTimeout bounds each call when positive.
	RequestTimeout time.Duration
}

// OpenAIClient implements Client on top of openai-go.
type OpenAIClient struct {
	openai  openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// New builds an OpenAIClient. An API key is required.
func New(cfg Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ai: API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(max(cfg.MaxRetries, 0)),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &OpenAIClient{
		openai:  openai.NewClient(opts...),
		model:   model,
		timeout: cfg.RequestTimeout,
		logger:  logger.Named("ai"),
	}, nil
}

// Complete runs one chat completion and strictly decodes the reply.
func (c *OpenAIClient) Complete(ctx context.Context, req Request, result any) error {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
		MaxTokens: openai.Int(int64(maxTokens)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        req.SchemaName,
					Description: openai.String("Structured response schema"),
					Schema:      req.Schema,
					Strict:      openai.Bool(true),
				},
			},
		},
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.openai.Chat.Completions.New(ctx, params)
	if err != nil {
		return fmt.Errorf("openai chat: %w", err)
	}

	c.logger.Debug("chat completion finished",
		zap.String("model", c.model),
		zap.String("schema", req.SchemaName),
		zap.Duration("duration", time.Since(start)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return ErrEmptyResponse
	}
	if err := DecodeStrict(resp.Choices[0].Message.Content, result); err != nil {
		return fmt.Errorf("decode %s response: %w", req.SchemaName, err)
	}
	return nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}

// GenerateSchema reflects T into a closed JSON schema suitable for strict
// structured output.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// Temp returns a pointer to t for Request.Temperature.
func Temp(t float64) *float64 {
	return &t
}
