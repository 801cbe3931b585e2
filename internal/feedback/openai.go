package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/spigell/resume-analyzer/internal/logger"
	"github.com/spigell/resume-analyzer/internal/utils"
)

const (
	openAIName             = "openai"
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultOpenAIMaxTokens = 450
	defaultTemperature     = 0.2
	defaultMaxLogLength    = 200
)

// OpenAIConfig configures the OpenAI-compatible chat completion backend.
type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxTokens    int
	MaxLogLength int
	Logger       *zap.Logger
}

// OpenAI asks an OpenAI-compatible chat model for feedback.
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int
	maxLogLen int
	logger    *zap.Logger
}

// NewOpenAI creates the OpenAI feedback generator.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		clientCfg.BaseURL = baseURL
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultOpenAIModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultOpenAIMaxTokens
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	return &OpenAI{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     model,
		maxTokens: maxTokens,
		maxLogLen: maxLogLen,
		logger:    logger.WithCommonFields(cfg.Logger, openAIName, model),
	}, nil
}

func (o *OpenAI) Name() string { return openAIName }

func (o *OpenAI) Generate(ctx context.Context, req Request) (*Result, error) {
	prompt := buildPrompt(req)

	o.logger.Debug("openai chat completion request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, o.maxLogLen)),
	)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: defaultTemperature,
		MaxTokens:   o.maxTokens,
	})
	if err != nil {
		return nil, &Error{Provider: openAIName, Err: describeOpenAIError(err)}
	}

	if len(resp.Choices) == 0 {
		return nil, &Error{Provider: openAIName, Err: errors.New("empty completion response")}
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if raw == "" {
		return nil, &Error{Provider: openAIName, Err: errors.New("empty completion content")}
	}

	o.logger.Debug("openai chat completion response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, o.maxLogLen)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	res := parseResponse(raw)
	res.Source = o.Name()
	return res, nil
}

func describeOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("api error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("request error %d: %w", reqErr.HTTPStatusCode, err)
	}

	return fmt.Errorf("chat completion: %w", err)
}
