package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-analyzer/internal/secrets"
)

const (
	ProviderAuto   = "auto"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderRules  = "rules"

	openAIKeyEnv = "OPENAI_API_KEY"
	geminiKeyEnv = "GEMINI_API_KEY"
)

// Config selects and configures the feedback backend.
type Config struct {
	Provider string `mapstructure:"provider"`
	// Timeout bounds a single feedback request. Zero means no limit.
	Timeout time.Duration   `mapstructure:"timeout"`
	OpenAI  *OpenAISettings `mapstructure:"openai"`
	Gemini  *GeminiSettings `mapstructure:"gemini"`
}

type OpenAISettings struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	BaseURL      string `mapstructure:"base-url"`
	Model        string `mapstructure:"model"`
	MaxTokens    int    `mapstructure:"max-tokens"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type GeminiSettings struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

// Select returns the configured feedback generator. Remote backends are built
// lazily and always wrapped with the rule-based fallback. A missing API key
// selects the rule-based engine without error.
func Select(cfg *Config, logger *zap.Logger) (Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = &Config{}
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case "", ProviderAuto:
		if remote, ok, err := selectOpenAI(cfg.OpenAI, logger); err != nil || ok {
			return wrapRemote(remote, logger), err
		}
		if remote, ok, err := selectGemini(cfg.Gemini, logger); err != nil || ok {
			return wrapRemote(remote, logger), err
		}
	case ProviderOpenAI:
		if remote, ok, err := selectOpenAI(cfg.OpenAI, logger); err != nil || ok {
			return wrapRemote(remote, logger), err
		}
	case ProviderGemini:
		if remote, ok, err := selectGemini(cfg.Gemini, logger); err != nil || ok {
			return wrapRemote(remote, logger), err
		}
	case ProviderRules:
	default:
		return nil, fmt.Errorf("unsupported feedback provider: %s", cfg.Provider)
	}

	logger.Info("using rule-based feedback", zap.String("requested_provider", provider))
	return Instrument(NewRuleBased()), nil
}

func wrapRemote(remote Generator, logger *zap.Logger) Generator {
	if remote == nil {
		return nil
	}
	return WithFallback(Instrument(remote), Instrument(NewFallbackRules()), logger)
}

func selectOpenAI(s *OpenAISettings, logger *zap.Logger) (Generator, bool, error) {
	if s == nil {
		s = &OpenAISettings{}
	}

	key, err := secrets.Load(secrets.Source{Name: "openai api key", Value: s.APIKey, File: s.APIKeyFile, Env: openAIKeyEnv})
	if err != nil {
		if errors.Is(err, secrets.ErrNotConfigured) {
			return nil, false, nil
		}
		return nil, false, err
	}

	settings := *s
	return NewLazy(ProviderOpenAI, func(context.Context) (Generator, error) {
		return NewOpenAI(OpenAIConfig{
			APIKey:       key,
			BaseURL:      settings.BaseURL,
			Model:        settings.Model,
			MaxTokens:    settings.MaxTokens,
			MaxLogLength: settings.MaxLogLength,
			Logger:       logger,
		})
	}), true, nil
}

func selectGemini(s *GeminiSettings, logger *zap.Logger) (Generator, bool, error) {
	if s == nil {
		s = &GeminiSettings{}
	}

	key, err := secrets.Load(secrets.Source{Name: "gemini api key", Value: s.APIKey, File: s.APIKeyFile, Env: geminiKeyEnv})
	if err != nil {
		if errors.Is(err, secrets.ErrNotConfigured) {
			return nil, false, nil
		}
		return nil, false, err
	}

	settings := *s
	return NewLazy(ProviderGemini, func(ctx context.Context) (Generator, error) {
		return NewGemini(ctx, GeminiConfig{
			APIKey:       key,
			Model:        settings.Model,
			MaxRetries:   settings.MaxRetries,
			MaxLogLength: settings.MaxLogLength,
			Logger:       logger,
		})
	}), true, nil
}
