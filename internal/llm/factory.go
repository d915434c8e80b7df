package llm

import (
	"context"
	"fmt"
	"strings"
)

// Config LLM 配置
type Config struct {
	Provider string `yaml:"provider" toml:"provider"` // openrouter | openai | claude | gemini
	APIKey   string `yaml:"api_key" toml:"api_key"`
	Model    string `yaml:"model" toml:"model"`
	BaseURL  string `yaml:"base_url" toml:"base_url"`
}

// DefaultModel 各 provider 的默认模型
func DefaultModel(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return "gpt-4o-mini"
	case "claude", "anthropic":
		return "claude-3-5-haiku-latest"
	case "gemini":
		return "gemini-1.5-flash"
	default:
		return "openai/gpt-4o-mini"
	}
}

// NewClient 按 provider 创建客户端
func NewClient(ctx context.Context, cfg Config) (LLMClient, error) {
	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = "openrouter"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", provider, ErrNotConfigured)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel(provider)
	}

	switch provider {
	case "openrouter":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = OpenRouterBaseURL
		}
		return NewOpenAIClient(cfg.APIKey, model, baseURL), nil

	case "openai":
		return NewOpenAIClient(cfg.APIKey, model, cfg.BaseURL), nil

	case "claude", "anthropic":
		return NewClaudeClient(cfg.APIKey, model, cfg.BaseURL), nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, model)
		if err != nil {
			return nil, err
		}
		return c, nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
