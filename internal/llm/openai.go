package llm

import (
	"context"
	"errors"
	"math"

	"github.com/sashabaranov/go-openai"
)

// OpenRouterBaseURL OpenRouter 的 OpenAI 兼容接口
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// minTemperature go-openai 会省略值为 0 的 temperature，用最小正数代替 0
const minTemperature = math.SmallestNonzeroFloat32

// OpenAIClient OpenAI 兼容接口客户端（OpenAI / OpenRouter）
type OpenAIClient struct {
	client   *openai.Client
	model    string
	provider string
}

// NewOpenAIClient 创建客户端，baseURL 为空时使用 OpenAI 官方地址
func NewOpenAIClient(apiKey, model, baseURL string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	provider := "openai"
	if baseURL != "" {
		config.BaseURL = baseURL
		if baseURL == OpenRouterBaseURL {
			provider = "openrouter"
		}
	}
	return &OpenAIClient{
		client:   openai.NewClientWithConfig(config),
		model:    model,
		provider: provider,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: minTemperature,
		MaxTokens:   50,
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(c.provider, err)
	}
	if len(resp.Choices) > 0 {
		return resp.Choices[0].Message.Content, nil
	}
	return "", classify(c.provider, errors.New("no response choices"))
}
