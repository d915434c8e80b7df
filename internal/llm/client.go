package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
)

// LLMClient 文本生成接口
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrAuth 凭证无效或无权限
	ErrAuth = errors.New("llm authentication failed")
	// ErrQuota 配额耗尽或被限流
	ErrQuota = errors.New("llm quota exceeded")
	// ErrNotConfigured 缺少 API key
	ErrNotConfigured = errors.New("llm api key not configured")
)

// classify 把各 SDK 的错误归一到 ErrAuth / ErrQuota，其他错误原样包装
func classify(provider string, err error) error {
	if err == nil {
		return nil
	}
	if kind := kindOf(err); kind != nil {
		return fmt.Errorf("%s: %w: %v", provider, kind, err)
	}
	return fmt.Errorf("%s: %w", provider, err)
}

func kindOf(err error) error {
	var oaiAPI *openai.APIError
	if errors.As(err, &oaiAPI) {
		if k := kindOfStatus(oaiAPI.HTTPStatusCode); k != nil {
			return k
		}
		if code, ok := oaiAPI.Code.(string); ok && code == "insufficient_quota" {
			return ErrQuota
		}
	}
	var oaiReq *openai.RequestError
	if errors.As(err, &oaiReq) {
		if k := kindOfStatus(oaiReq.HTTPStatusCode); k != nil {
			return k
		}
	}

	var antAPI *anthropic.APIError
	if errors.As(err, &antAPI) {
		switch string(antAPI.Type) {
		case "authentication_error", "permission_error":
			return ErrAuth
		case "rate_limit_error":
			return ErrQuota
		}
	}
	var antReq *anthropic.RequestError
	if errors.As(err, &antReq) {
		if k := kindOfStatus(antReq.StatusCode); k != nil {
			return k
		}
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		if k := kindOfStatus(gErr.Code); k != nil {
			return k
		}
	}

	return kindOfMessage(err.Error())
}

func kindOfStatus(code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrAuth
	case http.StatusTooManyRequests, http.StatusPaymentRequired:
		return ErrQuota
	}
	return nil
}

// kindOfMessage 兜底：部分错误只有文本
func kindOfMessage(msg string) error {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "api key not valid"),
		strings.Contains(msg, "invalid api key"),
		strings.Contains(msg, "authentication"),
		strings.Contains(msg, "unauthorized"):
		return ErrAuth
	case strings.Contains(msg, "quota"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "resource_exhausted"),
		strings.Contains(msg, "resource has been exhausted"):
		return ErrQuota
	}
	return nil
}
