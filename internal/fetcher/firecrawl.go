package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const firecrawlBaseURL = "https://api.firecrawl.dev"

// FirecrawlFetcher Firecrawl 抓取器，通过 Firecrawl 渲染搜索结果页
type FirecrawlFetcher struct {
	apiKey     string
	baseURL    string
	searchURL  string // 搜索页地址，%s 处替换为查询语句
	httpClient *http.Client
}

// NewFirecrawlFetcher 创建Firecrawl获取器
func NewFirecrawlFetcher(apiKey string) *FirecrawlFetcher {
	return NewFirecrawlFetcherWithBaseURL(apiKey, firecrawlBaseURL)
}

// NewFirecrawlFetcherWithBaseURL 指定 API 地址（测试用）
func NewFirecrawlFetcherWithBaseURL(apiKey, baseURL string) *FirecrawlFetcher {
	return &FirecrawlFetcher{
		apiKey:    apiKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		searchURL: "https://www.google.com/search?q=%s",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// WithSearchURL 替换搜索页模板
func (f *FirecrawlFetcher) WithSearchURL(tmpl string) *FirecrawlFetcher {
	if tmpl != "" {
		f.searchURL = tmpl
	}
	return f
}

type firecrawlRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
	WaitFor int      `json:"waitFor,omitempty"` // 等待毫秒数，让JS渲染完成
}

type firecrawlResponse struct {
	Success bool `json:"success"`
	Data    struct {
		HTML     string `json:"html"`
		Markdown string `json:"markdown"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// FetchPage 抓取搜索结果页，优先返回 markdown
func (f *FirecrawlFetcher) FetchPage(ctx context.Context, query string) (string, error) {
	return f.Scrape(ctx, fmt.Sprintf(f.searchURL, url.QueryEscape(query)))
}

// Scrape 抓取单个页面
func (f *FirecrawlFetcher) Scrape(ctx context.Context, pageURL string) (string, error) {
	reqBody := firecrawlRequest{
		URL:     pageURL,
		Formats: []string{"markdown", "html"},
		WaitFor: 1000,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/v1/scrape", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.apiKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError("firecrawl", resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var fcResp firecrawlResponse
	if err := json.Unmarshal(body, &fcResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if !fcResp.Success {
		return "", fmt.Errorf("firecrawl error: %s", fcResp.Error)
	}

	if fcResp.Data.Markdown != "" {
		return fcResp.Data.Markdown, nil
	}
	if fcResp.Data.HTML != "" {
		return fcResp.Data.HTML, nil
	}
	return "", ErrEmptyResponse
}
