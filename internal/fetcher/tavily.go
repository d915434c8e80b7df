package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const tavilyBaseURL = "https://api.tavily.com"

// TavilyFetcher Tavily搜索获取器
type TavilyFetcher struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// NewTavilyFetcher 创建Tavily获取器
func NewTavilyFetcher(apiKey string) *TavilyFetcher {
	return NewTavilyFetcherWithBaseURL(apiKey, tavilyBaseURL)
}

// NewTavilyFetcherWithBaseURL 指定 API 地址（测试用）
func NewTavilyFetcherWithBaseURL(apiKey, baseURL string) *TavilyFetcher {
	return &TavilyFetcher{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxResults: 5,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type tavilyRequest struct {
	APIKey            string `json:"api_key"`
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	MaxResults        int    `json:"max_results"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search 搜索，返回摘要答案和结果列表
func (t *TavilyFetcher) Search(ctx context.Context, query string, maxResults int) (string, []SearchResult, error) {
	reqBody := tavilyRequest{
		APIKey:            t.apiKey,
		Query:             query,
		SearchDepth:       "basic",
		MaxResults:        maxResults,
		IncludeAnswer:     true,
		IncludeRawContent: false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/search", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("failed to search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, statusError("tavily", resp)
	}

	var tavilyResp tavilyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&tavilyResp); err != nil {
		return "", nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results := make([]SearchResult, 0, len(tavilyResp.Results))
	for _, r := range tavilyResp.Results {
		results = append(results, SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
		})
	}
	return tavilyResp.Answer, results, nil
}

// FetchPage 把搜索答案和各条摘要拼成一页纯文本
func (t *TavilyFetcher) FetchPage(ctx context.Context, query string) (string, error) {
	answer, results, err := t.Search(ctx, query, t.maxResults)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if answer != "" {
		sb.WriteString(answer)
		sb.WriteString("\n\n")
	}
	for _, r := range results {
		sb.WriteString(r.Title)
		sb.WriteString("\n")
		sb.WriteString(r.Snippet)
		sb.WriteString("\n\n")
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}
