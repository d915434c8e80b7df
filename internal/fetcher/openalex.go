package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const openAlexBaseURL = "https://api.openalex.org"

// OpenAlexFetcher OpenAlex API获取器（免费学术API）
type OpenAlexFetcher struct {
	httpClient *http.Client
	baseURL    string
	mailto     string
}

// NewOpenAlexFetcher 创建OpenAlex获取器
// mailto 非空时进入 OpenAlex 的 polite pool，速率限制更宽松
func NewOpenAlexFetcher(mailto string) *OpenAlexFetcher {
	return NewOpenAlexFetcherWithBaseURL(openAlexBaseURL, mailto)
}

// NewOpenAlexFetcherWithBaseURL 指定 API 地址（测试用）
func NewOpenAlexFetcherWithBaseURL(baseURL, mailto string) *OpenAlexFetcher {
	return &OpenAlexFetcher{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		mailto:  mailto,
	}
}

type openAlexSourcesResponse struct {
	Results []SourceRecord `json:"results"`
}

// SearchSource 按名称检索期刊，只取排名第一的结果；无结果时返回 nil, nil
func (o *OpenAlexFetcher) SearchSource(ctx context.Context, name string) (*SourceRecord, error) {
	params := url.Values{}
	params.Set("search", name)
	params.Set("per-page", "1")
	if o.mailto != "" {
		params.Set("mailto", o.mailto)
	}

	reqURL := fmt.Sprintf("%s/sources?%s", o.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "VenueRank/1.0")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("openalex", resp)
	}

	var result openAlexSourcesResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Results) == 0 {
		return nil, nil
	}
	return &result.Results[0], nil
}
