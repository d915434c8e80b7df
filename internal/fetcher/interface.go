package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// SourceSearcher 期刊元数据检索 (OpenAlex)
type SourceSearcher interface {
	SearchSource(ctx context.Context, name string) (*SourceRecord, error)
}

// PageFetcher 按查询语句取回一页搜索结果（HTML 或纯文本）
type PageFetcher interface {
	FetchPage(ctx context.Context, query string) (string, error)
}

// SourceRecord 期刊元数据
type SourceRecord struct {
	ID           string              `json:"id"`
	DisplayName  string              `json:"display_name"`
	HomepageURL  string              `json:"homepage_url"`
	SummaryStats map[string]*float64 `json:"summary_stats"`
}

// Stat 读取 summary_stats 中的字段，缺失或为 null 时返回 false
func (s *SourceRecord) Stat(field string) (float64, bool) {
	if s == nil || s.SummaryStats == nil {
		return 0, false
	}
	v, ok := s.SummaryStats[field]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// SearchResult 搜索结果条目
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// StatusError 外部服务返回非 200
type StatusError struct {
	Service string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Code, e.Body)
}

// ErrEmptyResponse 服务返回成功但内容为空
var ErrEmptyResponse = errors.New("empty response")

// ErrBlocked 返回的是反爬拦截页
var ErrBlocked = errors.New("blocked by anti-bot page")

// maxBodyBytes 响应体读取上限
const maxBodyBytes = 4 << 20

func statusError(service string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &StatusError{Service: service, Code: resp.StatusCode, Body: string(body)}
}
