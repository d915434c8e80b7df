package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultSearchURL 直接抓取时使用的搜索页（HTML 版，无需 JS）
const DefaultSearchURL = "https://html.duckduckgo.com/html/?q=%s"

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"

// WebSearchFetcher 直接请求公开搜索页
type WebSearchFetcher struct {
	searchURL  string
	httpClient *http.Client
}

// NewWebSearchFetcher 创建直接搜索获取器，searchURL 中 %s 处替换为查询语句
func NewWebSearchFetcher(searchURL string) *WebSearchFetcher {
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	return &WebSearchFetcher{
		searchURL: searchURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// FetchPage 返回搜索页 HTML
func (w *WebSearchFetcher) FetchPage(ctx context.Context, query string) (string, error) {
	reqURL := fmt.Sprintf(w.searchURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError("search", resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}

// PageText 把页面转成可检索的纯文本
// 看起来不是 HTML 的内容（markdown、API 文本）原样返回
func PageText(page string) string {
	if !looksLikeHTML(page) {
		return page
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return page
	}
	doc.Find("script, style, noscript, svg, head").Remove()
	// 块级元素之间补空格，避免相邻单元格文字粘连
	doc.Find("p, div, li, tr, td, th, br, h1, h2, h3, h4, h5, h6, a").Each(func(i int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	var parts []string
	doc.Find("body").Each(func(i int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	if len(parts) == 0 {
		parts = append(parts, doc.Text())
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func looksLikeHTML(s string) bool {
	head := strings.ToLower(strings.TrimSpace(s))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") ||
		strings.Contains(head, "<html") ||
		strings.Contains(head, "<body") ||
		strings.Contains(head, "<div")
}
