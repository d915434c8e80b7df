package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"venue-rank-go/internal/catalog"
	"venue-rank-go/internal/fetcher"
	"venue-rank-go/internal/model"
)

// DefaultBlockMarkers 反爬拦截页的特征文本（忽略大小写）
var DefaultBlockMarkers = []string{
	"unusual traffic",
	"captcha",
	"/sorry/index",
	"anomaly-modal",
	"are you a robot",
}

// impactWindow "impact factor" 之后扫描数字的字符数
const impactWindow = 80

var impactPattern = regexp.MustCompile(`(?i)impact\s+factor`)

// standalonePattern 独立的数字；Q1、#3、ISSN 片段里的数字不算
var standalonePattern = regexp.MustCompile(`(?:^|[^\w.#,\-])(\d+(?:[.,]\d+)?)\b`)

// LiveSearch 网页搜索并从结果文本中提取影响因子
type LiveSearch struct {
	pages        fetcher.PageFetcher
	blockMarkers []string
}

// NewLiveSearch 创建网页搜索策略
func NewLiveSearch(pages fetcher.PageFetcher, blockMarkers []string) *LiveSearch {
	if len(blockMarkers) == 0 {
		blockMarkers = DefaultBlockMarkers
	}
	markers := make([]string, len(blockMarkers))
	for i, m := range blockMarkers {
		markers[i] = strings.ToLower(m)
	}
	return &LiveSearch{pages: pages, blockMarkers: markers}
}

func (l *LiveSearch) Source() model.Source { return model.SourceLiveSearch }

// SearchQuery 搜索语句
func SearchQuery(v string) string {
	return v + " journal impact factor"
}

func (l *LiveSearch) Resolve(ctx context.Context, v string, _ *catalog.Catalog) (Match, error) {
	page, err := l.pages.FetchPage(ctx, SearchQuery(v))
	if err != nil {
		return Match{}, providerFailure(model.SourceLiveSearch, err)
	}

	lower := strings.ToLower(page)
	for _, marker := range l.blockMarkers {
		if strings.Contains(lower, marker) {
			return Match{}, providerFailure(model.SourceLiveSearch, fmt.Errorf("%w: %q", fetcher.ErrBlocked, marker))
		}
	}

	value, ok := ExtractImpactFactor(fetcher.PageText(page))
	if !ok {
		return Match{}, &Unresolved{Strategy: model.SourceLiveSearch, Kind: ParseFailure, Reason: ReasonNoNumber}
	}
	metric, ok := model.Quantified(value)
	if !ok {
		return Match{}, &Unresolved{Strategy: model.SourceLiveSearch, Kind: ParseFailure, Reason: ReasonInvalidValue}
	}
	return Match{Name: v, Metric: metric, Confidence: nominalConfidence}, nil
}

// ExtractImpactFactor 在每处 "impact factor" 之后的窗口内找数字
// 优先取第一个小数；没有小数时取第一个不是年份的整数
func ExtractImpactFactor(text string) (float64, bool) {
	for _, loc := range impactPattern.FindAllStringIndex(text, -1) {
		window := text[loc[1]:min(len(text), loc[1]+impactWindow)]

		var integer string
		for _, m := range standalonePattern.FindAllStringSubmatch(window, -1) {
			tok := strings.Replace(m[1], ",", ".", 1)
			if strings.Contains(tok, ".") {
				if v, err := strconv.ParseFloat(tok, 64); err == nil {
					return v, true
				}
				continue
			}
			if integer == "" && !isYear(tok) {
				integer = tok
			}
		}
		if integer != "" {
			if v, err := strconv.ParseFloat(integer, 64); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

func isYear(tok string) bool {
	if len(tok) != 4 || strings.Contains(tok, ".") {
		return false
	}
	y, err := strconv.Atoi(tok)
	return err == nil && y >= 1900 && y <= 2099
}
