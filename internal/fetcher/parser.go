package fetcher

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"venue-rank-go/internal/model"
)

// ScholarParser Google Scholar 搜索结果页解析器
type ScholarParser struct{}

// NewScholarParser 创建解析器
func NewScholarParser() *ScholarParser {
	return &ScholarParser{}
}

var (
	yearPattern    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	citedByPattern = regexp.MustCompile(`(?i)cited by\s+(\d+)`)
)

// Parse 解析搜索结果页HTML，每个 .gs_ri 块对应一条记录
func (p *ScholarParser) Parse(r io.Reader) ([]model.Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	records := []model.Record{}
	doc.Find(".gs_ri").Each(func(i int, s *goquery.Selection) {
		rec := model.Record{}

		// 标题和链接，去掉 [PDF] [HTML] 之类的前缀标记
		titleSel := s.Find(".gs_rt")
		titleSel.Find(".gs_ctc, .gs_ctu, .gs_ct1, .gs_ct2").Remove()
		rec.Title = strings.Join(strings.Fields(titleSel.Text()), " ")
		if href, ok := titleSel.Find("a").Attr("href"); ok {
			rec.URL = href
		}

		// 作者 - 期刊, 年份 - 出版方
		rec.Authors, rec.Venue, rec.Year = parseByline(s.Find(".gs_a").Text())

		// 引用数
		s.Find(".gs_fl a").Each(func(j int, a *goquery.Selection) {
			if m := citedByPattern.FindStringSubmatch(a.Text()); len(m) > 1 {
				rec.Citations, _ = strconv.Atoi(m[1])
			}
		})

		if rec.Title != "" {
			records = append(records, rec)
		}
	})

	return records, nil
}

// parseByline 解析 "A Author, B Author - Nature Medicine, 2020 - nature.com"
func parseByline(text string) ([]string, string, int) {
	text = strings.ReplaceAll(text, "\u00a0", " ")
	parts := strings.Split(text, " - ")
	if len(parts) == 0 {
		return nil, "", 0
	}

	authors := parseAuthors(parts[0])
	if len(parts) < 2 {
		return authors, "", 0
	}

	middle := strings.TrimSpace(parts[1])
	year := 0
	if loc := yearPattern.FindStringIndex(middle); loc != nil {
		year, _ = strconv.Atoi(middle[loc[0]:loc[1]])
		middle = middle[:loc[0]]
	}
	venue := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(middle), ","))
	venue = strings.TrimSuffix(venue, "…")
	return authors, strings.TrimSpace(venue), year
}

func parseAuthors(text string) []string {
	// 分割作者，可能用逗号或 "and" 分隔
	text = strings.ReplaceAll(text, " and ", ", ")
	parts := strings.Split(text, ",")
	authors := make([]string, 0, len(parts))
	for _, part := range parts {
		author := strings.TrimSpace(part)
		// 清理省略号（作者过多时 Scholar 截断）
		author = strings.TrimSpace(strings.Trim(author, "…*"))
		if author != "" && author != "..." {
			authors = append(authors, author)
		}
	}
	return authors
}
