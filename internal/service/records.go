package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"venue-rank-go/internal/fetcher"
	"venue-rank-go/internal/model"
)

// 记录 CSV 的表头（忽略大小写）
var (
	titleColumns     = []string{"title"}
	authorsColumns   = []string{"authors", "author"}
	yearColumns      = []string{"year"}
	venueColumns     = []string{"journal/venue", "venue", "journal", "source"}
	citationsColumns = []string{"citations", "cited by", "cited_by"}
	urlColumns       = []string{"url", "link"}
)

// ReadRecordsCSV 读取引用记录 CSV；必须有期刊列
func ReadRecordsCSV(r io.Reader) ([]model.Record, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	col := func(names []string) int {
		for i, h := range header {
			h = strings.ToLower(strings.TrimSpace(h))
			for _, n := range names {
				if h == n {
					return i
				}
			}
		}
		return -1
	}
	venueIdx := col(venueColumns)
	if venueIdx < 0 {
		return nil, fmt.Errorf("records csv has no venue column")
	}
	titleIdx, authorsIdx, yearIdx := col(titleColumns), col(authorsColumns), col(yearColumns)
	citationsIdx, urlIdx := col(citationsColumns), col(urlColumns)

	var records []model.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return records, fmt.Errorf("failed to read row %d: %w", len(records)+2, err)
		}
		cell := func(i int) string {
			if i < 0 || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		rec := model.Record{
			Title: cell(titleIdx),
			Venue: cell(venueIdx),
			URL:   cell(urlIdx),
		}
		if a := cell(authorsIdx); a != "" {
			rec.Authors = splitAuthors(a)
		}
		rec.Year, _ = strconv.Atoi(cell(yearIdx))
		rec.Citations, _ = strconv.Atoi(cell(citationsIdx))
		records = append(records, rec)
	}
	return records, nil
}

// splitAuthors 分号优先，否则按逗号
func splitAuthors(s string) []string {
	sep := ","
	if strings.Contains(s, ";") {
		sep = ";"
	}
	var out []string
	for _, a := range strings.Split(s, sep) {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// LoadRecordsCSV 从文件读取记录
func LoadRecordsCSV(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records: %w", err)
	}
	defer f.Close()
	return ReadRecordsCSV(f)
}

// LoadScholarHTML 从保存的 Google Scholar 搜索结果页读取记录
func LoadScholarHTML(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scholar page: %w", err)
	}
	defer f.Close()
	return fetcher.NewScholarParser().Parse(f)
}
