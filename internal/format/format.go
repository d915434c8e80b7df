// Package format renders resolution results into export rows.
package format

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"venue-rank-go/internal/classify"
	"venue-rank-go/internal/model"
)

// 列名
const (
	ColTitle      = "Title"
	ColAuthors    = "Authors"
	ColYear       = "Year"
	ColVenue      = "Journal/Venue"
	ColCitations  = "Citations"
	ColURL        = "URL"
	ColMatched    = "Matched Journal"
	ColMetric     = "Impact Factor"
	ColQuality    = "Quality"
	ColSource     = "Source"
	ColConfidence = "Confidence"
)

// 指标展示文本
const (
	BelowFloorText = "<0.1"
	MissingText    = "N/A"
)

// ResultColumns 仅解析结果的列
var ResultColumns = []string{ColVenue, ColMatched, ColMetric, ColQuality, ColSource, ColConfidence}

// Columns 完整导出列顺序
var Columns = []string{
	ColTitle, ColAuthors, ColYear, ColVenue, ColCitations, ColURL,
	ColMatched, ColMetric, ColQuality, ColSource, ColConfidence,
}

// Metric 指标文本：三位小数、低于下限标记或 N/A
func Metric(m *model.Metric) string {
	if m == nil {
		return MissingText
	}
	v, ok := m.Value()
	if !ok {
		return BelowFloorText
	}
	return fmt.Sprintf("%.3f", v)
}

// Row 解析结果 -> 展示行
func Row(r model.Result) map[string]string {
	matched := r.MatchedName
	if matched == "" {
		matched = MissingText
	}
	return map[string]string{
		ColVenue:      r.RawVenue,
		ColMatched:    matched,
		ColMetric:     Metric(r.Metric),
		ColQuality:    classify.Label(r.Band),
		ColSource:     string(r.Source),
		ColConfidence: strconv.Itoa(r.Confidence),
	}
}

// RecordRow 合并上游记录列和解析结果列
func RecordRow(rec model.Record, r model.Result) map[string]string {
	row := Row(r)
	row[ColTitle] = rec.Title
	row[ColAuthors] = strings.Join(rec.Authors, ", ")
	row[ColYear] = ""
	if rec.Year > 0 {
		row[ColYear] = strconv.Itoa(rec.Year)
	}
	row[ColVenue] = rec.Venue
	row[ColCitations] = strconv.Itoa(rec.Citations)
	row[ColURL] = rec.URL
	return row
}

// WriteCSV 按 columns 顺序写出，带 UTF-8 BOM 方便表格软件识别编码
func WriteCSV(w io.Writer, columns []string, rows []map[string]string) error {
	tw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(tw)

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(columns))
	for i, row := range rows {
		for j, col := range columns {
			record[j] = row[col]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return tw.Close()
}
