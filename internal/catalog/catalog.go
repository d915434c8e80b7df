// Package catalog holds the immutable reference table of journal names and
// their impact metric.
package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"venue-rank-go/internal/model"
	"venue-rank-go/internal/normalize"
	"venue-rank-go/internal/utils"
)

// LoadErrorKind 加载失败类型
type LoadErrorKind string

const (
	SourceNotFound LoadErrorKind = "source_not_found"
	MissingColumns LoadErrorKind = "missing_columns"
)

// LoadError 目录加载失败（启动时致命）
type LoadError struct {
	Kind    LoadErrorKind
	Source  string
	Missing []string
	Err     error
}

func (e *LoadError) Error() string {
	switch e.Kind {
	case MissingColumns:
		return fmt.Sprintf("catalog %s: missing required columns %s", e.Source, strings.Join(e.Missing, ", "))
	default:
		if e.Err != nil {
			return fmt.Sprintf("catalog %s: %s: %v", e.Source, e.Kind, e.Err)
		}
		return fmt.Sprintf("catalog %s: %s", e.Source, e.Kind)
	}
}

func (e *LoadError) Unwrap() error { return e.Err }

// IsKind 判断 err 是否为指定类型的加载错误
func IsKind(err error, kind LoadErrorKind) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == kind
}

// Options 加载选项
type Options struct {
	NameColumn       string   `yaml:"name_column" toml:"name_column"`     // 为空时自动识别
	MetricColumn     string   `yaml:"metric_column" toml:"metric_column"` // 为空时自动识别
	Table            string   `yaml:"table" toml:"table"`                 // SQL 来源的表名
	BelowFloorTokens []string `yaml:"below_floor_tokens" toml:"below_floor_tokens"`
}

// DefaultBelowFloorTokens 表示"低于下限"的文本
var DefaultBelowFloorTokens = []string{"<0.1", "< 0.1", "<0,1", "below floor"}

// DefaultOptions 默认加载选项
func DefaultOptions() Options {
	return Options{
		Table:            "journals",
		BelowFloorTokens: append([]string(nil), DefaultBelowFloorTokens...),
	}
}

// 表头候选（忽略大小写、空格、下划线）
var (
	nameColumns   = []string{"fullname", "title", "journal", "journalname", "name", "source", "sourcetitle"}
	metricColumns = []string{"impactfactor", "sjr", "metric", "score", "jif", "if"}
)

// Entry 目录条目
type Entry struct {
	Name   string
	Metric model.Metric
}

// Candidate 预计算好比较键的候选项
type Candidate struct {
	Name    string // 原始刊名
	Key     string // 规范化后的刊名
	SortKey string // 词排序键
}

// Report 加载统计
type Report struct {
	Rows       int `json:"rows"`
	Kept       int `json:"kept"`
	Dropped    int `json:"dropped"`
	Duplicates int `json:"duplicates"`
	BelowFloor int `json:"below_floor"`
}

// Catalog 只读期刊目录，加载后不再修改，可并发读取
type Catalog struct {
	entries    []Entry
	candidates []Candidate
	index      map[string]int
	report     Report
}

// New 由条目构建目录；重名时保留第一条
func New(entries []Entry) *Catalog {
	c := &Catalog{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		c.report.Rows++
		c.add(e)
	}
	return c
}

func (c *Catalog) add(e Entry) bool {
	if _, dup := c.index[e.Name]; dup {
		c.report.Duplicates++
		return false
	}
	c.index[e.Name] = len(c.entries)
	c.entries = append(c.entries, e)
	key := normalize.Normalize(e.Name)
	c.candidates = append(c.candidates, Candidate{
		Name:    e.Name,
		Key:     key,
		SortKey: utils.TokenSortKey(key),
	})
	c.report.Kept++
	if e.Metric.IsBelowFloor() {
		c.report.BelowFloor++
	}
	return true
}

// Names 按加载顺序返回所有刊名
func (c *Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Candidates 按加载顺序返回候选项（只读，不要修改）
func (c *Catalog) Candidates() []Candidate {
	return c.candidates
}

// MetricOf 按刊名精确查找指标
func (c *Catalog) MetricOf(name string) (model.Metric, bool) {
	i, ok := c.index[name]
	if !ok {
		return model.Metric{}, false
	}
	return c.entries[i].Metric, true
}

// Len 条目数
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Report 返回加载统计
func (c *Catalog) Report() Report {
	return c.report
}

// builder 逐行构建目录
type builder struct {
	opts      Options
	source    string
	nameIdx   int
	metricIdx int
	cat       *Catalog
}

func newBuilder(source string, header []string, opts Options) (*builder, error) {
	nameIdx := findColumn(header, opts.NameColumn, nameColumns)
	metricIdx := findColumn(header, opts.MetricColumn, metricColumns)

	var missing []string
	if nameIdx < 0 {
		missing = append(missing, columnLabel(opts.NameColumn, "name"))
	}
	if metricIdx < 0 {
		missing = append(missing, columnLabel(opts.MetricColumn, "metric"))
	}
	if len(missing) > 0 {
		return nil, &LoadError{Kind: MissingColumns, Source: source, Missing: missing}
	}

	return &builder{
		opts:      opts,
		source:    source,
		nameIdx:   nameIdx,
		metricIdx: metricIdx,
		cat:       &Catalog{index: make(map[string]int)},
	}, nil
}

// addRow 缺刊名、缺指标或指标无法解析的行直接丢弃
func (b *builder) addRow(row []string) {
	b.cat.report.Rows++
	if b.nameIdx >= len(row) || b.metricIdx >= len(row) {
		b.cat.report.Dropped++
		return
	}
	name := strings.TrimSpace(row[b.nameIdx])
	if name == "" {
		b.cat.report.Dropped++
		return
	}
	metric, ok := ParseMetric(row[b.metricIdx], b.opts.BelowFloorTokens)
	if !ok {
		b.cat.report.Dropped++
		return
	}
	b.cat.add(Entry{Name: name, Metric: metric})
}

// ParseMetric 解析指标单元格
// 取第一个空格分隔的片段，小数逗号转为点（"1,234 Q1" -> 1.234）；
// 匹配 belowFloor 中任一文本时返回低于下限标记
func ParseMetric(raw string, belowFloor []string) (model.Metric, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.Metric{}, false
	}
	folded := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	for _, tok := range belowFloor {
		if folded == strings.ToLower(strings.TrimSpace(tok)) {
			return model.BelowFloor(), true
		}
	}

	first := strings.Fields(raw)[0]
	first = strings.ReplaceAll(first, ",", ".")
	v, err := strconv.ParseFloat(first, 64)
	if err != nil {
		return model.Metric{}, false
	}
	return model.Quantified(v)
}

func findColumn(header []string, explicit string, candidates []string) int {
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = columnKey(h)
	}
	if explicit != "" {
		want := columnKey(explicit)
		for i, k := range keys {
			if k == want {
				return i
			}
		}
		return -1
	}
	for _, cand := range candidates {
		for i, k := range keys {
			if k == cand {
				return i
			}
		}
	}
	return -1
}

func columnKey(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	return strings.ReplaceAll(s, "-", "")
}

func columnLabel(explicit, fallback string) string {
	if explicit != "" {
		return explicit
	}
	return fallback
}
