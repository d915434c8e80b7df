package model

import (
	"encoding/json"
	"math"
)

// Source 解析结果来源
type Source string

const (
	SourceLocalCatalog  Source = "LocalCatalog"
	SourceRemoteAPI     Source = "RemoteApi"
	SourceModelEstimate Source = "ModelEstimate"
	SourceLiveSearch    Source = "LiveSearch"
	SourceNone          Source = "None"
)

// AllStrategies 默认策略顺序
var AllStrategies = []Source{
	SourceLocalCatalog, SourceRemoteAPI, SourceModelEstimate, SourceLiveSearch,
}

// IsNetwork 该来源是否需要访问外部服务
func (s Source) IsNetwork() bool {
	switch s {
	case SourceRemoteAPI, SourceModelEstimate, SourceLiveSearch:
		return true
	}
	return false
}

// ParseSource 解析策略名（大小写不敏感，支持下划线/短横线写法）
func ParseSource(name string) (Source, bool) {
	switch normalizeKey(name) {
	case "localcatalog", "local", "catalog":
		return SourceLocalCatalog, true
	case "remoteapi", "remote", "openalex":
		return SourceRemoteAPI, true
	case "modelestimate", "model", "llm":
		return SourceModelEstimate, true
	case "livesearch", "search", "live":
		return SourceLiveSearch, true
	}
	return "", false
}

func normalizeKey(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == '_' || r == '-' || r == ' ':
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// Band 质量等级
type Band string

const (
	BandExcellent Band = "Excellent"
	BandGood      Band = "Good"
	BandFair      Band = "Fair"
	BandPoor      Band = "Poor"
	BandUnknown   Band = "Unknown"
)

// Metric 期刊指标：要么是非负有限数值，要么是"低于下限"标记
// 没有数值时用 nil *Metric 表示
type Metric struct {
	value      float64
	belowFloor bool
}

// Quantified 创建数值指标，负数/NaN/Inf 返回 false
func Quantified(v float64) (Metric, bool) {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}, false
	}
	return Metric{value: v}, true
}

// BelowFloor 已知但低于可量化下限的指标
func BelowFloor() Metric {
	return Metric{belowFloor: true}
}

// IsBelowFloor 是否为低于下限标记
func (m Metric) IsBelowFloor() bool {
	return m.belowFloor
}

// Value 返回数值；低于下限时第二个返回值为 false
func (m Metric) Value() (float64, bool) {
	if m.belowFloor {
		return 0, false
	}
	return m.value, true
}

// MarshalJSON 数值输出为数字，低于下限输出为 "below_floor"
func (m Metric) MarshalJSON() ([]byte, error) {
	if m.belowFloor {
		return json.Marshal("below_floor")
	}
	return json.Marshal(m.value)
}

// Attempt 单个策略的尝试记录（仅用于诊断，不影响结果）
type Attempt struct {
	Strategy  Source `json:"strategy"`
	Kind      string `json:"kind"`
	Reason    string `json:"reason,omitempty"`
	Candidate string `json:"candidate,omitempty"`
	Score     int    `json:"score,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Result 一次期刊名解析的完整结果
type Result struct {
	RawVenue        string    `json:"raw_venue"`
	NormalizedVenue string    `json:"normalized_venue"`
	MatchedName     string    `json:"matched_name,omitempty"`
	Metric          *Metric   `json:"metric"`
	Confidence      int       `json:"confidence"`
	Source          Source    `json:"source"`
	Band            Band      `json:"band"`
	Attempts        []Attempt `json:"attempts,omitempty"`
}

// Resolved 是否解析出了指标
func (r Result) Resolved() bool {
	return r.Metric != nil
}

// Clone 深拷贝，缓存返回副本避免调用方修改
func (r Result) Clone() Result {
	out := r
	if r.Metric != nil {
		m := *r.Metric
		out.Metric = &m
	}
	if r.Attempts != nil {
		out.Attempts = append([]Attempt(nil), r.Attempts...)
	}
	return out
}
