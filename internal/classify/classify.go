// Package classify maps an impact metric onto a quality band.
package classify

import "venue-rank-go/internal/model"

// 区间下限（含）
const (
	excellentFloor = 1.0
	goodFloor      = 0.5
	fairFloor      = 0.2
)

// Classify 指标 -> 等级
// nil 为 Unknown；低于下限标记归为 Poor
func Classify(m *model.Metric) model.Band {
	if m == nil {
		return model.BandUnknown
	}
	v, ok := m.Value()
	if !ok {
		return model.BandPoor
	}
	switch {
	case v >= excellentFloor:
		return model.BandExcellent
	case v >= goodFloor:
		return model.BandGood
	case v >= fairFloor:
		return model.BandFair
	default:
		return model.BandPoor
	}
}

// Label 展示用文字
func Label(b model.Band) string {
	switch b {
	case model.BandExcellent:
		return "Excellent"
	case model.BandGood:
		return "Good"
	case model.BandFair:
		return "Fair"
	case model.BandPoor:
		return "Poor"
	default:
		return "Unknown"
	}
}

// Color 展示颜色
func Color(b model.Band) string {
	switch b {
	case model.BandExcellent:
		return "green"
	case model.BandGood:
		return "blue"
	case model.BandFair:
		return "orange"
	case model.BandPoor:
		return "red"
	default:
		return "gray"
	}
}

// Severity 提示级别
func Severity(b model.Band) string {
	switch b {
	case model.BandExcellent:
		return "success"
	case model.BandGood:
		return "info"
	case model.BandFair:
		return "warning"
	case model.BandPoor:
		return "error"
	default:
		return "none"
	}
}
