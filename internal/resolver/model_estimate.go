package resolver

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"venue-rank-go/internal/catalog"
	"venue-rank-go/internal/llm"
	"venue-rank-go/internal/model"
)

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// ModelEstimate 让语言模型估计期刊影响因子
type ModelEstimate struct {
	client llm.LLMClient
}

// NewModelEstimate 创建模型估计策略
func NewModelEstimate(client llm.LLMClient) *ModelEstimate {
	return &ModelEstimate{client: client}
}

func (m *ModelEstimate) Source() model.Source { return model.SourceModelEstimate }

// estimatePrompt 限定只回答一个数字
func estimatePrompt(v string) string {
	return fmt.Sprintf(`What is the most recent journal impact factor of the journal "%s"?
Respond with a single number only, for example 3.215. Do not add any words, units or years.
If you do not know, respond with "unknown".`, v)
}

// Resolve 取回复中的第一个数字
func (m *ModelEstimate) Resolve(ctx context.Context, v string, _ *catalog.Catalog) (Match, error) {
	reply, err := m.client.Generate(ctx, estimatePrompt(v))
	if err != nil {
		return Match{}, providerFailure(model.SourceModelEstimate, err)
	}

	value, ok := FirstNumber(reply)
	if !ok {
		return Match{}, &Unresolved{
			Strategy: model.SourceModelEstimate,
			Kind:     ParseFailure,
			Reason:   ReasonNoNumber,
			Err:      fmt.Errorf("reply without number: %q", truncate(reply, 80)),
		}
	}
	metric, ok := model.Quantified(value)
	if !ok {
		return Match{}, &Unresolved{Strategy: model.SourceModelEstimate, Kind: ParseFailure, Reason: ReasonInvalidValue}
	}
	return Match{Name: v, Metric: metric, Confidence: nominalConfidence}, nil
}

// FirstNumber 提取第一个整数或小数，保留负号交给 Quantified 拒绝
func FirstNumber(s string) (float64, bool) {
	tok := numberPattern.FindString(s)
	if tok == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
