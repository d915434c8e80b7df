package resolver

import (
	"context"

	"venue-rank-go/internal/catalog"
	"venue-rank-go/internal/model"
)

// Match 策略给出的结果
type Match struct {
	Name       string
	Metric     model.Metric
	Confidence int
}

// Strategy 单个解析策略
// 失败时返回 *Unresolved；不得修改 catalog
type Strategy interface {
	Source() model.Source
	Resolve(ctx context.Context, venue string, cat *catalog.Catalog) (Match, error)
}

// nominalConfidence 外部来源明确给出单一实体时的固定置信度
const nominalConfidence = 100
