package resolver

import (
	"context"

	"venue-rank-go/internal/catalog"
	"venue-rank-go/internal/model"
	"venue-rank-go/internal/utils"
	"venue-rank-go/internal/venue"
)

// LocalCatalog 本地目录模糊匹配
type LocalCatalog struct {
	threshold int
	expander  *venue.Expander
}

// NewLocalCatalog 创建本地匹配策略；expander 为 nil 时不做缩写展开
func NewLocalCatalog(threshold int, expander *venue.Expander) *LocalCatalog {
	return &LocalCatalog{threshold: threshold, expander: expander}
}

func (l *LocalCatalog) Source() model.Source { return model.SourceLocalCatalog }

// Resolve 对目录中每个刊名打分，取最高分（同分取目录中靠前者），达到阈值才接受
func (l *LocalCatalog) Resolve(ctx context.Context, v string, cat *catalog.Catalog) (Match, error) {
	if cat == nil || cat.Len() == 0 {
		return Match{}, &Unresolved{Strategy: model.SourceLocalCatalog, Kind: NoMatch, Reason: ReasonEmptyCatalog}
	}

	queries := []string{utils.TokenSortKey(v)}
	if l.expander != nil {
		if full, ok := l.expander.Expand(v); ok {
			queries = append(queries, utils.TokenSortKey(full))
		}
	}

	best, bestScore := -1, -1
	cands := cat.Candidates()
	for i, c := range cands {
		for _, q := range queries {
			if s := utils.Ratio(q, c.SortKey); s > bestScore {
				best, bestScore = i, s
			}
		}
		if bestScore == 100 {
			break
		}
	}

	name := cands[best].Name
	if bestScore < l.threshold {
		return Match{}, &Unresolved{
			Strategy:  model.SourceLocalCatalog,
			Kind:      BelowThreshold,
			Candidate: name,
			Score:     bestScore,
		}
	}

	metric, _ := cat.MetricOf(name)
	return Match{Name: name, Metric: metric, Confidence: bestScore}, nil
}
