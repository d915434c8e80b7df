package resolver

import (
	"context"

	"venue-rank-go/internal/catalog"
	"venue-rank-go/internal/fetcher"
	"venue-rank-go/internal/model"
)

// DefaultRemoteField OpenAlex summary_stats 中使用的字段
const DefaultRemoteField = "2yr_mean_citedness"

// RemoteAPI 外部学术指标服务查询，不做自动重试
type RemoteAPI struct {
	searcher fetcher.SourceSearcher
	field    string
}

// NewRemoteAPI 创建远程查询策略
func NewRemoteAPI(searcher fetcher.SourceSearcher, field string) *RemoteAPI {
	if field == "" {
		field = DefaultRemoteField
	}
	return &RemoteAPI{searcher: searcher, field: field}
}

func (r *RemoteAPI) Source() model.Source { return model.SourceRemoteAPI }

// Resolve 取排名第一的期刊记录中的指标字段
func (r *RemoteAPI) Resolve(ctx context.Context, v string, _ *catalog.Catalog) (Match, error) {
	rec, err := r.searcher.SearchSource(ctx, v)
	if err != nil {
		return Match{}, providerFailure(model.SourceRemoteAPI, err)
	}
	if rec == nil {
		return Match{}, &Unresolved{Strategy: model.SourceRemoteAPI, Kind: NoMatch, Reason: ReasonEmptyResult}
	}

	value, ok := rec.Stat(r.field)
	if !ok {
		return Match{}, &Unresolved{
			Strategy:  model.SourceRemoteAPI,
			Kind:      NoMatch,
			Reason:    ReasonMissingField,
			Candidate: rec.DisplayName,
		}
	}
	metric, ok := model.Quantified(value)
	if !ok {
		return Match{}, &Unresolved{
			Strategy:  model.SourceRemoteAPI,
			Kind:      ParseFailure,
			Reason:    ReasonInvalidValue,
			Candidate: rec.DisplayName,
		}
	}

	name := rec.DisplayName
	if name == "" {
		name = v
	}
	return Match{Name: name, Metric: metric, Confidence: nominalConfidence}, nil
}
