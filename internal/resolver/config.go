package resolver

import (
	"fmt"
	"log/slog"

	"venue-rank-go/internal/fetcher"
	"venue-rank-go/internal/llm"
	"venue-rank-go/internal/model"
	"venue-rank-go/internal/venue"
)

// DefaultThreshold 本地匹配默认接受阈值
const DefaultThreshold = 90

// Config 解析配置
type Config struct {
	Threshold           int            // 0-100
	Strategies          []model.Source // 顺序即尝试顺序，未列出的策略不启用
	ExpandAbbreviations bool
	RemoteField         string
	BlockMarkers        []string
}

// DefaultConfig 默认配置：四个策略全部启用
func DefaultConfig() Config {
	return Config{
		Threshold:           DefaultThreshold,
		Strategies:          append([]model.Source(nil), model.AllStrategies...),
		ExpandAbbreviations: true,
		RemoteField:         DefaultRemoteField,
	}
}

// Validate 校验配置
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("threshold must be between 0 and 100, got %d", c.Threshold)
	}
	seen := make(map[model.Source]bool)
	for _, s := range c.Strategies {
		switch s {
		case model.SourceLocalCatalog, model.SourceRemoteAPI, model.SourceModelEstimate, model.SourceLiveSearch:
		default:
			return fmt.Errorf("unknown strategy %q", s)
		}
		if seen[s] {
			return fmt.Errorf("strategy %q listed twice", s)
		}
		seen[s] = true
	}
	return nil
}

// Deps 外部依赖；为 nil 的依赖对应策略会被跳过
type Deps struct {
	Sources fetcher.SourceSearcher
	LLM     llm.LLMClient
	Pages   fetcher.PageFetcher
}

// Build 按配置顺序构建策略
func Build(cfg Config, deps Deps, logger *slog.Logger) ([]Strategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	var out []Strategy
	for _, src := range cfg.Strategies {
		switch src {
		case model.SourceLocalCatalog:
			var exp *venue.Expander
			if cfg.ExpandAbbreviations {
				exp = venue.NewExpander()
			}
			out = append(out, NewLocalCatalog(cfg.Threshold, exp))
		case model.SourceRemoteAPI:
			if deps.Sources == nil {
				logger.Warn("strategy disabled: no metrics service configured", slog.String("strategy", string(src)))
				continue
			}
			out = append(out, NewRemoteAPI(deps.Sources, cfg.RemoteField))
		case model.SourceModelEstimate:
			if deps.LLM == nil {
				logger.Warn("strategy disabled: no llm client configured", slog.String("strategy", string(src)))
				continue
			}
			out = append(out, NewModelEstimate(deps.LLM))
		case model.SourceLiveSearch:
			if deps.Pages == nil {
				logger.Warn("strategy disabled: no page fetcher configured", slog.String("strategy", string(src)))
				continue
			}
			out = append(out, NewLiveSearch(deps.Pages, cfg.BlockMarkers))
		}
	}
	return out, nil
}
