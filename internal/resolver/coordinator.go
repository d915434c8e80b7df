package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"venue-rank-go/internal/cache"
	"venue-rank-go/internal/catalog"
	"venue-rank-go/internal/classify"
	"venue-rank-go/internal/model"
	"venue-rank-go/internal/normalize"
)

// Coordinator 按顺序尝试各策略，第一个成功的结果生效
type Coordinator struct {
	catalog    *catalog.Catalog
	strategies []Strategy
	logger     *slog.Logger
	group      singleflight.Group
}

// NewCoordinator 创建协调器；strategies 的顺序即尝试顺序
func NewCoordinator(cat *catalog.Catalog, strategies []Strategy, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		catalog:    cat,
		strategies: append([]Strategy(nil), strategies...),
		logger:     logger.With(slog.String("component", "resolver")),
	}
}

// Sources 已启用的策略（按顺序）
func (c *Coordinator) Sources() []model.Source {
	out := make([]model.Source, len(c.strategies))
	for i, s := range c.strategies {
		out[i] = s.Source()
	}
	return out
}

// Unknown 终态结果：没有匹配、没有指标
func Unknown(raw, normalized string) model.Result {
	return model.Result{
		RawVenue:        raw,
		NormalizedVenue: normalized,
		Confidence:      0,
		Source:          model.SourceNone,
		Band:            model.BandUnknown,
	}
}

// Resolve 解析单个期刊名，从不返回错误
// store 为 nil 时不使用缓存
func (c *Coordinator) Resolve(ctx context.Context, store cache.Store, rawVenue string) model.Result {
	key := normalize.Normalize(rawVenue)
	if key == "" {
		return Unknown(rawVenue, "")
	}

	if store != nil {
		if hit, ok := store.Get(key); ok {
			return hit
		}
	}

	// 同一缓存内相同期刊名只解析一次
	v, _, shared := c.group.Do(fmt.Sprintf("%p|%s", store, key), func() (any, error) {
		if store != nil {
			if hit, ok := store.Get(key); ok {
				return hit, nil
			}
		}
		return c.resolveAndStore(ctx, store, rawVenue, key), nil
	})
	result := v.(model.Result)

	// 共享的那次解析被别的调用方取消了，用自己的 ctx 重来
	if shared && !cacheable(result) && ctx.Err() == nil {
		c.logger.Debug("shared resolution canceled, retrying", slog.String("venue", key))
		return c.resolveAndStore(ctx, store, rawVenue, key)
	}
	return result.Clone()
}

func (c *Coordinator) resolveAndStore(ctx context.Context, store cache.Store, raw, key string) model.Result {
	result := c.resolve(ctx, raw, key)
	// 上下文被取消导致的失败不写缓存，下次还能重新解析
	if store != nil && cacheable(result) {
		store.Put(key, result)
	}
	return result
}

func (c *Coordinator) resolve(ctx context.Context, raw, key string) model.Result {
	var attempts []model.Attempt

	for _, s := range c.strategies {
		if ctx.Err() != nil {
			attempts = append(attempts, model.Attempt{Strategy: s.Source(), Kind: string(ProviderUnavailable), Reason: ReasonCanceled})
			continue
		}

		match, err := c.try(ctx, s, key)
		if err != nil {
			u := asUnresolved(s.Source(), err)
			attempts = append(attempts, u.Attempt())
			c.logFailure(key, u)
			continue
		}

		metric := match.Metric
		attempts = append(attempts, model.Attempt{Strategy: s.Source(), Kind: "resolved", Candidate: match.Name, Score: match.Confidence})
		c.logger.Debug("venue resolved",
			slog.String("venue", key),
			slog.String("source", string(s.Source())),
			slog.String("matched", match.Name),
			slog.Int("confidence", match.Confidence))
		return model.Result{
			RawVenue:        raw,
			NormalizedVenue: key,
			MatchedName:     match.Name,
			Metric:          &metric,
			Confidence:      match.Confidence,
			Source:          s.Source(),
			Band:            classify.Classify(&metric),
			Attempts:        attempts,
		}
	}

	result := Unknown(raw, key)
	result.Attempts = attempts
	c.logger.Info("venue unresolved", slog.String("venue", key), slog.Int("attempts", len(attempts)))
	return result
}

func cacheable(r model.Result) bool {
	if r.Resolved() {
		return true
	}
	for _, a := range r.Attempts {
		if a.Reason == ReasonCanceled {
			return false
		}
	}
	return true
}

// try 单个策略出错（含 panic）都归为 Unresolved
func (c *Coordinator) try(ctx context.Context, s Strategy, key string) (m Match, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Unresolved{
				Strategy: s.Source(),
				Kind:     ProviderUnavailable,
				Reason:   ReasonPanic,
				Err:      fmt.Errorf("panic: %v", r),
			}
		}
	}()

	m, err = s.Resolve(ctx, key, c.catalog)
	if err == nil && m.Name == "" {
		err = &Unresolved{Strategy: s.Source(), Kind: NoMatch, Reason: ReasonEmptyResult}
	}
	return m, err
}

func asUnresolved(src model.Source, err error) *Unresolved {
	var u *Unresolved
	if errors.As(err, &u) {
		if u.Strategy == "" {
			u.Strategy = src
		}
		return u
	}
	return providerFailure(src, err)
}

func (c *Coordinator) logFailure(key string, u *Unresolved) {
	attrs := []any{
		slog.String("venue", key),
		slog.String("strategy", string(u.Strategy)),
		slog.String("kind", string(u.Kind)),
	}
	if u.Reason != "" {
		attrs = append(attrs, slog.String("reason", u.Reason))
	}
	if u.Candidate != "" {
		attrs = append(attrs, slog.String("candidate", u.Candidate), slog.Int("score", u.Score))
	}
	if u.Err != nil {
		attrs = append(attrs, slog.Any("error", u.Err))
	}

	switch u.Kind {
	case BelowThreshold, NoMatch:
		c.logger.Debug("strategy unresolved", attrs...)
	default:
		c.logger.Warn("strategy unresolved", attrs...)
	}
}
