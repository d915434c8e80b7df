// Package app wires configuration into a ready-to-use resolver stack.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"venue-rank-go/config"
	"venue-rank-go/internal/catalog"
	"venue-rank-go/internal/fetcher"
	"venue-rank-go/internal/llm"
	"venue-rank-go/internal/resolver"
	"venue-rank-go/internal/service"
)

// App 解析所需的全部组件
type App struct {
	Catalog     *catalog.Catalog
	Coordinator *resolver.Coordinator
	Search      *service.SearchService
	closers     []func() error
}

// New 加载目录、创建外部客户端和策略
// 目录加载失败是致命错误；缺少 key 的网络策略只是被跳过
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cat, err := catalog.Load(ctx, cfg.Catalog.Source, cfg.Catalog.Options)
	if err != nil {
		return nil, err
	}
	rep := cat.Report()
	logger.Info("catalog loaded",
		slog.String("source", redact(cfg.Catalog.Source)),
		slog.Int("entries", rep.Kept),
		slog.Int("dropped", rep.Dropped),
		slog.Int("duplicates", rep.Duplicates),
		slog.Int("below_floor", rep.BelowFloor))

	a := &App{Catalog: cat}

	deps, err := a.deps(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	rc, err := cfg.ResolverConfig()
	if err != nil {
		return nil, err
	}
	strategies, err := resolver.Build(rc, deps, logger)
	if err != nil {
		return nil, err
	}
	a.Coordinator = resolver.NewCoordinator(cat, strategies, logger)

	delay, err := cfg.RecordDelay()
	if err != nil {
		return nil, err
	}
	ttl, err := cfg.CacheTTL()
	if err != nil {
		return nil, err
	}
	a.Search = service.NewSearchService(a.Coordinator, service.Options{
		RecordDelay: delay,
		CacheTTL:    ttl,
		MaxRecords:  cfg.Batch.MaxRecords,
	}, logger)

	logger.Info("resolver ready", slog.Any("strategies", a.Coordinator.Sources()))
	return a, nil
}

func (a *App) deps(ctx context.Context, cfg *config.Config, logger *slog.Logger) (resolver.Deps, error) {
	var deps resolver.Deps

	deps.Sources = fetcher.NewOpenAlexFetcher(cfg.OpenAlex.Mailto)

	client, err := llm.NewClient(ctx, cfg.LLMClientConfig())
	switch {
	case err == nil:
		deps.LLM = client
		if c, ok := client.(interface{ Close() error }); ok {
			a.closers = append(a.closers, c.Close)
		}
	case errors.Is(err, llm.ErrNotConfigured):
		logger.Warn("llm api key not configured", slog.String("provider", cfg.LLM.Provider))
	default:
		return deps, fmt.Errorf("failed to create llm client: %w", err)
	}

	switch strings.ToLower(cfg.LiveSearch.Provider) {
	case "tavily":
		if cfg.LiveSearch.TavilyKey == "" {
			logger.Warn("TAVILY_API_KEY not configured")
			break
		}
		deps.Pages = fetcher.NewTavilyFetcher(cfg.LiveSearch.TavilyKey)
	case "firecrawl":
		if cfg.LiveSearch.FirecrawlKey == "" {
			logger.Warn("FIRECRAWL_API_KEY not configured")
			break
		}
		f := fetcher.NewFirecrawlFetcher(cfg.LiveSearch.FirecrawlKey)
		if cfg.LiveSearch.SearchURL != "" {
			f = f.WithSearchURL(cfg.LiveSearch.SearchURL)
		}
		deps.Pages = f
	default:
		deps.Pages = fetcher.NewWebSearchFetcher(cfg.LiveSearch.SearchURL)
	}
	return deps, nil
}

// Close 释放客户端
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// redact 隐藏连接串中的密码
func redact(source string) string {
	at := strings.LastIndex(source, "@")
	scheme := strings.Index(source, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return source
	}
	creds := source[scheme+3 : at]
	if i := strings.Index(creds, ":"); i >= 0 {
		return source[:scheme+3] + creds[:i] + ":***" + source[at:]
	}
	return source
}
