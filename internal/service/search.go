package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"venue-rank-go/internal/cache"
	"venue-rank-go/internal/format"
	"venue-rank-go/internal/model"
	"venue-rank-go/internal/normalize"
	"venue-rank-go/internal/resolver"
)

// 单次批处理记录数
const (
	DefaultLimit = 10
	MinLimit     = 5
	MaxLimit     = 50
)

// DefaultRecordDelay 需要联网的记录之后的间隔
const DefaultRecordDelay = 1500 * time.Millisecond

// Progress 批处理进度回调（SSE 或命令行）
type Progress interface {
	Start(runID string, total int) error
	SetAction(progress int, action string) error
	SendRow(done int, row map[string]string) error
}

// Options 批处理选项
type Options struct {
	RecordDelay time.Duration
	CacheTTL    time.Duration
	MaxRecords  int
}

// Report 一次批处理的输出
type Report struct {
	RunID   string              `json:"run_id"`
	Rows    []map[string]string `json:"rows"`
	Results []model.Result      `json:"results"`
}

// SearchService 逐条解析引用记录的期刊
type SearchService struct {
	coordinator *resolver.Coordinator
	opts        Options
	logger      *slog.Logger
}

// NewSearchService 创建批处理服务
func NewSearchService(coordinator *resolver.Coordinator, opts Options, logger *slog.Logger) *SearchService {
	if opts.MaxRecords <= 0 || opts.MaxRecords > MaxLimit {
		opts.MaxRecords = MaxLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		coordinator: coordinator,
		opts:        opts,
		logger:      logger.With(slog.String("component", "batch")),
	}
}

// ClampLimit 0 取默认值，其余限制在 [MinLimit, MaxRecords]
func (s *SearchService) ClampLimit(n int) int {
	if n <= 0 {
		n = DefaultLimit
	}
	return max(MinLimit, min(n, s.opts.MaxRecords))
}

// Run 顺序处理记录；每次运行使用新的会话缓存
// ctx 取消时返回已完成的部分和 ctx.Err()
func (s *SearchService) Run(ctx context.Context, records []model.Record, limit int, p Progress) (*Report, error) {
	limit = s.ClampLimit(limit)
	if len(records) > limit {
		records = records[:limit]
	}

	report := &Report{RunID: uuid.NewString()}
	logger := s.logger.With(slog.String("run_id", report.RunID))
	logger.Info("batch started", slog.Int("records", len(records)), slog.Int("limit", limit))

	if p != nil {
		p.Start(report.RunID, len(records))
	}

	store := cache.NewSession(s.opts.CacheTTL)
	seen := make(map[string]bool)
	start := time.Now()

	// 上一条联网记录结束后才开始计时
	var pacer *rate.Limiter

	for i, rec := range records {
		if pacer != nil {
			if err := pacer.Wait(ctx); err != nil {
				logger.Warn("batch interrupted", slog.Int("done", i), slog.Any("error", err))
				return report, ctx.Err()
			}
			pacer = nil
		}
		if err := ctx.Err(); err != nil {
			logger.Warn("batch interrupted", slog.Int("done", i), slog.Any("error", err))
			return report, err
		}

		if p != nil {
			p.SetAction(i*100/len(records), fmt.Sprintf("Resolving venue %d/%d: %s", i+1, len(records), rec.Venue))
		}

		key := normalize.Normalize(rec.Venue)
		cached := seen[key]
		seen[key] = true

		result := s.coordinator.Resolve(ctx, store, rec.Venue)
		row := format.RecordRow(rec, result)
		report.Results = append(report.Results, result)
		report.Rows = append(report.Rows, row)

		// 缓存命中或本地命中不需要等待
		if !cached && touchedNetwork(result) && s.opts.RecordDelay > 0 {
			pacer = drainedLimiter(s.opts.RecordDelay)
		}

		if p != nil {
			p.SendRow(i+1, row)
		}
	}

	logger.Info("batch completed",
		slog.Int("records", len(records)),
		slog.Int("distinct_venues", store.Len()),
		slog.Duration("elapsed", time.Since(start)))
	return report, nil
}

// drainedLimiter 令牌已用掉的限速器，Wait 从现在起等满 delay
func drainedLimiter(delay time.Duration) *rate.Limiter {
	l := rate.NewLimiter(rate.Every(delay), 1)
	l.Allow()
	return l
}

// touchedNetwork 解析过程中是否调用过外部服务
func touchedNetwork(r model.Result) bool {
	for _, a := range r.Attempts {
		if a.Strategy.IsNetwork() {
			return true
		}
	}
	return false
}
