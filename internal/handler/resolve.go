package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"venue-rank-go/internal/cache"
	"venue-rank-go/internal/format"
	"venue-rank-go/internal/resolver"
	"venue-rank-go/internal/service"
	"venue-rank-go/internal/sse"
)

// maxRequestBytes 请求体上限
const maxRequestBytes = 1 << 20

// ResolveHandler 期刊解析HTTP处理器
type ResolveHandler struct {
	coordinator *resolver.Coordinator
	store       cache.Store // 单条解析共用的缓存（服务进程生命周期，带TTL）
	search      *service.SearchService
	logger      *slog.Logger
}

// NewResolveHandler 创建处理器
func NewResolveHandler(coord *resolver.Coordinator, store cache.Store, search *service.SearchService, logger *slog.Logger) *ResolveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResolveHandler{
		coordinator: coord,
		store:       store,
		search:      search,
		logger:      logger.With(slog.String("component", "http")),
	}
}

// Resolve 解析单个期刊名
// POST /api/resolve
// Body: {"venue": "Nat Commun"}
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ResolveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// 空期刊名得到 Unknown 结果，不是请求错误
	result := h.coordinator.Resolve(r.Context(), h.store, req.Venue)
	writeJSON(w, http.StatusOK, ResolveResponse{Result: result, Row: format.Row(result)})
}

// SearchSSE 批量解析，逐行通过SSE推送
// POST /api/search/sse
// Body: {"records": [{"title": "...", "venue": "..."}], "limit": 10}
func (h *ResolveHandler) SearchSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Records) == 0 {
		http.Error(w, "records are required", http.StatusBadRequest)
		return
	}

	writer, err := sse.NewWriter(w)
	if err != nil {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	defer writer.StopHeartbeat()

	report, err := h.search.Run(r.Context(), req.Records, req.Limit, writer)
	if err != nil {
		h.logger.Warn("batch failed", slog.String("run_id", report.RunID), slog.Any("error", err))
		writer.SendGlobalError(err.Error())
		return
	}
	writer.Done()
}

// Health 健康检查
func (h *ResolveHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"strategies": h.coordinator.Sources(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
