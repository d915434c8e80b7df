package handler

import "venue-rank-go/internal/model"

// ResolveRequest 单个期刊名解析请求
type ResolveRequest struct {
	Venue string `json:"venue"`
}

// ResolveResponse 解析结果和展示行
type ResolveResponse struct {
	Result model.Result      `json:"result"`
	Row    map[string]string `json:"row"`
}

// SearchRequest 批量解析请求（上游引用搜索的记录）
type SearchRequest struct {
	Records []model.Record `json:"records"`
	Limit   int            `json:"limit,omitempty"` // 0 取默认值
}
