package model

// Record 上游引用搜索返回的单条记录（原样透传到输出行）
type Record struct {
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Year      int      `json:"year,omitempty"`
	Venue     string   `json:"venue"`
	Citations int      `json:"citations"`
	URL       string   `json:"url,omitempty"`
}

// BatchStatus 批处理状态
type BatchStatus string

const (
	StatusRunning   BatchStatus = "running"
	StatusCompleted BatchStatus = "completed"
	StatusError     BatchStatus = "error"
)

// BatchState 批处理进度 - SSE每次输出这个完整结构
type BatchState struct {
	RunID         string            `json:"run_id"`
	Status        BatchStatus       `json:"status"`
	Total         int               `json:"total"`
	Done          int               `json:"done"`
	Overall       int               `json:"overall"`        // 整体进度 0-100
	CurrentAction string            `json:"current_action"` // 当前在处理什么
	Row           map[string]string `json:"row,omitempty"`  // 最新一条输出行
	Error         string            `json:"error,omitempty"`
}

// NewBatchState 创建初始状态
func NewBatchState(runID string, total int) *BatchState {
	return &BatchState{
		RunID:         runID,
		Status:        StatusRunning,
		Total:         total,
		CurrentAction: "Initializing...",
	}
}
