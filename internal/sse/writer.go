package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"venue-rank-go/internal/model"
)

// HeartbeatInterval 心跳间隔
var HeartbeatInterval = 15 * time.Second

// ErrStreamingUnsupported ResponseWriter 不支持 Flush
var ErrStreamingUnsupported = errors.New("streaming not supported")

var streamHeaders = map[string]string{
	"Content-Type":                "text/event-stream",
	"Cache-Control":               "no-cache",
	"Connection":                  "keep-alive",
	"Access-Control-Allow-Origin": "*",
}

// heartbeatEvent 长时间等待外部服务时保持连接
type heartbeatEvent struct {
	Status        string `json:"status"`
	RunID         string `json:"run_id"`
	Overall       int    `json:"overall"`
	CurrentAction string `json:"current_action"`
}

// Writer 批处理进度流，每个事件都是完整的 BatchState
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher

	mu    sync.Mutex
	state *model.BatchState

	stop     chan struct{}
	stopOnce sync.Once
}

func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	for k, v := range streamHeaders {
		w.Header().Set(k, v)
	}

	s := &Writer{
		w:       w,
		flusher: flusher,
		state:   model.NewBatchState("", 0),
		stop:    make(chan struct{}),
	}
	go s.heartbeat(HeartbeatInterval)
	return s, nil
}

func (s *Writer) heartbeat(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			if s.stopped() {
				s.mu.Unlock()
				return
			}
			s.emit(heartbeatEvent{
				Status:        "heartbeat",
				RunID:         s.state.RunID,
				Overall:       s.state.Overall,
				CurrentAction: s.state.CurrentAction,
			})
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}

// StopHeartbeat 停止心跳，可重复调用；返回后不会再写心跳
func (s *Writer) StopHeartbeat() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		close(s.stop)
		s.mu.Unlock()
	})
}

func (s *Writer) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// emit 写一个 data 事件，调用方持有锁
func (s *Writer) emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// update 在锁内修改状态并推送
func (s *Writer) update(fn func(st *model.BatchState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
	return s.emit(s.state)
}

// advance 进度只增不减
func advance(st *model.BatchState, progress int) {
	if progress > st.Overall {
		st.Overall = min(progress, 100)
	}
}

// Start 设置本次运行信息并立即发送
func (s *Writer) Start(runID string, total int) error {
	return s.update(func(st *model.BatchState) {
		*st = *model.NewBatchState(runID, total)
	})
}

// SetAction 更新当前动作
func (s *Writer) SetAction(progress int, action string) error {
	return s.update(func(st *model.BatchState) {
		advance(st, progress)
		st.CurrentAction = action
		st.Row = nil
	})
}

// SendRow 推送一条输出行
func (s *Writer) SendRow(done int, row map[string]string) error {
	return s.update(func(st *model.BatchState) {
		st.Done = done
		if st.Total > 0 {
			advance(st, done*100/st.Total)
		}
		st.Row = row
	})
}

func (s *Writer) SendGlobalError(errMsg string) error {
	return s.update(func(st *model.BatchState) {
		st.Status = model.StatusError
		st.CurrentAction = "Resolution failed"
		st.Row = nil
		st.Error = errMsg
	})
}

// Done 全部完成
func (s *Writer) Done() error {
	return s.update(func(st *model.BatchState) {
		st.Status = model.StatusCompleted
		st.Overall = 100
		st.CurrentAction = "Resolution completed"
		st.Row = nil
	})
}
