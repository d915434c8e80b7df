package service

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue-rank-go/internal/catalog"
	"venue-rank-go/internal/format"
	"venue-rank-go/internal/model"
	"venue-rank-go/internal/resolver"
)

// countingStrategy 把任意期刊名解析为固定指标
type countingStrategy struct {
	src   model.Source
	delay time.Duration
	calls atomic.Int32
	seen  []string
}

func (c *countingStrategy) Source() model.Source { return c.src }

func (c *countingStrategy) Resolve(ctx context.Context, v string, _ *catalog.Catalog) (resolver.Match, error) {
	c.calls.Add(1)
	c.seen = append(c.seen, v)
	time.Sleep(c.delay)
	m, _ := model.Quantified(0.75)
	return resolver.Match{Name: v, Metric: m, Confidence: 100}, nil
}

type recordingProgress struct {
	runID   string
	total   int
	actions []int
	rows    []map[string]string
}

func (r *recordingProgress) Start(runID string, total int) error {
	r.runID, r.total = runID, total
	return nil
}

func (r *recordingProgress) SetAction(progress int, action string) error {
	r.actions = append(r.actions, progress)
	return nil
}

func (r *recordingProgress) SendRow(done int, row map[string]string) error {
	r.rows = append(r.rows, row)
	return nil
}

func records(venues ...string) []model.Record {
	out := make([]model.Record, len(venues))
	for i, v := range venues {
		out[i] = model.Record{Title: "Paper " + v, Venue: v, Year: 2020}
	}
	return out
}

func newService(strategy resolver.Strategy, opts Options) *SearchService {
	coord := resolver.NewCoordinator(catalog.New(nil), []resolver.Strategy{strategy}, nil)
	return NewSearchService(coord, opts, nil)
}

func TestClampLimit(t *testing.T) {
	s := newService(&countingStrategy{src: model.SourceRemoteAPI}, Options{})

	assert.Equal(t, DefaultLimit, s.ClampLimit(0))
	assert.Equal(t, MinLimit, s.ClampLimit(1))
	assert.Equal(t, 20, s.ClampLimit(20))
	assert.Equal(t, MaxLimit, s.ClampLimit(1000))

	small := newService(&countingStrategy{src: model.SourceRemoteAPI}, Options{MaxRecords: 8})
	assert.Equal(t, 8, small.ClampLimit(20))
}

func TestRunAppliesLimit(t *testing.T) {
	strategy := &countingStrategy{src: model.SourceModelEstimate}
	s := newService(strategy, Options{})

	venues := make([]string, 12)
	for i := range venues {
		venues[i] = "Journal " + string(rune('A'+i))
	}
	report, err := s.Run(context.Background(), records(venues...), 0, nil)
	require.NoError(t, err)
	assert.Len(t, report.Rows, DefaultLimit)
	assert.Equal(t, int32(DefaultLimit), strategy.calls.Load())
	assert.NotEmpty(t, report.RunID)
}

func TestRunResolvesDistinctVenuesOnce(t *testing.T) {
	strategy := &countingStrategy{src: model.SourceRemoteAPI}
	s := newService(strategy, Options{})
	p := &recordingProgress{}

	report, err := s.Run(context.Background(), records("Nature", "nature ", "Science", "NATURE", "Cell"), 5, p)
	require.NoError(t, err)

	assert.Equal(t, int32(3), strategy.calls.Load())
	require.Len(t, report.Rows, 5)
	assert.Equal(t, report.Results[0], report.Results[1])
	assert.Equal(t, "0.750", report.Rows[3][format.ColMetric])
	assert.Equal(t, "Good", report.Rows[3][format.ColQuality])
	assert.Equal(t, "nature ", report.Rows[1][format.ColVenue])

	assert.Equal(t, report.RunID, p.runID)
	assert.Equal(t, 5, p.total)
	assert.Equal(t, []int{0, 20, 40, 60, 80}, p.actions)
	assert.Len(t, p.rows, 5)
}

func TestRunFreshCachePerBatch(t *testing.T) {
	strategy := &countingStrategy{src: model.SourceRemoteAPI}
	s := newService(strategy, Options{})

	_, err := s.Run(context.Background(), records("Nature"), 5, nil)
	require.NoError(t, err)
	_, err = s.Run(context.Background(), records("Nature"), 5, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), strategy.calls.Load())
}

func TestRunCanceled(t *testing.T) {
	strategy := &countingStrategy{src: model.SourceRemoteAPI}
	s := newService(strategy, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := s.Run(ctx, records("A", "B", "C", "D", "E"), 5, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Rows)
	assert.Equal(t, int32(0), strategy.calls.Load())
}

func TestRunPacesNetworkRecords(t *testing.T) {
	strategy := &countingStrategy{src: model.SourceRemoteAPI}
	s := newService(strategy, Options{RecordDelay: 40 * time.Millisecond})

	start := time.Now()
	_, err := s.Run(context.Background(), records("A", "B", "C", "A", "A"), 5, nil)
	require.NoError(t, err)
	elapsed := time.Since(start)

	// 重复的 A 命中缓存，之后不再等待
	assert.GreaterOrEqual(t, elapsed, 70*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestRunPacesFromEndOfSlowRecord(t *testing.T) {
	strategy := &countingStrategy{src: model.SourceRemoteAPI, delay: 60 * time.Millisecond}
	s := newService(strategy, Options{RecordDelay: 40 * time.Millisecond})

	start := time.Now()
	_, err := s.Run(context.Background(), records("A", "B"), 5, nil)
	require.NoError(t, err)

	// 60ms 解析 + 40ms 间隔 + 60ms 解析
	assert.GreaterOrEqual(t, time.Since(start), 155*time.Millisecond)
}

func TestRunDoesNotPaceLocalMatches(t *testing.T) {
	cat := catalog.New([]catalog.Entry{{Name: "NATURE", Metric: model.BelowFloor()}})
	coord := resolver.NewCoordinator(cat, []resolver.Strategy{resolver.NewLocalCatalog(90, nil)}, nil)
	s := NewSearchService(coord, Options{RecordDelay: time.Second}, nil)

	start := time.Now()
	report, err := s.Run(context.Background(), records("Nature", "Nature", "Nature", "Nature", "Nature"), 5, nil)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, "<0.1", report.Rows[0][format.ColMetric])
	assert.Equal(t, "Poor", report.Rows[0][format.ColQuality])
}

func TestReadRecordsCSV(t *testing.T) {
	in := "\ufeffTitle,Authors,Year,Journal/Venue,Citations,URL\n" +
		"Deep learning,\"Y LeCun; Y Bengio\",2015,Nature,70000,https://example.org/a\n" +
		"Untitled,,,Revista Médica de Chile,,\n"

	recs, err := ReadRecordsCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "Deep learning", recs[0].Title)
	assert.Equal(t, []string{"Y LeCun", "Y Bengio"}, recs[0].Authors)
	assert.Equal(t, 2015, recs[0].Year)
	assert.Equal(t, "Nature", recs[0].Venue)
	assert.Equal(t, 70000, recs[0].Citations)

	assert.Equal(t, "Revista Médica de Chile", recs[1].Venue)
	assert.Nil(t, recs[1].Authors)
	assert.Equal(t, 0, recs[1].Year)
}

func TestReadRecordsCSVRequiresVenue(t *testing.T) {
	_, err := ReadRecordsCSV(strings.NewReader("Title,Year\nX,2020\n"))
	assert.Error(t, err)

	recs, err := ReadRecordsCSV(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, recs)
}
