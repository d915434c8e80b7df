package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue-rank-go/internal/model"
)

func sampleResult() model.Result {
	m, _ := model.Quantified(48.5)
	return model.Result{
		RawVenue:        "nature",
		NormalizedVenue: "NATURE",
		MatchedName:     "NATURE",
		Metric:          &m,
		Confidence:      100,
		Source:          model.SourceLocalCatalog,
		Band:            model.BandExcellent,
		Attempts:        []model.Attempt{{Strategy: model.SourceLocalCatalog, Kind: "resolved"}},
	}
}

func TestSessionGetPut(t *testing.T) {
	c := NewSession(time.Hour)

	_, ok := c.Get("NATURE")
	assert.False(t, ok)

	c.Put("NATURE", sampleResult())
	got, ok := c.Get("NATURE")
	require.True(t, ok)
	assert.Equal(t, sampleResult(), got)
}

func TestSessionReturnsCopies(t *testing.T) {
	c := NewSession(0)
	c.Put("NATURE", sampleResult())

	got, _ := c.Get("NATURE")
	got.Attempts[0].Kind = "mutated"
	*got.Metric = model.BelowFloor()

	again, _ := c.Get("NATURE")
	assert.Equal(t, "resolved", again.Attempts[0].Kind)
	assert.False(t, again.Metric.IsBelowFloor())
}

func TestSessionExpiry(t *testing.T) {
	c := NewSession(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put("NATURE", sampleResult())
	now = now.Add(30 * time.Second)
	_, ok := c.Get("NATURE")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = c.Get("NATURE")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestSessionReset(t *testing.T) {
	c := NewSession(time.Hour)
	c.Put("A", sampleResult())
	c.Put("B", sampleResult())
	require.Equal(t, 2, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("A")
	assert.False(t, ok)
}

func TestSessionImplementsStore(t *testing.T) {
	var _ Store = NewSession(DefaultTTL)
}
