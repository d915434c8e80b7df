package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"venue-rank-go/internal/model"
)

func metric(t *testing.T, v float64) *model.Metric {
	t.Helper()
	m, ok := model.Quantified(v)
	if !ok {
		t.Fatalf("invalid metric %v", v)
	}
	return &m
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		value float64
		want  model.Band
	}{
		{48.5, model.BandExcellent},
		{1.0, model.BandExcellent},
		{0.999, model.BandGood},
		{0.5, model.BandGood},
		{0.4999, model.BandFair},
		{0.2, model.BandFair},
		{0.1999, model.BandPoor},
		{0, model.BandPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(metric(t, tt.value)), "value %v", tt.value)
	}
}

func TestClassifySentinels(t *testing.T) {
	assert.Equal(t, model.BandUnknown, Classify(nil))
	bf := model.BelowFloor()
	assert.Equal(t, model.BandPoor, Classify(&bf))
}

func TestDisplayAttributes(t *testing.T) {
	assert.Equal(t, "Excellent", Label(model.BandExcellent))
	assert.Equal(t, "Unknown", Label(model.BandUnknown))
	assert.Equal(t, "green", Color(model.BandExcellent))
	assert.Equal(t, "gray", Color(model.BandUnknown))
	assert.Equal(t, "warning", Severity(model.BandFair))
	assert.Equal(t, "error", Severity(model.BandPoor))
}
