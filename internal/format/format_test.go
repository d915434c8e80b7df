package format

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue-rank-go/internal/classify"
	"venue-rank-go/internal/model"
)

func quantified(t *testing.T, v float64) *model.Metric {
	t.Helper()
	m, ok := model.Quantified(v)
	require.True(t, ok)
	return &m
}

func TestMetric(t *testing.T) {
	below := model.BelowFloor()
	tests := []struct {
		name string
		in   *model.Metric
		want string
	}{
		{"nil", nil, "N/A"},
		{"below floor", &below, "<0.1"},
		{"zero", quantified(t, 0), "0.000"},
		{"rounded", quantified(t, 3.2156), "3.216"},
		{"integer", quantified(t, 48), "48.000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Metric(tt.in))
		})
	}
}

func TestMetricShape(t *testing.T) {
	shape := regexp.MustCompile(`^(\d+\.\d{3}|<0\.1|N/A)$`)
	below := model.BelowFloor()
	inputs := []*model.Metric{nil, &below}
	for _, v := range []float64{0, 0.0004, 0.1, 0.19999, 1, 12.3456789, 1e6} {
		inputs = append(inputs, quantified(t, v))
	}
	for _, m := range inputs {
		assert.Regexp(t, shape, Metric(m))
	}
}

func TestRow(t *testing.T) {
	m := quantified(t, 0.5)
	r := model.Result{
		RawVenue:    "Nat Commun",
		MatchedName: "NATURE COMMUNICATIONS",
		Metric:      m,
		Confidence:  100,
		Source:      model.SourceLocalCatalog,
		Band:        classify.Classify(m),
	}
	row := Row(r)
	assert.Equal(t, "Nat Commun", row[ColVenue])
	assert.Equal(t, "NATURE COMMUNICATIONS", row[ColMatched])
	assert.Equal(t, "0.500", row[ColMetric])
	assert.Equal(t, "Good", row[ColQuality])
	assert.Equal(t, "LocalCatalog", row[ColSource])
	assert.Equal(t, "100", row[ColConfidence])

	unknown := Row(model.Result{RawVenue: "x", Source: model.SourceNone, Band: model.BandUnknown})
	assert.Equal(t, "N/A", unknown[ColMatched])
	assert.Equal(t, "N/A", unknown[ColMetric])
	assert.Equal(t, "Unknown", unknown[ColQuality])
	assert.Equal(t, "None", unknown[ColSource])
	assert.Equal(t, "0", unknown[ColConfidence])
}

func TestRecordRow(t *testing.T) {
	rec := model.Record{
		Title:     "Deep learning",
		Authors:   []string{"Y LeCun", "Y Bengio", "G Hinton"},
		Year:      2015,
		Venue:     "Nature",
		Citations: 70000,
		URL:       "https://example.org/p",
	}
	row := RecordRow(rec, model.Result{RawVenue: "Nature", Source: model.SourceNone, Band: model.BandUnknown})

	for _, col := range Columns {
		_, ok := row[col]
		assert.True(t, ok, col)
	}
	assert.Equal(t, "Y LeCun, Y Bengio, G Hinton", row[ColAuthors])
	assert.Equal(t, "2015", row[ColYear])
	assert.Equal(t, "70000", row[ColCitations])

	row = RecordRow(model.Record{Venue: "X"}, model.Result{})
	assert.Equal(t, "", row[ColYear])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := []map[string]string{
		{ColVenue: "Revista Médica, Chile", ColMetric: "0.512"},
		{ColVenue: "NATURE", ColMetric: "48.500"},
	}
	require.NoError(t, WriteCSV(&buf, []string{ColVenue, ColMetric}, rows))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\ufeff"))
	assert.Equal(t, "\ufeffJournal/Venue,Impact Factor\n\"Revista Médica, Chile\",0.512\nNATURE,48.500\n", out)
}
