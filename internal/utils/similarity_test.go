package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenSortKey(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"Nature Medicine", "MEDICINE NATURE"},
		{"Medicine, Nature", "MEDICINE NATURE"},
		{"J. Am. Chem. Soc.", "AM CHEM J SOC"},
		{"  ", ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, TokenSortKey(tc.in), "TokenSortKey(%q)", tc.in)
	}
}

func TestRatio(t *testing.T) {
	testCases := []struct {
		a, b string
		want int
	}{
		{"NATURE", "NATURE", 100},
		{"", "", 100},
		{"NATURE", "", 0},
		{"NATURE", "NATURES", 92},
		{"NAT", "NATURE", 67},
		{"KITTEN", "SITTING", 62},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, Ratio(tc.a, tc.b), "Ratio(%q, %q)", tc.a, tc.b)
		assert.Equal(t, tc.want, Ratio(tc.b, tc.a), "Ratio(%q, %q)", tc.b, tc.a)
	}
}

func TestTokenSortRatio(t *testing.T) {
	assert.Equal(t, 100, TokenSortRatio("NATURE MEDICINE", "MEDICINE NATURE"))
	assert.Equal(t, 100, TokenSortRatio("Cell Reports", "CELL, REPORTS"))
	assert.Less(t, TokenSortRatio("NAT MED", "NATURE MEDICINE"), 90)
	assert.Equal(t, 0, TokenSortRatio("NATURE", ""))
}
