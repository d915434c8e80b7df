package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "nature medicine", "NATURE MEDICINE"},
		{"padding", "  The Lancet  ", "THE LANCET"},
		{"inner whitespace", "Cell\t\tReports \n Medicine", "CELL REPORTS MEDICINE"},
		{"nbsp", "Nature\u00a0Physics", "NATURE PHYSICS"},
		{"fullwidth", "Ｎａｔｕｒｅ", "NATURE"},
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"non-ascii kept", "Revista Médica de Chile", "REVISTA MÉDICA DE CHILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"nature", "  j. am. chem. soc. ", "Ｐｈｙｓ Rev  Lett", "ＡＢＣ def", ""}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeCaseAndSpaceInsensitive(t *testing.T) {
	assert.Equal(t, Normalize("Nature  Medicine"), Normalize(" NATURE medicine"))
}
