package venue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"NAT MED", "NATURE MEDICINE", true},
		{"Nat. Med.", "NATURE MEDICINE", true},
		{"N ENGL J MED", "NEW ENGLAND JOURNAL OF MEDICINE", true},
		{"N Engl J Med 382(8), 727-733", "NEW ENGLAND JOURNAL OF MEDICINE", true},
		{"PROC NATL ACAD SCI", "PROCEEDINGS OF THE NATIONAL ACADEMY OF SCIENCES", true},
		{"Phys. Rev. Lett.", "PHYSICAL REVIEW LETTERS", true},
		{"J. Am. Chem. Soc. 145", "JOURNAL OF THE AMERICAN CHEMICAL SOCIETY", true},
		{"NAT CHEM BIOL", "", false},
		{"NATURE MEDICINE", "", false},
		{"THE LANCET", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Expand(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandDeterministic(t *testing.T) {
	e := NewExpander()
	for i := 0; i < 20; i++ {
		got, ok := e.Expand("NAT COMMUN")
		assert.True(t, ok)
		assert.Equal(t, "NATURE COMMUNICATIONS", got)
	}
}
