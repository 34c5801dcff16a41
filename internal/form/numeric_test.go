package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		value     float64
		defaulted bool
	}{
		{"integer", "42", 42, false},
		{"dot decimal", "12.5", 12.5, false},
		{"comma decimal", "12,5", 12.5, false},
		{"negative", "-3,2", -3.2, false},
		{"padded", "  7 ", 7, false},
		{"empty", "", 0, true},
		{"whitespace only", "   ", 0, true},
		{"garbage", "n/a", 0, true},
		{"double comma", "1,2,3", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ParseNumber(tt.raw)
			assert.Equal(t, tt.value, out.Value)
			assert.Equal(t, tt.defaulted, out.Defaulted)
		})
	}
}
