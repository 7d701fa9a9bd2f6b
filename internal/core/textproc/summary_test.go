package textproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"first three sentences", "One. Two. Three. Four. Five.", "One. Two. Three"},
		{"fewer sentences", "Only one sentence.", "Only one sentence."},
		{"split needs a space", "v1.2 is out. Try it.", "v1.2 is out. Try it."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.in))
		})
	}
}

func TestSummarize_Truncates(t *testing.T) {
	s := Summarize(strings.Repeat("a", 600))
	assert.Len(t, s, 503)
	assert.True(t, strings.HasSuffix(s, "..."))

	u := Summarize(strings.Repeat("è", 600))
	assert.Equal(t, strings.Repeat("è", 500)+"...", u)
}

func TestSummarize_ExactLimitUntouched(t *testing.T) {
	in := strings.Repeat("b", 500)
	assert.Equal(t, in, Summarize(in))
}
