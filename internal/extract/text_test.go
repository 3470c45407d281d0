package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "basic punctuation",
			text: "The sky is blue today. Is it going to rain later? We certainly hope not!",
			want: []string{"The sky is blue today.", "Is it going to rain later?", "We certainly hope not!"},
		},
		{
			name: "short fragments dropped",
			text: "Yes. No. This sentence is long enough to keep.",
			want: []string{"This sentence is long enough to keep."},
		},
		{
			name: "decimal numbers do not split",
			text: "Version 2.5 shipped in March with many fixes.",
			want: []string{"Version 2.5 shipped in March with many fixes."},
		},
		{
			name: "exactly ten characters dropped",
			text: "abcdefghi. This one stays in the output.",
			want: []string{"This one stays in the output."},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.text))
		})
	}
}

func TestCountSyllables(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"the", 1},
		{"cat", 1},
		{"", 1},
		{"make", 1},
		{"table", 1},
		{"reading", 2},
		{"beautiful", 3},
		{"organization", 5},
		{"rhythm", 1},
		{"Queue!", 1},
		{"visibility", 5},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, CountSyllables(tt.word))
		})
	}
}

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"Hello,", "world", "42"}, Words("Hello, — world 42 ..."))
	assert.Empty(t, Words("   "))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "fi ligature and spaces", Normalize("  ﬁ ligature and\n\tspaces "))
}

func TestLexicon(t *testing.T) {
	lex := NewLexicon("may", "might", "it seems")

	assert.Equal(t, 3, lex.Count("It may work. It might not. It seems fine."))
	assert.Equal(t, 0, lex.Count("Mayonnaise is not a hedge."))
	assert.True(t, lex.Matches("IT SEEMS so"))
	assert.Equal(t, []string{"may", "it seems"}, lex.Found("may, may, it seems"))
}

func TestCountPhrase(t *testing.T) {
	assert.Equal(t, 2, CountPhrase("According to X and according to Y", "according to"))
	assert.Equal(t, 0, CountPhrase("anything", " "))
}

func TestCountPhrase_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		phrase string
		want   int
	}{
		{name: "trailing symbols", text: "We write C++ daily. c++, and C++17 are different.", phrase: "C++", want: 2},
		{name: "leading symbol", text: ".NET apps and (.NET) tooling", phrase: ".NET", want: 2},
		{name: "glued to a word", text: "ASP.NET is not plain", phrase: ".NET", want: 0},
		{name: "prefix of a longer word", text: "Acme and Acmes and ACME", phrase: "acme", want: 2},
		{name: "adjacent matches", text: "C# C# C#", phrase: "C#", want: 3},
		{name: "retry after a glued match", text: "xab ab", phrase: "ab", want: 1},
		{name: "accented phrase", text: "naïve café, café!", phrase: "café", want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountPhrase(tt.text, tt.phrase))
		})
	}
}

func TestCountPhrase_ReusesCompiledPattern(t *testing.T) {
	assert.Equal(t, 1, CountPhrase("Vector Search", "vector search"))
	first := phrasePattern("Vector Search")
	assert.Same(t, first, phrasePattern("VECTOR SEARCH"))
}
