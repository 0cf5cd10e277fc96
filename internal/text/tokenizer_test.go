package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeWords(t *testing.T) {
	assert.Equal(t, []string{"hello", "world"}, Tokenize("hello world"))
}

func TestTokenizeSeparators(t *testing.T) {
	tests := []struct {
		line   string
		tokens []string
	}{
		{"a/b", []string{"a", "/", "b"}},
		{"3.14", []string{"3", ".", "14"}},
		{"f(x)=y", []string{"f", "(", "x", ")", "=", "y"}},
		{"one,two;three", []string{"one", ",", "two", ";", "three"}},
		{"end.", []string{"end", "."}},
		{"(nested)", []string{"(", "nested", ")"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.tokens, Tokenize(tt.line), "tokenizing %q", tt.line)
	}
}

func TestTokenizeKeepsWordChars(t *testing.T) {
	// Apostrophe and hyphen belong to words.
	assert.Equal(t, []string{"it's", "well-known"}, Tokenize("it's well-known"))
}

func TestTokenizeTransliterates(t *testing.T) {
	assert.Equal(t, []string{"cafe"}, Tokenize("café"))
	assert.Equal(t, []string{"naive"}, Tokenize("naïve"))
}

func TestTokenizeDropsEmptyFragments(t *testing.T) {
	assert.Equal(t, []string{"a", ",", ",", "b"}, Tokenize("a,,b"))
	assert.Empty(t, Tokenize("   "))
}

func TestCleanHeadTail(t *testing.T) {
	tests := []struct {
		word    string
		cleaned string
	}{
		{"hello", "hello"},
		{"...hello!!", "hello"},
		{"3word4", "word"},
		{"it's", "it's"},
		{"-dash-", "-dash-"},
		{"12345", ""},
		{"!!!", ""},
		{"", ""},
		{"'-'", ""},
		{"a", "a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.cleaned, CleanHeadTail(tt.word), "cleaning %q", tt.word)
	}
}
