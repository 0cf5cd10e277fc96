package text

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// separators are split out of word fragments as standalone tokens.
const separators = "=+/,.:;!?%<>#()&[]{}"

var (
	cleaningPattern = regexp.MustCompile(`^[^a-zA-Z'-]*([a-zA-Z'-](.*[a-zA-Z'-])?)[^a-zA-Z'-]*$`)
	alphaPattern    = regexp.MustCompile(`[a-zA-Z]`)
)

// Tokenize splits a line into tokens. Fields are transliterated to ASCII,
// leading and trailing punctuation is peeled off as standalone tokens, and
// every separator character splits its fragment while being retained in
// order between the pieces.
func Tokenize(line string) []string {
	var tokens []string

	for _, field := range strings.Fields(line) {
		for _, word := range splitPunctuation(unidecode.Unidecode(field)) {
			tokens = append(tokens, splitSeparators(word)...)
		}
	}

	return tokens
}

// splitPunctuation peels punctuation off both ends of a field, one character
// per token, keeping the order of appearance. Apostrophe and hyphen stay
// attached: they are word characters here.
func splitPunctuation(field string) []string {
	var head, tail []string

	for len(field) > 0 && isEdgePunct(field[0]) {
		head = append(head, field[:1])
		field = field[1:]
	}
	for len(field) > 0 && isEdgePunct(field[len(field)-1]) {
		tail = append([]string{field[len(field)-1:]}, tail...)
		field = field[:len(field)-1]
	}

	parts := head
	if field != "" {
		parts = append(parts, field)
	}
	return append(parts, tail...)
}

func isEdgePunct(c byte) bool {
	if c == '\'' || c == '-' {
		return false
	}
	return (c >= '!' && c <= '/') || (c >= ':' && c <= '@') ||
		(c >= '[' && c <= '`') || (c >= '{' && c <= '~')
}

// splitSeparators splits a token on every separator character, keeping the
// separators as tokens of their own. Empty fragments are dropped.
func splitSeparators(word string) []string {
	parts := []string{word}

	for _, sep := range strings.Split(separators, "") {
		var next []string

		for _, part := range parts {
			pieces := strings.Split(part, sep)
			if len(pieces) == 1 {
				next = append(next, part)
				continue
			}
			for i, piece := range pieces {
				next = append(next, piece)
				if i != len(pieces)-1 {
					next = append(next, sep)
				}
			}
		}

		parts = next
	}

	kept := parts[:0]
	for _, part := range parts {
		if part != "" {
			kept = append(kept, part)
		}
	}
	return kept
}

// CleanHeadTail strips non-word characters from both ends of a token. The
// empty string marks a token that cannot be cleaned or carries no letter.
func CleanHeadTail(word string) string {
	groups := cleaningPattern.FindStringSubmatch(word)
	if groups == nil {
		return ""
	}
	if !alphaPattern.MatchString(groups[1]) {
		return ""
	}
	return groups[1]
}
