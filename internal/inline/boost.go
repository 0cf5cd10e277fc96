package inline

import (
	"sort"
	"strings"

	"github.com/lab/denoiser/internal/text"
)

// adjacentPoolSize caps how many corrections of a neighbouring token feed
// the bigram boost.
const adjacentPoolSize = 5

// ApplyBigramBoost multiplies every candidate score of every corrected
// token in the paragraph by its bigram score against the adjacent word
// pools. Pools stop at paragraph boundaries.
func ApplyBigramBoost(paragraph text.Paragraph, occ Counter) {
	var tokens []*text.Token
	for _, line := range paragraph {
		tokens = append(tokens, line.Tokens...)
	}

	for i, token := range tokens {
		if token.Corrections == nil {
			continue
		}

		var previous, next []string
		if i > 0 {
			previous = adjacentPool(tokens[i-1])
		}
		if i+1 < len(tokens) {
			next = adjacentPool(tokens[i+1])
		}

		for correction := range token.Corrections {
			boost := RateBigram(strings.ToLower(correction), previous, next, occ)
			token.Corrections[correction] *= boost
		}
	}
}

// adjacentPool lists the lowercased forms a neighbouring token can stand
// for: its top corrections when it has any, else its cleaned form, else its
// original.
func adjacentPool(token *text.Token) []string {
	if token.Corrections == nil {
		if token.Cleaned != "" {
			return []string{strings.ToLower(token.Cleaned)}
		}
		return []string{strings.ToLower(token.Original)}
	}

	type scored struct {
		word  string
		score float64
	}
	ranked := make([]scored, 0, len(token.Corrections))
	for word, score := range token.Corrections {
		ranked = append(ranked, scored{word, score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].word < ranked[j].word
	})

	limit := adjacentPoolSize
	if len(ranked) < limit {
		limit = len(ranked)
	}
	pool := make([]string, 0, limit)
	for _, entry := range ranked[:limit] {
		pool = append(pool, strings.ToLower(entry.word))
	}
	return pool
}
