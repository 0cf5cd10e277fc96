package text

// Corrections maps candidate spellings to their scores. A nil map means no
// correction was attempted or none is needed; an empty, non-nil map marks a
// token still waiting for candidates.
type Corrections map[string]float64

// Token is one tokenizer output unit: the original spelling, its cleaned
// form (empty when the original carries no letter) and the corrections
// proposed for it.
type Token struct {
	Original    string
	Cleaned     string
	Corrections Corrections
}

func newToken(original string) *Token {
	return &Token{
		Original: original,
		Cleaned:  CleanHeadTail(original),
	}
}

// Best returns the highest-scored correction, falling back to the cleaned
// then the original form. Ties are broken by the lexicographically smaller
// candidate so the choice is stable across runs.
func (t *Token) Best() string {
	if len(t.Corrections) == 0 {
		if t.Cleaned != "" {
			return t.Cleaned
		}
		return t.Original
	}

	best := ""
	bestScore := 0.0
	for candidate, score := range t.Corrections {
		if best == "" || score > bestScore || (score == bestScore && candidate < best) {
			best = candidate
			bestScore = score
		}
	}
	return best
}
