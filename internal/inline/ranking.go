package inline

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// editDistance is the Levenshtein distance between two spellings.
func editDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// RateAnagram scores an anagram candidate: closeness to the word, times the
// number of alphabet retrievals that produced it, times the log frequency
// of the candidate. Unknown candidates score zero.
func RateAnagram(occ Counter, word, anagram string, retrievals int) float64 {
	freq := occ[strings.ToLower(anagram)]
	if freq <= 0 {
		return 0
	}
	return float64(len(word)-editDistance(word, anagram)) * float64(retrievals) * math.Log(float64(freq))
}

// RateOCRKey scores a shape candidate: closeness to the word minus the
// weight perturbation that reached it, times the log frequency of the
// candidate. Unknown candidates score zero.
func RateOCRKey(occ Counter, word, sim string, cardDiff int) float64 {
	freq := occ[strings.ToLower(sim)]
	if freq <= 0 {
		return 0
	}
	return float64(len(word)-editDistance(word, sim)-cardDiff) * math.Log(float64(freq))
}

// RateBigram scores a correction against the adjacent word pools: the log
// of the summed occurrences of every (previous, correction) and
// (correction, next) pair, floored at two so the boost never cancels a
// candidate.
func RateBigram(correction string, previous, next []string, occ Counter) float64 {
	total := 0
	for _, prev := range previous {
		total += occ[prev+" "+correction]
	}
	for _, nxt := range next {
		total += occ[correction+" "+nxt]
	}

	if total < 2 {
		total = 2
	}
	return math.Log(float64(total))
}

// Normalize turns a correction map into a probability distribution. A
// single candidate is pinned to one; otherwise every score divides by the
// sum, accumulated in key order so the result is run-stable.
func Normalize(corrections map[string]float64) map[string]float64 {
	if len(corrections) == 0 {
		return corrections
	}
	if len(corrections) == 1 {
		for key := range corrections {
			corrections[key] = 1
		}
		return corrections
	}

	keys := make([]string, 0, len(corrections))
	for key := range corrections {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	total := 0.0
	for _, key := range keys {
		total += corrections[key]
	}

	normalized := make(map[string]float64, len(corrections))
	for _, key := range keys {
		normalized[key] = corrections[key] / total
	}
	return normalized
}
