package inline

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"math"
	"sort"
)

// ErrAmbiguousCase is the data-invariant violation of the case-resolution
// tie-break: two casings indistinguishable by frequency, edit distance and
// the zeroed-lexicographic rule.
var ErrAmbiguousCase = errors.New("inline: case variants cannot be told apart")

// ErrIndistinct reports candidates whose md5 digests collide, leaving no
// deterministic way to separate them.
var ErrIndistinct = errors.New("inline: candidates cannot be told apart")

// zeroedCodes maps a word to its codepoints with everything outside
// [a-zA-Z] set to zero.
func zeroedCodes(word string) []int {
	codes := make([]int, 0, len(word))
	for _, r := range word {
		code := int(r)
		if code < 'A' || (code > 'Z' && code < 'a') || code > 'z' {
			code = 0
		}
		codes = append(codes, code)
	}
	return codes
}

// compareZeroed orders two words by their zeroed codepoint sequences,
// element by element, shorter prefix first.
func compareZeroed(a, b string) int {
	ca, cb := zeroedCodes(a), zeroedCodes(b)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		if ca[i] != cb[i] {
			if ca[i] < cb[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(ca) < len(cb):
		return -1
	case len(ca) > len(cb):
		return 1
	}
	return 0
}

func md5Digest(word string) string {
	sum := md5.Sum([]byte(word))
	return hex.EncodeToString(sum[:])
}

// SelectLowerEditDistance keeps the candidates closest to the reference
// word, in ascending order.
func SelectLowerEditDistance(refWord string, words []string) []string {
	if len(words) == 0 {
		return nil
	}

	minDist := -1
	for _, word := range words {
		if dist := editDistance(refWord, word); minDist < 0 || dist < minDist {
			minDist = dist
		}
	}

	var closest []string
	for _, word := range words {
		if editDistance(refWord, word) == minDist {
			closest = append(closest, word)
		}
	}
	sort.Strings(closest)
	return closest
}

// selectByHash picks the candidate with the smallest md5 digest. Colliding
// digests are an ErrIndistinct.
func selectByHash(words []string) (string, error) {
	digests := make(map[string]struct{}, len(words))
	best := ""
	bestDigest := ""
	for _, word := range words {
		digest := md5Digest(word)
		if _, dup := digests[digest]; dup {
			return "", ErrIndistinct
		}
		digests[digest] = struct{}{}
		if bestDigest == "" || digest < bestDigest {
			best, bestDigest = word, digest
		}
	}
	return best, nil
}

// BestAlphabetical picks the candidate preferred by the zeroed-
// lexicographic rule: the maximum sequence when the reference word starts
// uppercase, the minimum otherwise. Remaining ties fall through to the md5
// rule.
func BestAlphabetical(refWord string, words []string) (string, error) {
	if len(words) == 0 {
		return "", errors.New("inline: no candidate to choose from")
	}

	preferMax := startsUpper(refWord)
	var best []string
	for _, word := range words {
		if len(best) == 0 {
			best = []string{word}
			continue
		}
		cmp := compareZeroed(word, best[0])
		if cmp == 0 {
			best = append(best, word)
			continue
		}
		if (preferMax && cmp > 0) || (!preferMax && cmp < 0) {
			best = []string{word}
		}
	}

	if len(best) == 1 {
		return best[0], nil
	}
	return selectByHash(best)
}

// SelectCorrection settles a token's candidate map into one winner, or two
// when the evidence does not separate them.
func SelectCorrection(word string, corrections map[string]float64, q Quantities) (map[string]float64, error) {
	if corrections == nil || len(corrections) <= 1 {
		return corrections, nil
	}

	maxScore := math.Inf(-1)
	for _, score := range corrections {
		if score > maxScore {
			maxScore = score
		}
	}

	var top []string
	for candidate, score := range corrections {
		if score == maxScore {
			top = append(top, candidate)
		}
	}
	sort.Strings(top)

	switch {
	case len(top) == 1:
		if maxScore > q.ConfidenceThreshold {
			return map[string]float64{top[0]: maxScore}, nil
		}
		return resolveRunnerUp(word, top[0], maxScore, corrections, q)

	case len(top) == 2:
		return map[string]float64{top[0]: maxScore, top[1]: maxScore}, nil

	default:
		return resolveCrowdedTop(word, top, maxScore)
	}
}

// resolveRunnerUp looks for a second-best candidate behind an unconvincing
// single leader and keeps it unless the leader wins by the log-ratio
// cutoff.
func resolveRunnerUp(word, first string, firstScore float64, corrections map[string]float64, q Quantities) (map[string]float64, error) {
	rest := make(map[string]float64, len(corrections)-1)
	for candidate, score := range corrections {
		if candidate != first {
			rest[candidate] = score
		}
	}

	secondScore := math.Inf(-1)
	for _, score := range rest {
		if score > secondScore {
			secondScore = score
		}
	}

	var tied []string
	for candidate, score := range rest {
		if score == secondScore {
			tied = append(tied, candidate)
		}
	}
	sort.Strings(tied)

	second := tied[0]
	if len(tied) > 1 {
		closest := SelectLowerEditDistance(word, tied)
		if len(closest) == 1 {
			second = closest[0]
		} else {
			chosen, err := BestAlphabetical(word, closest)
			if err != nil {
				return nil, err
			}
			second = chosen
		}
	}

	if math.Log(firstScore/secondScore) >= q.LogRatioCutoff {
		return map[string]float64{first: firstScore}, nil
	}
	return map[string]float64{first: firstScore, second: secondScore}, nil
}

// resolveCrowdedTop reduces three or more equally scored leaders to two by
// edit distance then the alphabetical rule.
func resolveCrowdedTop(word string, top []string, maxScore float64) (map[string]float64, error) {
	closest := SelectLowerEditDistance(word, top)

	switch {
	case len(closest) == 1:
		first := closest[0]
		var rest []string
		for _, candidate := range top {
			if candidate != first {
				rest = append(rest, candidate)
			}
		}

		next := SelectLowerEditDistance(word, rest)
		if len(next) == 1 {
			return map[string]float64{first: maxScore, next[0]: maxScore}, nil
		}
		second, err := BestAlphabetical(word, next)
		if err != nil {
			return nil, err
		}
		return map[string]float64{first: maxScore, second: maxScore}, nil

	case len(closest) == 2:
		return map[string]float64{closest[0]: maxScore, closest[1]: maxScore}, nil

	default:
		first, err := BestAlphabetical(word, closest)
		if err != nil {
			return nil, err
		}
		var rest []string
		for _, candidate := range closest {
			if candidate != first {
				rest = append(rest, candidate)
			}
		}
		second, err := BestAlphabetical(word, rest)
		if err != nil {
			return nil, err
		}
		return map[string]float64{first: maxScore, second: maxScore}, nil
	}
}
