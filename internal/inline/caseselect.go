package inline

import (
	"sort"
	"strings"
)

// Case modes steer the casing filter of FindCorrectCase.
const (
	CaseLower       = -1
	CaseAllCaps     = 0
	CaseCapitalized = 1
)

// CaseMode classifies a token's casing: all-caps when it starts uppercase
// with more than two uppercase letters, capitalised when it starts
// uppercase with at most two, lowercase otherwise.
func CaseMode(token string) int {
	if !startsUpper(token) {
		return CaseLower
	}
	if countUpper(token) > 2 {
		return CaseAllCaps
	}
	return CaseCapitalized
}

func countUpper(word string) int {
	count := 0
	for i := 0; i < len(word); i++ {
		if word[i] >= 'A' && word[i] <= 'Z' {
			count++
		}
	}
	return count
}

// FindCorrectCase picks the best observed casing of a word for a case
// mode: filter the case variants by the mode, keep the most frequent, then
// the closest by edit distance, then settle by the zeroed-lexicographic
// rule. A residual tie is an ErrAmbiguousCase.
func FindCorrectCase(word string, mode int, ctx *Context) (string, error) {
	variants := caseVariants(word, ctx)

	filtered := variants[:0:0]
	switch mode {
	case CaseAllCaps:
		for _, v := range variants {
			if startsUpper(v) && countUpper(v) > 2 {
				filtered = append(filtered, v)
			}
		}
	case CaseCapitalized:
		for _, v := range variants {
			if startsUpper(v) && countUpper(v) <= 2 {
				filtered = append(filtered, v)
			}
		}
	default:
		filtered = variants
	}
	if len(filtered) == 0 {
		filtered = variants
	}

	maxOcc := -1
	for _, v := range filtered {
		if occ := ctx.OccurrenceMap[v]; occ > maxOcc {
			maxOcc = occ
		}
	}
	var frequent []string
	for _, v := range filtered {
		if ctx.OccurrenceMap[v] == maxOcc {
			frequent = append(frequent, v)
		}
	}
	if len(frequent) == 1 {
		return frequent[0], nil
	}

	closest := SelectLowerEditDistance(word, frequent)
	if len(closest) == 1 {
		return closest[0], nil
	}

	// Modes zero and above take the minimum sequence, the lowercase
	// mode the maximum.
	winner := closest[0]
	for _, v := range closest[1:] {
		cmp := compareZeroed(v, winner)
		if (mode >= 0 && cmp < 0) || (mode < 0 && cmp > 0) {
			winner = v
		}
	}
	for _, v := range closest {
		if v != winner && compareZeroed(v, winner) == 0 {
			return "", ErrAmbiguousCase
		}
	}
	return winner, nil
}

// caseVariants lists the observed casings of a word, its own casing when
// the word was never indexed.
func caseVariants(word string, ctx *Context) []string {
	casings, ok := ctx.AltCase[strings.ToLower(word)]
	if !ok || len(casings) == 0 {
		return []string{word}
	}
	return casings.Members()
}

// CorrectCase recases every candidate of a correction map toward the
// original token's case mode. Bigram candidates recase word by word.
// Candidates colliding after recasing keep the higher score.
func CorrectCase(token string, corrections map[string]float64, ctx *Context) (map[string]float64, error) {
	mode := CaseMode(token)

	keys := make([]string, 0, len(corrections))
	for candidate := range corrections {
		keys = append(keys, candidate)
	}
	sort.Strings(keys)

	recased := make(map[string]float64, len(corrections))
	for _, candidate := range keys {
		score := corrections[candidate]

		var key string
		if left, right, found := strings.Cut(candidate, " "); found {
			caseLeft, err := FindCorrectCase(left, mode, ctx)
			if err != nil {
				return nil, err
			}
			caseRight, err := FindCorrectCase(right, mode, ctx)
			if err != nil {
				return nil, err
			}
			key = caseLeft + " " + caseRight
		} else {
			cased, err := FindCorrectCase(candidate, mode, ctx)
			if err != nil {
				return nil, err
			}
			key = cased
		}

		if current, ok := recased[key]; !ok || score > current {
			recased[key] = score
		}
	}

	return recased, nil
}
