package inline

import (
	"sort"
	"strings"
)

// InitCorrectionMap primes a token's correction map. Tokens without a
// cleaned form stay nil; short tokens and dictionary words short-circuit to
// themselves; everything else gets an empty map awaiting candidates.
func InitCorrectionMap(cleaned string, dictionary StringSet) map[string]float64 {
	if cleaned == "" {
		return nil
	}
	if len(cleaned) <= 2 || dictionary.Has(strings.ToLower(cleaned)) {
		return map[string]float64{cleaned: 1}
	}
	return map[string]float64{}
}

// SelectAnagrams walks the anagram neighbourhood of a token: every
// index-alphabet/local-alphabet hash delta is applied to the token hash,
// retrieval multiplicities counted, and the stored words within the edit
// distance ceiling scored.
func SelectAnagrams(token string, ctx *Context) map[string]float64 {
	anagrams := make(map[string]float64)
	focus := AlphabetFromWord(token)
	tokenHash := AnagramHash(token)

	retrievals := make(map[int64]int)
	for c := range ctx.Alphabet {
		for f := range focus {
			retrievals[tokenHash+c-f]++
		}
	}

	for hash, count := range retrievals {
		words, ok := ctx.Anagrams[hash]
		if !ok {
			continue
		}
		for word := range words {
			if editDistance(word, token) > ctx.Quantities.AnagramEditCeiling {
				continue
			}
			if score := RateAnagram(ctx.OccurrenceMap, token, word, count); score > 0 {
				anagrams[word] = score
			}
		}
	}

	return anagrams
}

// SelectOCRSims retrieves shape-similar words: each run weight of the
// token's OCR key is perturbed by every nonzero offset from -delta to
// +delta (floored at one), the perturbed
// key rebuilt from the original for every position, and the stored words
// within the edit distance ceiling scored. A word reachable through
// several perturbations keeps its best score.
func SelectOCRSims(token string, ctx *Context) map[string]float64 {
	sims := make(map[string]float64)
	wordKey := OCRKeyHash(token)
	delta := ctx.Quantities.OCRWeightDelta

	type retrieval struct {
		word     string
		cardDiff int
	}
	var retrieved []retrieval
	seen := make(map[string]struct{})

	for i, class := range wordKey {
		for d := -delta; d <= delta; d++ {
			if d == 0 {
				continue
			}
			card := class.Weight + d
			if card < 1 {
				card = 1
			}

			simKey := wordKey.clone()
			simKey[i] = ocrClass{class.Class, card}
			simStr := simKey.String()

			words, ok := ctx.OCRKeys[simStr]
			if !ok {
				continue
			}
			if _, dup := seen[simStr]; dup {
				continue
			}
			seen[simStr] = struct{}{}

			cardDiff := class.Weight - card
			if cardDiff < 0 {
				cardDiff = -cardDiff
			}
			for word := range words {
				if editDistance(word, token) <= ctx.Quantities.OCREditCeiling {
					retrieved = append(retrieved, retrieval{word, cardDiff})
				}
			}
		}
	}

	for _, r := range retrieved {
		if score := RateOCRKey(ctx.OccurrenceMap, token, r.word, r.cardDiff); score > 0 {
			if current, ok := sims[r.word]; !ok || score > current {
				sims[r.word] = score
			}
		}
	}

	return sims
}

// TruncateOCRList keeps at most limit shape candidates, ordered by score
// then by the deterministic closeness tie-break toward the token.
func TruncateOCRList(token string, sims map[string]float64, limit int) map[string]float64 {
	if len(sims) <= limit {
		return sims
	}

	ranked := rankCandidates(token, sims)
	kept := make(map[string]float64, limit)
	for _, word := range ranked[:limit] {
		kept[word] = sims[word]
	}
	return kept
}

// rankCandidates orders candidate words by descending score, then ascending
// edit distance to the token, then the zeroed-lexicographic rule keyed by
// the token's case, then ascending md5 digest.
func rankCandidates(token string, sims map[string]float64) []string {
	words := make([]string, 0, len(sims))
	for word := range sims {
		words = append(words, word)
	}

	preferMax := startsUpper(token)
	sort.Slice(words, func(i, j int) bool {
		a, b := words[i], words[j]
		if sims[a] != sims[b] {
			return sims[a] > sims[b]
		}
		da, db := editDistance(token, a), editDistance(token, b)
		if da != db {
			return da < db
		}
		if cmp := compareZeroed(a, b); cmp != 0 {
			if preferMax {
				return cmp > 0
			}
			return cmp < 0
		}
		return md5Digest(a) < md5Digest(b)
	})
	return words
}

// SplitOCRList divides the surviving shape candidates into the strong top
// slots and the weak rest. When the boundary score is shared, the tied
// words are re-ranked with the deterministic tie-break and redistributed
// so the strong side keeps its width.
func SplitOCRList(token string, sims map[string]float64, threshold int) (strong, weak map[string]float64) {
	ranked := rankCandidates(token, sims)

	strong = make(map[string]float64, threshold)
	weak = make(map[string]float64, len(ranked)-threshold)
	for i, word := range ranked {
		if i < threshold {
			strong[word] = sims[word]
		} else {
			weak[word] = sims[word]
		}
	}

	// rankCandidates already orders boundary ties deterministically, so
	// the rebalancing pass of the score-shared case is folded into the
	// single sort.
	return strong, weak
}

// BuildCandidates fuses the anagram and shape candidate sets. Strong shape
// candidates already present multiply into the anagram score; every other
// shape candidate joins with the single-retrieval anagram rate times the
// zero-perturbation shape rate.
func BuildCandidates(token string, anagrams, sims map[string]float64, ctx *Context) map[string]float64 {
	final := make(map[string]float64, len(anagrams)+len(sims))
	for word, score := range anagrams {
		final[word] = score
	}

	ocrList := TruncateOCRList(token, sims, ctx.Quantities.OCRTruncationCap)

	strong := ocrList
	var weak map[string]float64
	if len(ocrList) > ctx.Quantities.OCRSplitThreshold {
		strong, weak = SplitOCRList(token, ocrList, ctx.Quantities.OCRSplitThreshold)
	}

	rest := make(map[string]float64, len(strong)+len(weak))
	for word, score := range strong {
		if _, ok := final[word]; ok {
			final[word] *= score
		} else {
			rest[word] = score
		}
	}
	for word, score := range weak {
		rest[word] = score
	}

	for word := range rest {
		if _, ok := final[word]; !ok {
			final[word] = RateAnagram(ctx.OccurrenceMap, token, word, 1) *
				RateOCRKey(ctx.OccurrenceMap, token, word, 0)
		}
	}

	return final
}

func startsUpper(word string) bool {
	return word != "" && word[0] >= 'A' && word[0] <= 'Z'
}
