package inline

import (
	"regexp"
	"strings"

	"github.com/lab/denoiser/internal/text"
)

// Default prune rates for the two n-gram structures.
const (
	UnigramPruneRate = 0.70
	BigramPruneRate  = 0.35
)

var alphabetPattern = regexp.MustCompile(`^[a-zA-Z '-]+$`)

// Unigrams counts observed words: the raw casings, the case-folded
// aggregate and its pruned subset.
type Unigrams struct {
	Raw          Counter `json:"raw_unigrams"`
	Folded       Counter `json:"unigrams"`
	FoldedPruned Counter `json:"unigrams_pruned"`
}

// NewUnigrams returns an empty unigram structure.
func NewUnigrams() *Unigrams {
	return &Unigrams{Raw: Counter{}, Folded: Counter{}, FoldedPruned: Counter{}}
}

// CollectCandidates lists the document tokens eligible for the indices:
// cleaned forms longer than one character, taken from lines not already
// graded garbage, in document order.
func CollectCandidates(doc *text.Document) []string {
	var candidates []string
	doc.Lines(func(line *text.Line) {
		if line.Grade == text.GradeGarbage {
			return
		}
		for _, token := range line.Tokens {
			if len(token.Cleaned) > 1 {
				candidates = append(candidates, token.Cleaned)
			}
		}
	})
	return candidates
}

// Append accumulates candidate unigrams into the raw-casing counter.
func (u *Unigrams) Append(candidates []string) {
	for _, candidate := range candidates {
		u.Raw[candidate]++
	}
}

// FoldCase derives the folded counter: the count of a lowercased key is the
// sum over the raw counts of its observed casings.
func (u *Unigrams) FoldCase(altCase map[string]StringSet) {
	folded := make(Counter, len(altCase))
	for key, casings := range altCase {
		total := 0
		for casing := range casings {
			total += u.Raw[casing]
		}
		folded[key] = total
	}
	u.Folded = folded
}

// Prune recomputes the pruned subset of the folded counter.
func (u *Unigrams) Prune(rate float64) {
	u.FoldedPruned = Prune(u.Folded, rate)
}

// Bigrams counts lowercased adjacent word pairs and their pruned subset.
type Bigrams struct {
	Folded       Counter `json:"bigrams"`
	FoldedPruned Counter `json:"bigrams_pruned"`
}

// NewBigrams returns an empty bigram structure.
func NewBigrams() *Bigrams {
	return &Bigrams{Folded: Counter{}, FoldedPruned: Counter{}}
}

// Append counts the adjacent pairs of the candidate stream, lowercased and
// joined by one space. Only words of two or more characters pair up.
func (b *Bigrams) Append(candidates []string) {
	for i := 0; i+1 < len(candidates); i++ {
		if len(candidates[i]) > 1 && len(candidates[i+1]) > 1 {
			b.Folded[lower(candidates[i])+" "+lower(candidates[i+1])]++
		}
	}
}

// Prune recomputes the pruned subset.
func (b *Bigrams) Prune(rate float64) {
	b.FoldedPruned = Prune(b.Folded, rate)
}

// AltCaseMap maps each lowercased word to the set of casings it was
// observed under.
type AltCaseMap struct {
	Full   map[string]StringSet `json:"altcase"`
	Pruned map[string]StringSet `json:"altcase_pruned"`
}

// NewAltCaseMap returns an empty case-variant map.
func NewAltCaseMap() *AltCaseMap {
	return &AltCaseMap{Full: map[string]StringSet{}, Pruned: map[string]StringSet{}}
}

// FromRaw rebuilds the full map from a raw-casing counter.
func (m *AltCaseMap) FromRaw(raw Counter) {
	full := make(map[string]StringSet, len(raw))
	for casing := range raw {
		key := lower(casing)
		if full[key] == nil {
			full[key] = StringSet{}
		}
		full[key].Add(casing)
	}
	m.Full = full
}

// Merge unions another map's casings into the full map.
func (m *AltCaseMap) Merge(other *AltCaseMap) {
	for key, casings := range other.Full {
		if m.Full[key] == nil {
			m.Full[key] = StringSet{}
		}
		for casing := range casings {
			m.Full[key].Add(casing)
		}
	}
}

// Prune restricts the pruned map to the keys of the pruned unigrams.
func (m *AltCaseMap) Prune(unigramsPruned Counter) {
	pruned := make(map[string]StringSet, len(unigramsPruned))
	for key := range unigramsPruned {
		if casings, ok := m.Full[key]; ok {
			pruned[key] = casings
		}
	}
	m.Pruned = pruned
}

// OCRKeyMap maps the serialised OCR shape of a dictionary word to the words
// carrying it.
type OCRKeyMap struct {
	Map map[string]StringSet `json:"ocrkeys"`
}

// NewOCRKeyMap returns an empty shape map.
func NewOCRKeyMap() *OCRKeyMap {
	return &OCRKeyMap{Map: map[string]StringSet{}}
}

// Append indexes every folded unigram present in the external word list
// under its OCR shape.
func (m *OCRKeyMap) Append(folded Counter, wordList StringSet) {
	for word := range folded {
		if !wordList.Has(word) {
			continue
		}
		key := OCRKeyHash(word).String()
		if m.Map[key] == nil {
			m.Map[key] = StringSet{}
		}
		m.Map[key].Add(word)
	}
}

// AnagramMap maps anagram hashes to the words sharing them, next to the
// character-delta alphabet used for neighbourhood lookups.
type AnagramMap struct {
	Hashmap  map[int64]StringSet `json:"hashmap"`
	Alphabet HashSet             `json:"alphabet"`
}

// NewAnagramMap returns an empty anagram map.
func NewAnagramMap() *AnagramMap {
	return &AnagramMap{Hashmap: map[int64]StringSet{}, Alphabet: HashSet{}}
}

// Rebuild reindexes the pruned unigram and bigram keys by anagram hash and
// recomputes the alphabet from the unigram keys: every single character and
// adjacent pair of the space-padded word matching [a-zA-Z '-], hashed, plus
// zero.
func (m *AnagramMap) Rebuild(bigramsPruned, unigramsPruned Counter) {
	hashmap := make(map[int64]StringSet)
	index := func(word string) {
		hash := AnagramHash(word)
		if hashmap[hash] == nil {
			hashmap[hash] = StringSet{}
		}
		hashmap[hash].Add(word)
	}
	for word := range bigramsPruned {
		index(word)
	}
	for word := range unigramsPruned {
		index(word)
	}
	m.Hashmap = hashmap

	alphabet := HashSet{}
	for word := range unigramsPruned {
		for hash := range AlphabetFromWord(word) {
			alphabet.Add(hash)
		}
	}
	alphabet.Add(0)
	m.Alphabet = alphabet
}

// AlphabetFromWord hashes the single characters and adjacent pairs of the
// space-padded word, keeping those matching the anagram alphabet pattern,
// and always includes zero.
func AlphabetFromWord(word string) HashSet {
	padded := " " + word + " "

	chars := NewStringSet()
	for _, r := range padded {
		chars.Add(string(r))
	}
	runes := []rune(padded)
	for i := 0; i+1 < len(runes); i++ {
		chars.Add(string(runes[i]) + string(runes[i+1]))
	}

	alphabet := HashSet{}
	alphabet.Add(0)
	for seq := range chars {
		if alphabetPattern.MatchString(seq) {
			alphabet.Add(AnagramHash(seq))
		}
	}
	return alphabet
}

// Dictionary is the sorted set of accepted words: the external word list
// intersected with the observed unigrams.
type Dictionary struct {
	Words StringSet `json:"dictionary"`
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{Words: StringSet{}}
}

// Rebuild intersects the external word list with the unigram keys.
func (d *Dictionary) Rebuild(unigrams Counter, wordList StringSet) {
	words := StringSet{}
	for word := range unigrams {
		if wordList.Has(word) {
			words.Add(word)
		}
	}
	d.Words = words
}

func lower(s string) string { return strings.ToLower(s) }
