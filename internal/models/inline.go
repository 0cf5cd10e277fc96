// Package models wires the three correction passes — inline, indicator
// and learning — over the shared model store.
package models

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/lab/denoiser/internal/inline"
	"github.com/lab/denoiser/internal/store"
	"github.com/lab/denoiser/internal/text"
)

// Inline owns the spelling-correction indices.
type Inline struct {
	Dictionary *inline.Dictionary
	Unigrams   *inline.Unigrams
	Bigrams    *inline.Bigrams
	AltCase    *inline.AltCaseMap
	OCRKeys    *inline.OCRKeyMap
	Anagrams   *inline.AnagramMap

	store        *store.Store
	wordListPath string
	quantities   inline.Quantities
	log          *zap.Logger
}

// NewInline loads the inline structures from the store, starting empty for
// any missing artefact.
func NewInline(st *store.Store, wordListPath string, quantities inline.Quantities, log *zap.Logger) (*Inline, error) {
	m := &Inline{
		Dictionary:   inline.NewDictionary(),
		Unigrams:     inline.NewUnigrams(),
		Bigrams:      inline.NewBigrams(),
		AltCase:      inline.NewAltCaseMap(),
		OCRKeys:      inline.NewOCRKeyMap(),
		Anagrams:     inline.NewAnagramMap(),
		store:        st,
		wordListPath: wordListPath,
		quantities:   quantities,
		log:          log,
	}

	for _, blob := range []struct {
		name string
		v    any
	}{
		{store.BlobDictionary, m.Dictionary},
		{store.BlobUnigrams, m.Unigrams},
		{store.BlobBigrams, m.Bigrams},
		{store.BlobCaseMap, m.AltCase},
		{store.BlobOCRKeys, m.OCRKeys},
		{store.BlobAnagrams, m.Anagrams},
	} {
		if err := st.Load(blob.name, blob.v); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	return m, nil
}

// Ingest folds a document into the indices and persists every structure.
// Documents already recorded in the ingest ledger are skipped.
func (m *Inline) Ingest(doc *text.Document) error {
	ingested, err := recordIngest(m.store, doc.Checksum)
	if err != nil {
		return err
	}
	if ingested {
		m.log.Debug("document already ingested, skipping", zap.String("file", doc.Filename))
		return nil
	}

	wordList, err := m.loadWordList()
	if err != nil {
		return err
	}

	candidates := inline.CollectCandidates(doc)

	docUnigrams := inline.NewUnigrams()
	docUnigrams.Append(candidates)

	m.Bigrams.Append(candidates)

	docAltCase := inline.NewAltCaseMap()
	docAltCase.FromRaw(docUnigrams.Raw)
	docUnigrams.FoldCase(docAltCase.Full)

	m.OCRKeys.Append(docUnigrams.Folded, wordList)

	m.Unigrams.Raw.Update(docUnigrams.Raw)
	m.Unigrams.Folded.Update(docUnigrams.Folded)
	m.Unigrams.Prune(m.quantities.UnigramPruneRate)
	m.Bigrams.Prune(m.quantities.BigramPruneRate)

	m.AltCase.Merge(docAltCase)
	m.AltCase.Prune(m.Unigrams.FoldedPruned)

	m.Anagrams.Rebuild(m.Bigrams.FoldedPruned, m.Unigrams.FoldedPruned)
	m.Dictionary.Rebuild(m.Unigrams.FoldedPruned, wordList)

	if err := m.persist(); err != nil {
		return err
	}

	m.log.Info("inline structures updated",
		zap.String("file", doc.Filename),
		zap.Int("unigrams", len(m.Unigrams.Folded)),
		zap.Int("bigrams", len(m.Bigrams.Folded)),
	)
	return nil
}

func (m *Inline) persist() error {
	for _, blob := range []struct {
		name string
		v    any
	}{
		{store.BlobDictionary, m.Dictionary},
		{store.BlobUnigrams, m.Unigrams},
		{store.BlobBigrams, m.Bigrams},
		{store.BlobCaseMap, m.AltCase},
		{store.BlobOCRKeys, m.OCRKeys},
		{store.BlobAnagrams, m.Anagrams},
	} {
		if err := m.store.Save(blob.name, blob.v); err != nil {
			return err
		}
	}
	return nil
}

// Context assembles the read-only correction context over the loaded
// indices.
func (m *Inline) Context() *inline.Context {
	return &inline.Context{
		OccurrenceMap: inline.Combined(m.Unigrams.Folded, m.Bigrams.Folded),
		AltCase:       m.AltCase.Full,
		OCRKeys:       m.OCRKeys.Map,
		Anagrams:      m.Anagrams.Hashmap,
		Alphabet:      m.Anagrams.Alphabet,
		Dictionary:    m.Dictionary.Words,
		Quantities:    m.quantities,
	}
}

// Correct annotates every token of the document with its resolved
// correction map: candidate generation and case restoration, the
// paragraph-wide bigram boost, then normalisation into a probability
// distribution and final selection down to a single winner. Normalising
// after the boost keeps dictionary hits and other single candidates at
// exactly one.
func (m *Inline) Correct(doc *text.Document) error {
	ctx := m.Context()

	for _, paragraph := range doc.Paragraphs {
		for _, line := range paragraph {
			for _, token := range line.Tokens {
				token.Corrections = inline.InitCorrectionMap(token.Cleaned, ctx.Dictionary)
				if token.Corrections == nil || len(token.Corrections) != 0 {
					continue
				}

				anagrams := inline.SelectAnagrams(token.Cleaned, ctx)
				sims := inline.SelectOCRSims(token.Cleaned, ctx)

				candidates := inline.BuildCandidates(token.Cleaned, anagrams, sims, ctx)
				candidates, err := inline.CorrectCase(token.Cleaned, candidates, ctx)
				if err != nil {
					return fmt.Errorf("correcting %q: %w", token.Original, err)
				}

				token.Corrections = candidates
				if len(token.Corrections) == 0 {
					token.Corrections = nil
				}
			}
		}

		inline.ApplyBigramBoost(paragraph, ctx.OccurrenceMap)

		for _, line := range paragraph {
			for _, token := range line.Tokens {
				if token.Corrections != nil {
					token.Corrections = inline.Normalize(token.Corrections)
				}

				selected, err := inline.SelectCorrection(token.Cleaned, token.Corrections, ctx.Quantities)
				if err != nil {
					return fmt.Errorf("selecting for %q: %w", token.Original, err)
				}
				token.Corrections = selected

				if len(token.Corrections) > 1 {
					if err := m.downselect(token); err != nil {
						return err
					}
				}
			}
		}
	}

	return nil
}

// downselect reduces a surviving multi-candidate map to one winner: the
// top score, then the closest by edit distance, then the alphabetical
// rule.
func (m *Inline) downselect(token *text.Token) error {
	maxScore := 0.0
	for _, score := range token.Corrections {
		if score > maxScore {
			maxScore = score
		}
	}

	var top []string
	for candidate, score := range token.Corrections {
		if score == maxScore {
			top = append(top, candidate)
		}
	}

	if len(top) != 1 {
		top = inline.SelectLowerEditDistance(token.Cleaned, top)
	}
	if len(top) != 1 {
		best, err := inline.BestAlphabetical(token.Cleaned, top)
		if err != nil {
			return fmt.Errorf("downselecting %q: %w", token.Original, err)
		}
		top = []string{best}
	}

	token.Corrections = map[string]float64{top[0]: token.Corrections[top[0]]}
	return nil
}

// loadWordList reads the external newline-separated word list.
func (m *Inline) loadWordList() (inline.StringSet, error) {
	f, err := os.Open(m.wordListPath)
	if err != nil {
		return nil, fmt.Errorf("models: opening word list: %w", err)
	}
	defer f.Close()

	words := inline.StringSet{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if word := strings.TrimRight(scanner.Text(), "\r\n"); word != "" {
			words.Add(word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("models: reading word list: %w", err)
	}
	return words, nil
}

// recordIngest notes a document checksum in the ingest ledger, reporting
// whether it was already present.
func recordIngest(st *store.Store, checksum string) (bool, error) {
	hashes := inline.StringSet{}
	if err := st.Load(store.BlobHashes, &hashes); err != nil && !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	if hashes.Has(checksum) {
		return true, nil
	}

	hashes.Add(checksum)
	return false, st.Save(store.BlobHashes, hashes)
}
