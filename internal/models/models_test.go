package models

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lab/denoiser/internal/inline"
	"github.com/lab/denoiser/internal/store"
	"github.com/lab/denoiser/internal/text"
)

func testInline(t *testing.T, wordList []string) *Inline {
	t.Helper()

	dir := t.TempDir()
	wordListPath := filepath.Join(dir, "words.dict")
	require.NoError(t, os.WriteFile(wordListPath, []byte(strings.Join(wordList, "\n")+"\n"), 0o644))

	st, err := store.Open(filepath.Join(dir, "models.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	m, err := NewInline(st, wordListPath, inline.DefaultQuantities(), zap.NewNop())
	require.NoError(t, err)
	return m
}

func parse(t *testing.T, content string) *text.Document {
	t.Helper()
	doc, err := text.ReadText("doc.txt", strings.NewReader(content))
	require.NoError(t, err)
	return doc
}

func corrections(doc *text.Document) []map[string]float64 {
	var out []map[string]float64
	doc.Lines(func(line *text.Line) {
		for _, token := range line.Tokens {
			out = append(out, token.Corrections)
		}
	})
	return out
}

func TestDictionaryFixedPoint(t *testing.T) {
	m := testInline(t, []string{"hello", "world"})
	m.Dictionary.Words = inline.NewStringSet("hello", "world")

	doc := parse(t, "hello world\n")
	require.NoError(t, m.Correct(doc))

	assert.Equal(t, []map[string]float64{
		{"hello": 1},
		{"world": 1},
	}, corrections(doc))
}

func TestOCRKeyCorrectionScenario(t *testing.T) {
	m := testInline(t, []string{"book"})
	m.Unigrams.Folded = inline.Counter{"book": 10}
	m.OCRKeys.Map[inline.OCRKeyHash("book").String()] = inline.NewStringSet("book")
	m.Dictionary.Words = inline.NewStringSet("book")

	doc := parse(t, "b00k\n")
	require.NoError(t, m.Correct(doc))

	assert.Equal(t, []map[string]float64{
		{"book": 1},
	}, corrections(doc))
}

func TestAnagramCorrectionScenario(t *testing.T) {
	m := testInline(t, []string{"listen"})
	m.Unigrams.Folded = inline.Counter{"listen": 5}
	m.Anagrams.Hashmap[inline.AnagramHash("listen")] = inline.NewStringSet("listen")
	m.Anagrams.Alphabet.Add(0)
	m.Dictionary.Words = inline.NewStringSet("listen")

	doc := parse(t, "litsen\n")
	require.NoError(t, m.Correct(doc))

	assert.Equal(t, []map[string]float64{
		{"listen": 1},
	}, corrections(doc))
}

func TestCorrectDeterministic(t *testing.T) {
	content := "th3 quick br0wn f0x\njumps 0ver the lazy d0g\n"
	wordList := []string{"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog"}

	run := func() []map[string]float64 {
		m := testInline(t, wordList)
		train := parse(t, strings.Repeat("the quick brown fox jumps over the lazy dog\n", 3))
		require.NoError(t, m.Ingest(train))

		doc := parse(t, content)
		require.NoError(t, m.Correct(doc))
		return corrections(doc)
	}

	first := run()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, run())
	}
}

func TestCorrectionScoresNormalised(t *testing.T) {
	m := testInline(t, []string{"the", "quick", "brown", "fox"})
	train := parse(t, strings.Repeat("the quick brown fox\nthe quick brown fox\n", 4))
	require.NoError(t, m.Ingest(train))

	doc := parse(t, "th3 qu1ck brown f0x\n")
	require.NoError(t, m.Correct(doc))

	// Selection always settles on one winner whose normalised score
	// stays inside (0, 1].
	doc.Lines(func(line *text.Line) {
		for _, token := range line.Tokens {
			if token.Corrections == nil {
				continue
			}
			require.Len(t, token.Corrections, 1, "winner for %q", token.Original)
			for _, score := range token.Corrections {
				assert.Greater(t, score, 0.0, "score for %q", token.Original)
				assert.LessOrEqual(t, score, 1.0, "score for %q", token.Original)
			}
		}
	})
}

func TestIngestIdempotent(t *testing.T) {
	m := testInline(t, []string{"repeat", "words"})

	doc := parse(t, "repeat words repeat words\n")
	require.NoError(t, m.Ingest(doc))
	rawAfterFirst := len(m.Unigrams.Raw)
	countAfterFirst := m.Unigrams.Raw["repeat"]

	// The same content parses to the same checksum: nothing changes.
	again := parse(t, "repeat words repeat words\n")
	require.NoError(t, m.Ingest(again))

	assert.Equal(t, rawAfterFirst, len(m.Unigrams.Raw))
	assert.Equal(t, countAfterFirst, m.Unigrams.Raw["repeat"])
}

func TestIngestBuildsStructures(t *testing.T) {
	m := testInline(t, []string{"brown", "quick"})

	doc := parse(t, strings.Repeat("The Quick brown quick\n", 2))
	require.NoError(t, m.Ingest(doc))

	assert.Equal(t, 2, m.Unigrams.Raw["Quick"])
	assert.Equal(t, 2, m.Unigrams.Raw["quick"])
	assert.Equal(t, 4, m.Unigrams.Folded["quick"])
	assert.Contains(t, m.AltCase.Full["quick"], "Quick")
	assert.Contains(t, m.AltCase.Full["quick"], "quick")
	assert.NotEmpty(t, m.Bigrams.Folded)
	assert.Contains(t, m.Dictionary.Words, "quick")
	assert.Contains(t, m.OCRKeys.Map[inline.OCRKeyHash("quick").String()], "quick")
	assert.True(t, m.Anagrams.Alphabet.Has(0))
}

func TestIngestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	wordListPath := filepath.Join(dir, "words.dict")
	require.NoError(t, os.WriteFile(wordListPath, []byte("persist\nwords\n"), 0o644))
	storePath := filepath.Join(dir, "models.db")

	st, err := store.Open(storePath)
	require.NoError(t, err)
	m, err := NewInline(st, wordListPath, inline.DefaultQuantities(), zap.NewNop())
	require.NoError(t, err)

	doc := parse(t, "persist words persist words\n")
	require.NoError(t, m.Ingest(doc))
	folded := m.Unigrams.Folded
	require.NoError(t, st.Close())

	st, err = store.Open(storePath)
	require.NoError(t, err)
	defer st.Close()
	reloaded, err := NewInline(st, wordListPath, inline.DefaultQuantities(), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, folded, reloaded.Unigrams.Folded)
	assert.Equal(t, m.Dictionary.Words, reloaded.Dictionary.Words)
}
