package inline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() *Context {
	return &Context{
		OccurrenceMap: Counter{},
		AltCase:       map[string]StringSet{},
		OCRKeys:       map[string]StringSet{},
		Anagrams:      map[int64]StringSet{},
		Alphabet:      HashSet{},
		Dictionary:    StringSet{},
		Quantities:    DefaultQuantities(),
	}
}

func TestInitCorrectionMapDictionaryHit(t *testing.T) {
	dictionary := NewStringSet("hello", "world")

	assert.Equal(t, map[string]float64{"hello": 1}, InitCorrectionMap("hello", dictionary))
	assert.Equal(t, map[string]float64{"world": 1}, InitCorrectionMap("world", dictionary))
	assert.Nil(t, InitCorrectionMap("", dictionary))

	// Short tokens short-circuit without a dictionary hit.
	assert.Equal(t, map[string]float64{"ab": 1}, InitCorrectionMap("ab", dictionary))

	// Unknown long tokens wait for candidates.
	m := InitCorrectionMap("wrold", dictionary)
	require.NotNil(t, m)
	assert.Empty(t, m)
}

func TestSelectOCRSimsFindsShapeNeighbour(t *testing.T) {
	// Classic digit confusion: "b00k" and "book" share the shape o3i1,
	// reached through the zero-clamped weight perturbation.
	ctx := testContext()
	ctx.OccurrenceMap = Counter{"book": 10}
	ctx.OCRKeys[OCRKeyHash("book").String()] = NewStringSet("book")

	sims := SelectOCRSims("b00k", ctx)

	require.Contains(t, sims, "book")
	assert.Positive(t, sims["book"])
}

func TestSelectAnagramsFindsTransposition(t *testing.T) {
	ctx := testContext()
	ctx.OccurrenceMap = Counter{"listen": 5}
	ctx.Anagrams[AnagramHash("listen")] = NewStringSet("listen")
	ctx.Alphabet.Add(0)

	anagrams := SelectAnagrams("litsen", ctx)

	require.Contains(t, anagrams, "listen")
	assert.Positive(t, anagrams["listen"])
}

func TestSelectAnagramsHonorsEditCeiling(t *testing.T) {
	ctx := testContext()
	ctx.OccurrenceMap = Counter{"abcdefgh": 5}
	ctx.Anagrams[AnagramHash("hgfedcba")] = NewStringSet("abcdefgh")
	ctx.Alphabet.Add(0)

	// Same hash, but the reversal is more than three edits away.
	assert.Empty(t, SelectAnagrams("hgfedcba", ctx))
}

func TestTruncateOCRListKeepsTopScores(t *testing.T) {
	sims := map[string]float64{}
	for i, word := range []string{"aa", "bb", "cc", "dd", "ee", "ff", "gg", "hh", "ii", "jj", "kk", "ll"} {
		sims[word] = float64(i)
	}

	kept := TruncateOCRList("zz", sims, 10)

	assert.Len(t, kept, 10)
	assert.NotContains(t, kept, "aa")
	assert.NotContains(t, kept, "bb")
	assert.Contains(t, kept, "ll")
}

func TestTruncateOCRListUnderLimitUntouched(t *testing.T) {
	sims := map[string]float64{"aa": 1, "bb": 2}
	assert.Equal(t, sims, TruncateOCRList("zz", sims, 10))
}

func TestSplitOCRListWidths(t *testing.T) {
	sims := map[string]float64{
		"aa": 9, "bb": 8, "cc": 7, "dd": 6, "ee": 5, "ff": 4, "gg": 3,
	}

	strong, weak := SplitOCRList("zz", sims, 5)

	assert.Len(t, strong, 5)
	assert.Len(t, weak, 2)
	assert.Contains(t, strong, "aa")
	assert.Contains(t, weak, "gg")
}

func TestSplitOCRListBoundaryTieDeterministic(t *testing.T) {
	sims := map[string]float64{
		"aa": 9, "bb": 8, "cc": 7, "dd": 5, "ee": 5, "ff": 5, "gg": 5,
	}

	strong1, weak1 := SplitOCRList("dd", sims, 5)
	for i := 0; i < 10; i++ {
		strong2, weak2 := SplitOCRList("dd", sims, 5)
		assert.Equal(t, strong1, strong2)
		assert.Equal(t, weak1, weak2)
	}
	assert.Len(t, strong1, 5)
	assert.Len(t, weak1, 2)
}

func TestBuildCandidatesMultipliesSharedWords(t *testing.T) {
	ctx := testContext()
	anagrams := map[string]float64{"word": 2, "only": 3}
	sims := map[string]float64{"word": 4}

	final := BuildCandidates("word", anagrams, sims, ctx)

	assert.Equal(t, 8.0, final["word"])
	assert.Equal(t, 3.0, final["only"])
}

func TestBuildCandidatesFusesLonelyOCRWords(t *testing.T) {
	ctx := testContext()
	ctx.OccurrenceMap = Counter{"book": 10}

	final := BuildCandidates("b00k", map[string]float64{}, map[string]float64{"book": 5}, ctx)

	require.Contains(t, final, "book")
	expected := RateAnagram(ctx.OccurrenceMap, "b00k", "book", 1) *
		RateOCRKey(ctx.OccurrenceMap, "b00k", "book", 0)
	assert.Equal(t, expected, final["book"])
}
