package features

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lab/denoiser/internal/inline"
	"github.com/lab/denoiser/internal/text"
)

func testDocument(t *testing.T) *text.Document {
	t.Helper()
	doc, err := text.ReadText("test.txt", strings.NewReader(
		"plain words on a line\nmore plain words here\nnoise #### 1234\n"))
	require.NoError(t, err)
	return doc
}

func TestExtractLength(t *testing.T) {
	doc := testDocument(t)
	unigrams := inline.Counter{"plain": 4, "words": 3}

	doc.Lines(func(line *text.Line) {
		vector := Extract(line, unigrams, doc.Stats)
		assert.Len(t, vector, VectorLen)
	})
}

func TestExtractDeterministic(t *testing.T) {
	doc := testDocument(t)
	unigrams := inline.Counter{"plain": 4, "words": 3, "noise": 1}

	var first [][]float64
	doc.Lines(func(line *text.Line) {
		first = append(first, Extract(line, unigrams, doc.Stats))
	})

	for round := 0; round < 5; round++ {
		i := 0
		doc.Lines(func(line *text.Line) {
			assert.Equal(t, first[i], Extract(line, unigrams, doc.Stats))
			i++
		})
	}
}

func TestExtractCharFractionsSumToOne(t *testing.T) {
	doc := testDocument(t)
	unigrams := inline.Counter{}

	doc.Lines(func(line *text.Line) {
		vector := Extract(line, unigrams, doc.Stats)

		// After the lift drops entry five, the four original char
		// fractions sit at indices 5..8.
		sum := vector[5] + vector[6] + vector[7] + vector[8]
		assert.InDelta(t, 1.0, sum, 1e-9)
	})
}

func TestExtractUsesCorrections(t *testing.T) {
	doc := testDocument(t)
	unigrams := inline.Counter{"plain": 4, "words": 6}

	var lines []*text.Line
	doc.Lines(func(line *text.Line) { lines = append(lines, line) })

	base := Extract(lines[0], unigrams, doc.Stats)

	lines[0].Tokens[0].Corrections = text.Corrections{"plain": 1}
	withCorrections := Extract(lines[0], unigrams, doc.Stats)

	assert.NotEqual(t, base, withCorrections)
}
