package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTextParagraphs(t *testing.T) {
	input := "first line\nsecond line\n\nthird line\n\n\nfourth line\n"
	doc, err := ReadText("in.txt", strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, doc.Paragraphs, 3)
	assert.Len(t, doc.Paragraphs[0], 2)
	assert.Len(t, doc.Paragraphs[1], 1)
	assert.Len(t, doc.Paragraphs[2], 1)
	assert.False(t, doc.Labelled)
}

func TestReadTextStats(t *testing.T) {
	doc, err := ReadText("in.txt", strings.NewReader("ab cd\nefgh\n"))
	require.NoError(t, err)

	assert.Equal(t, 2.0, doc.Stats.MustGet(StatLineNb))
	assert.Equal(t, 9.0, doc.Stats.MustGet(StatLineTotalLength))
	assert.Equal(t, 4.5, doc.Stats.MustGet(StatLineAvgLength))
	assert.Equal(t, 3.0, doc.Stats.MustGet(StatWordTotalNb))
	assert.Equal(t, 1.5, doc.Stats.MustGet(StatWordAvgNb))
	assert.Equal(t, 8.0, doc.Stats.MustGet(StatWordTotalLength))
	assert.InDelta(t, 8.0/3.0, doc.Stats.MustGet(StatWordAvgLength), 1e-12)
}

func TestReadTextChecksumStable(t *testing.T) {
	one, err := ReadText("a.txt", strings.NewReader("same content\n"))
	require.NoError(t, err)
	two, err := ReadText("b.txt", strings.NewReader("same content\n"))
	require.NoError(t, err)
	other, err := ReadText("c.txt", strings.NewReader("different content\n"))
	require.NoError(t, err)

	assert.Equal(t, one.Checksum, two.Checksum)
	assert.NotEqual(t, one.Checksum, other.Checksum)
	assert.Len(t, one.Checksum, 64)
}

func TestReadTextEmptyInput(t *testing.T) {
	_, err := ReadText("empty.txt", strings.NewReader(""))
	assert.Error(t, err)
}

func TestReadCSVLabels(t *testing.T) {
	input := "good line,1\nbad line,0\n"
	doc, err := ReadCSV("in.csv", strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, doc.Paragraphs, 1)
	require.Len(t, doc.Paragraphs[0], 2)
	assert.True(t, doc.Labelled)
	assert.Equal(t, 1, doc.Paragraphs[0][0].Expected)
	assert.Equal(t, 0, doc.Paragraphs[0][1].Expected)
}

func TestCollectLineGroups(t *testing.T) {
	doc, err := ReadText("in.txt", strings.NewReader("one two\nthree four\n\nfive six\n"))
	require.NoError(t, err)

	var lines []*Line
	doc.Lines(func(line *Line) { lines = append(lines, line) })
	require.Len(t, lines, 3)

	lines[0].SetClean()
	lines[1].SetGarbage()
	// lines[2] stays unclassified.

	assert.Equal(t, []string{"one two", ""}, doc.CleanLines())
	assert.Equal(t, []string{"three four", ""}, doc.GarbageLines())
	assert.Equal(t, []string{"five six", ""}, doc.UnclassifiedLines())
}

func TestEvaluate(t *testing.T) {
	input := "good,1\nbad,0\nmissed,1\n"
	doc, err := ReadCSV("in.csv", strings.NewReader(input))
	require.NoError(t, err)

	var lines []*Line
	doc.Lines(func(line *Line) { lines = append(lines, line) })
	require.Len(t, lines, 3)

	lines[0].SetClean()   // expected clean: true negative
	lines[1].SetGarbage() // expected garbage: true positive
	lines[2].SetGarbage() // expected clean: false positive

	eval := doc.Evaluate()
	assert.Equal(t, 3, eval.Classes.Classified)
	assert.Equal(t, 1, eval.Confusion.TruePositive)
	assert.Equal(t, 1, eval.Confusion.FalsePositive)
	assert.Equal(t, 1, eval.Confusion.TrueNegative)
	assert.InDelta(t, 0.5, eval.Precision, 1e-12)
	assert.InDelta(t, 1.0, eval.Recall, 1e-12)
	assert.InDelta(t, 2.0/3.0, eval.F1, 1e-12)
}
