// Package features turns a graded line into the fixed-length numeric
// vector the line classifier consumes.
package features

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/lab/denoiser/internal/inline"
	"github.com/lab/denoiser/internal/text"
)

// VectorLen is the length of the final feature vector.
const VectorLen = 13

// canonicalOrder reorders the normalised raw features before the
// polynomial lift. Its entries index the normalised vector built in
// Extract; in raw feature positions they read 11, 12, 9, 10, 13, 14, 0, 1,
// 2, 3, 4, 5, 6, 7.
var canonicalOrder = [...]int{12, 10, 8, 11, 15, 13, 0, 1, 2, 3, 9, 4, 5, 6}

// droppedIndex is removed from the lifted vector.
const droppedIndex = 5

// Extract computes the feature vector of a line from its statistics, the
// folded unigram counter and the document statistics.
func Extract(line *text.Line, unigrams inline.Counter, docStats *text.Statistics) []float64 {
	orig := line.OrigStats()
	clean := line.CleanStats()

	raw := []float64{
		orig.MustGet(text.StatLowerChars),
		orig.MustGet(text.StatUpperChars),
		orig.MustGet(text.StatSpecialChars),
		orig.MustGet(text.StatNumberChars),
		float64(len(line.Tokens)),
		clean.MustGet(text.StatLowerChars),
		clean.MustGet(text.StatUpperChars),
		clean.MustGet(text.StatSpecialChars),
		clean.MustGet(text.StatNumberChars),
		line.Score(),
		float64(len(line.OrigLine())),
		float64(len(line.CleanLine())),
		meanTokenLength(line),
		meanOriginalFrequency(line, unigrams),
		meanCleanedFrequency(line, unigrams),
		meanCorrectedFrequency(line, unigrams),
	}

	origChars := raw[0] + raw[1] + raw[2] + raw[3]
	cleanChars := raw[5] + raw[6] + raw[7] + raw[8]

	normalized := make([]float64, 0, 16)
	normalized = append(normalized,
		raw[0]/origChars,
		raw[1]/origChars,
		raw[2]/origChars,
		raw[3]/origChars,
	)
	if cleanChars != 0 {
		normalized = append(normalized,
			raw[5]/cleanChars,
			raw[6]/cleanChars,
			raw[7]/cleanChars,
			raw[8]/cleanChars,
		)
	} else {
		normalized = append(normalized, 0, 0, 0, 0)
	}
	normalized = append(normalized,
		raw[9],
		raw[4]/docStats.MustGet(text.StatWordAvgNb),
		raw[12]/docStats.MustGet(text.StatWordAvgLength),
		raw[10]/docStats.MustGet(text.StatLineAvgLength),
		raw[11]/docStats.MustGet(text.StatLineAvgLength),
	)
	if raw[13] != 0 {
		normalized = append(normalized, raw[14]/raw[13], raw[15]/raw[13])
	} else {
		normalized = append(normalized, 0, 0)
	}
	normalized = append(normalized, raw[13])

	ordered := make([]float64, len(canonicalOrder))
	for i, idx := range canonicalOrder {
		ordered[i] = normalized[idx]
	}

	// Degree-one polynomial lift: the coefficient vector is the ordered
	// vector itself, minus the dropped entry.
	lifted := make([]float64, 0, VectorLen)
	for i, value := range ordered {
		if i == droppedIndex {
			continue
		}
		lifted = append(lifted, value)
	}
	return lifted
}

func meanTokenLength(line *text.Line) float64 {
	if len(line.Tokens) == 0 {
		return 0
	}
	lengths := make([]float64, 0, len(line.Tokens))
	for _, token := range line.Tokens {
		lengths = append(lengths, float64(len(token.Original)))
	}
	return stat.Mean(lengths, nil)
}

func meanOriginalFrequency(line *text.Line, unigrams inline.Counter) float64 {
	if len(line.Tokens) == 0 {
		return 0
	}
	freqs := make([]float64, 0, len(line.Tokens))
	for _, token := range line.Tokens {
		freqs = append(freqs, float64(unigrams[token.Original]))
	}
	return stat.Mean(freqs, nil)
}

func meanCleanedFrequency(line *text.Line, unigrams inline.Counter) float64 {
	var freqs []float64
	for _, token := range line.Tokens {
		if token.Cleaned != "" {
			freqs = append(freqs, float64(unigrams[token.Cleaned]))
		}
	}
	if len(freqs) == 0 {
		return 0
	}
	return stat.Mean(freqs, nil)
}

func meanCorrectedFrequency(line *text.Line, unigrams inline.Counter) float64 {
	var freqs []float64
	for _, token := range line.Tokens {
		if token.Corrections == nil {
			continue
		}
		keys := make([]string, 0, len(token.Corrections))
		for correction := range token.Corrections {
			keys = append(keys, correction)
		}
		sort.Strings(keys)
		for _, correction := range keys {
			freqs = append(freqs, float64(unigrams[correction]))
		}
	}
	if len(freqs) == 0 {
		return 0
	}
	return stat.Mean(freqs, nil)
}
