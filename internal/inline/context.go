package inline

// Context bundles read-only references into the shared indices for one
// correction pass. Nothing in the pass mutates it.
type Context struct {
	// OccurrenceMap combines the folded unigram and bigram counters.
	OccurrenceMap Counter

	AltCase    map[string]StringSet
	OCRKeys    map[string]StringSet
	Anagrams   map[int64]StringSet
	Alphabet   HashSet
	Dictionary StringSet

	Quantities Quantities
}

// Quantities exposes the tunable constants of the correction pipeline.
type Quantities struct {
	UnigramPruneRate float64 `yaml:"unigram_prune_rate"`
	BigramPruneRate  float64 `yaml:"bigram_prune_rate"`

	AnagramEditCeiling int `yaml:"anagram_edit_ceiling"`
	OCREditCeiling     int `yaml:"ocr_edit_ceiling"`
	OCRWeightDelta     int `yaml:"ocr_weight_delta"`
	OCRTruncationCap   int `yaml:"ocr_truncation_cap"`
	OCRSplitThreshold  int `yaml:"ocr_split_threshold"`

	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	LogRatioCutoff      float64 `yaml:"log_ratio_cutoff"`
}

// DefaultQuantities returns the documented defaults.
func DefaultQuantities() Quantities {
	return Quantities{
		UnigramPruneRate:    UnigramPruneRate,
		BigramPruneRate:     BigramPruneRate,
		AnagramEditCeiling:  3,
		OCREditCeiling:      2,
		OCRWeightDelta:      2,
		OCRTruncationCap:    10,
		OCRSplitThreshold:   5,
		ConfidenceThreshold: 0.7,
		LogRatioCutoff:      1.0,
	}
}
