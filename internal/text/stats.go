// Package text models parsed documents: paragraphs of lines, tokens with
// their cleaned forms and corrections, and the character statistics the
// classifiers read.
package text

import "fmt"

// Character-class counters shared by line and document statistics.
const (
	StatLowerChars   = "lw_char"
	StatUpperChars   = "up_char"
	StatNumberChars  = "nb_char"
	StatSpecialChars = "sp_char"

	StatLineNb          = "line_nb"
	StatLineAvgLength   = "line_avg_length"
	StatLineTotalLength = "line_total_length"
	StatWordAvgLength   = "word_avg_length"
	StatWordTotalLength = "word_total_length"
	StatWordAvgNb       = "word_avg_nb"
	StatWordTotalNb     = "word_total_nb"
)

// Statistics is a numeric bag with a fixed key set. Reading or writing a key
// outside the declared set is an input-rejection error.
type Statistics struct {
	values map[string]float64
}

// NewStatistics declares the key set and zeroes every counter.
func NewStatistics(names ...string) *Statistics {
	values := make(map[string]float64, len(names))
	for _, name := range names {
		values[name] = 0
	}
	return &Statistics{values: values}
}

// Set stores a value under a declared key.
func (s *Statistics) Set(name string, value float64) error {
	if _, ok := s.values[name]; !ok {
		return fmt.Errorf("statistics: key %q not declared", name)
	}
	s.values[name] = value
	return nil
}

// Add increments a declared key.
func (s *Statistics) Add(name string, delta float64) error {
	if _, ok := s.values[name]; !ok {
		return fmt.Errorf("statistics: key %q not declared", name)
	}
	s.values[name] += delta
	return nil
}

// Get reads a declared key.
func (s *Statistics) Get(name string) (float64, error) {
	value, ok := s.values[name]
	if !ok {
		return 0, fmt.Errorf("statistics: key %q not declared", name)
	}
	return value, nil
}

// MustGet reads a declared key and panics on an undeclared one. It is meant
// for the fixed literal keys the package itself declares.
func (s *Statistics) MustGet(name string) float64 {
	value, err := s.Get(name)
	if err != nil {
		panic(err)
	}
	return value
}

func newCharStats() *Statistics {
	return NewStatistics(StatLowerChars, StatUpperChars, StatNumberChars, StatSpecialChars)
}

// charClassStats maps a line onto the four character classes: lowercase
// letters count as 'a', uppercase as 'A', digits as '0' and any other
// non-space character as '#'. Spaces are not counted.
func charClassStats(line string) *Statistics {
	stats := newCharStats()
	for _, r := range line {
		switch {
		case r >= 'a' && r <= 'z':
			stats.values[StatLowerChars]++
		case r >= 'A' && r <= 'Z':
			stats.values[StatUpperChars]++
		case r >= '0' && r <= '9':
			stats.values[StatNumberChars]++
		case r != ' ':
			stats.values[StatSpecialChars]++
		}
	}
	return stats
}
