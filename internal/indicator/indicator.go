// Package indicator grades lines with rule-based garbage and clean
// detectors and smooths the grades across garbage neighbourhoods.
package indicator

import (
	"regexp"

	"github.com/lab/denoiser/internal/text"
)

// Indicator votes on one line, with access to the document statistics.
type Indicator interface {
	Match(line *text.Line, docStats *text.Statistics) bool
}

// StatsFunc adapts a statistics predicate into an Indicator.
type StatsFunc func(line *text.Line, docStats *text.Statistics) bool

// Match reports the predicate's vote.
func (f StatsFunc) Match(line *text.Line, docStats *text.Statistics) bool {
	return f(line, docStats)
}

// Regex matches the clean rendering of a line against an anchored pattern.
type Regex struct {
	pattern *regexp.Regexp
}

// NewRegex anchors and compiles a pattern.
func NewRegex(pattern string) *Regex {
	return &Regex{pattern: regexp.MustCompile("^" + pattern + "$")}
}

// Match reports whether the clean rendering matches.
func (r *Regex) Match(line *text.Line, _ *text.Statistics) bool {
	return r.pattern.MatchString(line.CleanLine())
}

// Bundle is an ordered list of indicators sharing a purpose.
type Bundle struct {
	indicators []Indicator
}

// NewBundle collects indicators into a bundle.
func NewBundle(indicators ...Indicator) *Bundle {
	return &Bundle{indicators: indicators}
}

// MatchRate is the fraction of indicators voting for the line.
func (b *Bundle) MatchRate(line *text.Line, docStats *text.Statistics) float64 {
	matching := 0
	for _, ind := range b.indicators {
		if ind.Match(line, docStats) {
			matching++
		}
	}
	return float64(matching) / float64(len(b.indicators))
}

// Match reports whether any indicator voted for the line.
func (b *Bundle) Match(line *text.Line, docStats *text.Statistics) bool {
	return b.MatchRate(line, docStats) > 0
}

// charFraction reads one character-class counter of the clean statistics
// as a fraction of all counted characters.
func charFraction(line *text.Line, class string) float64 {
	stats := line.CleanStats()
	total := stats.MustGet(text.StatLowerChars) + stats.MustGet(text.StatUpperChars) +
		stats.MustGet(text.StatNumberChars) + stats.MustGet(text.StatSpecialChars)
	if total == 0 {
		return 0
	}
	return stats.MustGet(class) / total
}

// StrongBundle detects garbage lines: a special-character fraction above
// 0.6, or a line made of the digit/operator confusion alphabet.
func StrongBundle() *Bundle {
	return NewBundle(
		StatsFunc(func(line *text.Line, _ *text.Statistics) bool {
			return charFraction(line, text.StatSpecialChars) > 0.6
		}),
		NewRegex(`[0-9efEaAoOsSt.,= \-]+`),
	)
}

// CleanBundle detects clean lines: long enough with a dominant letter
// class, or a plain title.
func CleanBundle() *Bundle {
	return NewBundle(
		StatsFunc(func(line *text.Line, docStats *text.Statistics) bool {
			if float64(len(line.CleanLine())) < 0.5*docStats.MustGet(text.StatLineAvgLength) {
				return false
			}
			return charFraction(line, text.StatLowerChars) > 0.6 ||
				charFraction(line, text.StatUpperChars) > 0.6
		}),
		NewRegex(`[A-Z][a-z ]+`),
	)
}

// Grade applies the strong then the clean bundle to every line and smooths
// the result: a garbage line drags its non-clean neighbours one step down.
func Grade(doc *text.Document) {
	strong := StrongBundle()
	clean := CleanBundle()

	doc.Lines(func(line *text.Line) {
		if line.Grade != text.GradeGarbage && strong.Match(line, doc.Stats) {
			line.SetGarbage()
		}
	})
	doc.Lines(func(line *text.Line) {
		if line.Grade != text.GradeGarbage && clean.Match(line, doc.Stats) {
			line.SetClean()
		}
	})

	Smooth(doc)
}

// Smooth propagates garbage adjacency: after a garbage line every
// non-clean line loses a step, and a garbage line pulls a non-clean
// predecessor one step down.
func Smooth(doc *text.Document) {
	var previous *text.Line
	doc.Lines(func(line *text.Line) {
		if previous != nil && previous.Grade == text.GradeGarbage && line.Grade != text.GradeClean {
			line.DecreaseGrade()
		}
		if line.Grade == text.GradeGarbage && previous != nil && previous.Grade != text.GradeClean {
			previous.DecreaseGrade()
		}
		previous = line
	})
}
