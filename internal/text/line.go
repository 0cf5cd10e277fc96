package text

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Grade bounds. 0 is garbage, 5 is clean, everything between is undecided.
const (
	GradeGarbage = 0
	GradeClean   = 5

	gradeInitial = 3
)

// NoExpected marks a line without a labelled expectation.
const NoExpected = -1

var multiSpace = regexp.MustCompile(` +`)

// Line is one unit of classification: its tokens, the position template
// remembering the surrounding whitespace and punctuation, the grade and the
// character statistics of its original and cleaned renderings.
type Line struct {
	Tokens      []*Token
	PosTemplate string

	// Expected is the labelled class for training and evaluation,
	// NoExpected when the input carries none.
	Expected int

	Grade int

	origStats  *Statistics
	cleanStats *Statistics
}

// NewLine tokenizes a raw line and prepares its template, initial grade and
// original-rendering statistics.
func NewLine(raw string) *Line {
	line := &Line{Expected: NoExpected}

	for _, token := range Tokenize(raw) {
		line.Tokens = append(line.Tokens, newToken(token))
	}

	// Each token is replaced by a positional placeholder, first
	// occurrence only, in order of appearance.
	template := raw
	for i, token := range line.Tokens {
		template = strings.Replace(template, token.Original, "%"+strconv.Itoa(i), 1)
	}
	line.PosTemplate = template

	line.Grade = GradeGarbage
	for _, token := range line.Tokens {
		if token.Cleaned != "" {
			line.Grade = gradeInitial
			break
		}
	}

	line.origStats = charClassStats(line.OrigLine())
	return line
}

// OrigLine rebuilds the original line from the position template.
func (l *Line) OrigLine() string {
	rendered := l.PosTemplate
	for i := len(l.Tokens) - 1; i >= 0; i-- {
		rendered = strings.ReplaceAll(rendered, "%"+strconv.Itoa(i), l.Tokens[i].Original)
	}
	return rendered
}

// CleanLine rebuilds the line with every token replaced by its resolved
// correction, falling back to the cleaned then the original spelling.
// Runs of spaces collapse to one.
func (l *Line) CleanLine() string {
	rendered := l.PosTemplate
	for i := len(l.Tokens) - 1; i >= 0; i-- {
		rendered = strings.ReplaceAll(rendered, "%"+strconv.Itoa(i), l.Tokens[i].Best())
	}
	return strings.TrimSpace(multiSpace.ReplaceAllString(rendered, " "))
}

// OrigStats returns the character statistics of the original rendering.
func (l *Line) OrigStats() *Statistics {
	return l.origStats
}

// CleanStats returns the character statistics of the clean rendering,
// computing them on first use.
func (l *Line) CleanStats() *Statistics {
	if l.cleanStats == nil {
		l.cleanStats = charClassStats(l.CleanLine())
	}
	return l.cleanStats
}

// Score averages the mean correction score over the line's tokens. Tokens
// without a correction map contribute nothing.
func (l *Line) Score() float64 {
	if len(l.Tokens) == 0 {
		return 0
	}

	total := 0.0
	for _, token := range l.Tokens {
		if token.Corrections == nil {
			continue
		}
		total += meanScore(token.Corrections)
	}
	return total / float64(len(l.Tokens))
}

// meanScore averages a correction map, summing in key order so the floating
// point result does not depend on map iteration.
func meanScore(corrections Corrections) float64 {
	if len(corrections) == 0 {
		return 0
	}

	keys := make([]string, 0, len(corrections))
	for key := range corrections {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	sum := 0.0
	for _, key := range keys {
		sum += corrections[key]
	}
	return sum / float64(len(keys))
}

// RaiseGrade moves the grade one step toward clean.
func (l *Line) RaiseGrade() {
	if l.Grade < GradeClean {
		l.Grade++
	}
}

// DecreaseGrade moves the grade one step toward garbage.
func (l *Line) DecreaseGrade() {
	if l.Grade > GradeGarbage {
		l.Grade--
	}
}

// SetGarbage marks the line as garbage.
func (l *Line) SetGarbage() { l.Grade = GradeGarbage }

// SetClean marks the line as clean.
func (l *Line) SetClean() { l.Grade = GradeClean }

// Classified reports whether the grade reached one of the final classes.
func (l *Line) Classified() bool { return l.Grade%GradeClean == 0 }

// Len is the length of the original rendering.
func (l *Line) Len() int { return len(l.OrigLine()) }
