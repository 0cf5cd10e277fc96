package text

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Paragraph is an ordered run of lines between two blank input lines.
type Paragraph []*Line

// Document is the parsed input: paragraphs of lines plus document-wide
// statistics and the checksum of the raw bytes it was read from.
type Document struct {
	Filename   string
	Paragraphs []Paragraph
	Stats      *Statistics

	// Checksum is the sha-256 of the raw input, used for ingest
	// idempotence.
	Checksum string

	// Labelled reports whether the input carried expected classes.
	Labelled bool
}

func newDocument(filename string) *Document {
	doc := &Document{Filename: filename}
	doc.Stats = NewStatistics(
		StatLineNb, StatLineAvgLength, StatLineTotalLength,
		StatWordAvgLength, StatWordTotalLength,
		StatWordAvgNb, StatWordTotalNb,
	)
	return doc
}

// ReadTextFile parses a plain-text file, one line per Line, blank lines
// separating paragraphs.
func ReadTextFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text: reading %s: %w", path, err)
	}
	return ReadText(path, bytes.NewReader(data))
}

// ReadText parses plain text from a reader.
func ReadText(filename string, r io.Reader) (*Document, error) {
	doc := newDocument(filename)

	hasher := sha256.New()
	scanner := bufio.NewScanner(io.TeeReader(r, hasher))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraph Paragraph
	for scanner.Scan() {
		raw := strings.Trim(scanner.Text(), " \t\r\n")
		if raw == "" {
			paragraph = doc.closeParagraph(paragraph)
			continue
		}
		paragraph = append(paragraph, doc.addLine(NewLine(raw)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("text: scanning %s: %w", filename, err)
	}
	doc.closeParagraph(paragraph)

	doc.Checksum = hex.EncodeToString(hasher.Sum(nil))
	return doc, doc.finalizeStats()
}

// ReadCSVFile parses a two-column CSV file: the raw line and its expected
// class. Rows without exactly two fields separate paragraphs.
func ReadCSVFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text: reading %s: %w", path, err)
	}
	return ReadCSV(path, bytes.NewReader(data))
}

// ReadCSV parses labelled CSV input from a reader.
func ReadCSV(filename string, r io.Reader) (*Document, error) {
	doc := newDocument(filename)
	doc.Labelled = true

	hasher := sha256.New()
	reader := csv.NewReader(io.TeeReader(r, hasher))
	reader.FieldsPerRecord = -1

	var paragraph Paragraph
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("text: parsing %s: %w", filename, err)
		}

		if len(row) != 2 {
			paragraph = doc.closeParagraph(paragraph)
			continue
		}

		raw := strings.Trim(row[0], " \t\r\n")
		if raw == "" {
			paragraph = doc.closeParagraph(paragraph)
			continue
		}

		line := NewLine(raw)
		if expected, err := strconv.Atoi(strings.TrimSpace(row[1])); err == nil {
			line.Expected = expected
		}
		paragraph = append(paragraph, doc.addLine(line))
	}
	doc.closeParagraph(paragraph)

	doc.Checksum = hex.EncodeToString(hasher.Sum(nil))
	return doc, doc.finalizeStats()
}

func (d *Document) addLine(line *Line) *Line {
	d.Stats.values[StatLineNb]++
	d.Stats.values[StatLineTotalLength] += float64(line.Len())
	d.Stats.values[StatWordTotalNb] += float64(len(line.Tokens))

	wordsLen := 0
	for _, token := range line.Tokens {
		wordsLen += len(token.Original)
	}
	d.Stats.values[StatWordTotalLength] += float64(wordsLen)

	return line
}

func (d *Document) closeParagraph(paragraph Paragraph) Paragraph {
	if len(paragraph) != 0 {
		d.Paragraphs = append(d.Paragraphs, paragraph)
	}
	return nil
}

func (d *Document) finalizeStats() error {
	lines := d.Stats.values[StatLineNb]
	words := d.Stats.values[StatWordTotalNb]
	if lines == 0 {
		return fmt.Errorf("text: %s holds no lines", d.Filename)
	}

	d.Stats.values[StatLineAvgLength] = d.Stats.values[StatLineTotalLength] / lines
	if words > 0 {
		d.Stats.values[StatWordAvgLength] = d.Stats.values[StatWordTotalLength] / words
	}
	d.Stats.values[StatWordAvgNb] = words / lines
	return nil
}

// Lines iterates every line in document order.
func (d *Document) Lines(fn func(*Line)) {
	for _, paragraph := range d.Paragraphs {
		for _, line := range paragraph {
			fn(line)
		}
	}
}

// CleanLines renders every clean line, paragraph runs separated by one
// blank line.
func (d *Document) CleanLines() []string {
	return d.collect(func(l *Line) (string, bool) {
		return l.CleanLine(), l.Grade == GradeClean
	})
}

// GarbageLines renders every garbage line.
func (d *Document) GarbageLines() []string {
	return d.collect(func(l *Line) (string, bool) {
		return l.OrigLine(), l.Grade == GradeGarbage
	})
}

// UnclassifiedLines renders every line that never reached a final class.
func (d *Document) UnclassifiedLines() []string {
	return d.collect(func(l *Line) (string, bool) {
		return l.OrigLine(), !l.Classified()
	})
}

func (d *Document) collect(pick func(*Line) (string, bool)) []string {
	var lines []string
	for _, paragraph := range d.Paragraphs {
		for _, line := range paragraph {
			if rendered, ok := pick(line); ok {
				lines = append(lines, rendered)
			}
		}
		if len(lines) > 0 && lines[len(lines)-1] != "" {
			lines = append(lines, "")
		}
	}
	return lines
}
