package models

import (
	"go.uber.org/zap"

	"github.com/lab/denoiser/internal/indicator"
	"github.com/lab/denoiser/internal/text"
)

// Indicator is the rule-based line classification pass.
type Indicator struct {
	log *zap.Logger
}

// NewIndicator builds the pass.
func NewIndicator(log *zap.Logger) *Indicator {
	return &Indicator{log: log}
}

// Correct grades the document's lines with the strong and clean bundles
// and smooths garbage adjacency.
func (m *Indicator) Correct(doc *text.Document) {
	indicator.Grade(doc)

	garbage, clean := 0, 0
	doc.Lines(func(line *text.Line) {
		switch line.Grade {
		case text.GradeGarbage:
			garbage++
		case text.GradeClean:
			clean++
		}
	})
	m.log.Debug("indicator pass finished",
		zap.String("file", doc.Filename),
		zap.Int("garbage", garbage),
		zap.Int("clean", clean),
	)
}
