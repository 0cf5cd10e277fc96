package models

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lab/denoiser/internal/features"
	"github.com/lab/denoiser/internal/learning"
	"github.com/lab/denoiser/internal/store"
	"github.com/lab/denoiser/internal/text"
)

// Learning is the supervised pass deciding the lines the indicators left
// in the middle grades.
type Learning struct {
	inline *Inline
	store  *store.Store
	log    *zap.Logger
}

// NewLearning builds the pass over the shared inline indices.
func NewLearning(inline *Inline, st *store.Store, log *zap.Logger) *Learning {
	return &Learning{inline: inline, store: st, log: log}
}

// Train extends the persisted training set with every classified line of
// the documents and refits the classifier.
func (m *Learning) Train(docs []*text.Document) error {
	set := &learning.TrainingSet{}
	if err := m.store.Load(store.BlobTrainingSet, set); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	for _, doc := range docs {
		m.log.Debug("collecting training lines", zap.String("file", doc.Filename))
		doc.Lines(func(line *text.Line) {
			if !line.Classified() {
				return
			}
			vector := features.Extract(line, m.inline.Unigrams.Folded, doc.Stats)
			set.Append(vector, line.Grade/text.GradeClean)
		})
	}

	if err := m.store.Save(store.BlobTrainingSet, set); err != nil {
		return err
	}

	classifier := &learning.Classifier{}
	if err := classifier.Fit(set); err != nil {
		return fmt.Errorf("models: fitting classifier: %w", err)
	}
	if err := m.store.Save(store.BlobClassifier, classifier); err != nil {
		return err
	}

	m.log.Info("classifier trained", zap.Int("samples", set.Len()))
	return nil
}

// Correct asks the persisted classifier to grade every line still without
// a final class. A missing classifier leaves every grade untouched.
func (m *Learning) Correct(doc *text.Document) error {
	classifier := &learning.Classifier{}
	if err := m.store.Load(store.BlobClassifier, classifier); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			m.log.Warn("classifier missing, leaving grades untouched", zap.String("file", doc.Filename))
			return nil
		}
		return err
	}

	var failure error
	doc.Lines(func(line *text.Line) {
		if failure != nil || line.Classified() {
			return
		}
		vector := features.Extract(line, m.inline.Unigrams.Folded, doc.Stats)
		label, err := classifier.Predict(vector)
		if err != nil {
			failure = fmt.Errorf("models: classifying line: %w", err)
			return
		}
		line.Grade = label * text.GradeClean
	})
	return failure
}
