// Package denoiser drives the three correction passes over parsed
// documents: per-token spelling correction, indicator grading, then the
// learned classifier for whatever is left undecided.
package denoiser

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lab/denoiser/internal/config"
	"github.com/lab/denoiser/internal/models"
	"github.com/lab/denoiser/internal/store"
	"github.com/lab/denoiser/internal/text"
)

// Denoiser cleans documents and trains the related models.
type Denoiser struct {
	inline    *models.Inline
	indicator *models.Indicator
	learning  *models.Learning

	store *store.Store
	log   *zap.Logger
}

// New opens the model store and loads every available artefact.
func New(cfg *config.Config, log *zap.Logger) (*Denoiser, error) {
	st, err := store.Open(cfg.ModelStorePath())
	if err != nil {
		return nil, err
	}

	inlineModel, err := models.NewInline(st, cfg.WordListPath(), cfg.Quantities(), log)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &Denoiser{
		inline:    inlineModel,
		indicator: models.NewIndicator(log),
		learning:  models.NewLearning(inlineModel, st, log),
		store:     st,
		log:       log,
	}, nil
}

// Close releases the model store.
func (d *Denoiser) Close() error { return d.store.Close() }

// Cleanse parses one file and runs the full correction sequence on it.
func (d *Denoiser) Cleanse(path string, isCSV bool) (*text.Document, error) {
	doc, err := d.read(path, isCSV)
	if err != nil {
		return nil, err
	}

	d.log.Debug("cleaning document", zap.String("file", path))

	if err := d.inline.Ingest(doc); err != nil {
		return nil, fmt.Errorf("ingesting %s: %w", path, err)
	}
	if err := d.inline.Correct(doc); err != nil {
		return nil, fmt.Errorf("inline pass on %s: %w", path, err)
	}

	d.indicator.Correct(doc)

	if err := d.learning.Correct(doc); err != nil {
		return nil, fmt.Errorf("learning pass on %s: %w", path, err)
	}

	return doc, nil
}

// Train ingests a labelled dataset, runs the first two passes and refits
// the classifier on every line they decided.
func (d *Denoiser) Train(paths []string, progress func(string)) error {
	d.log.Debug("training denoiser", zap.Int("files", len(paths)))

	var docs []*text.Document
	for _, path := range paths {
		doc, err := text.ReadCSVFile(path)
		if err != nil {
			return err
		}

		if err := d.inline.Ingest(doc); err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		if err := d.inline.Correct(doc); err != nil {
			return fmt.Errorf("inline pass on %s: %w", path, err)
		}
		d.indicator.Correct(doc)

		docs = append(docs, doc)
		if progress != nil {
			progress(path)
		}
	}

	if err := d.learning.Train(docs); err != nil {
		return err
	}

	d.log.Info("denoiser trained", zap.Int("files", len(paths)))
	return nil
}

// GenerateModels ingests a dataset into the inline structures without
// training the classifier.
func (d *Denoiser) GenerateModels(paths []string, progress func(string)) error {
	for _, path := range paths {
		doc, err := text.ReadCSVFile(path)
		if err != nil {
			return err
		}
		if err := d.inline.Ingest(doc); err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		if progress != nil {
			progress(path)
		}
	}

	d.log.Info("inline structures generated", zap.Int("files", len(paths)))
	return nil
}

func (d *Denoiser) read(path string, isCSV bool) (*text.Document, error) {
	if isCSV {
		return text.ReadCSVFile(path)
	}
	return text.ReadTextFile(path)
}
