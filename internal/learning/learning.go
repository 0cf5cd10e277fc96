// Package learning holds the training set and the linear line classifier.
//
// The classifier is a logistic-regression model fitted by deterministic
// gradient descent over log-loss with inverse-frequency class weights. For
// fixed training data the fitted weights, and therefore every prediction,
// are bit-identical across runs and processes.
package learning

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrNotFitted reports a prediction against an untrained classifier.
var ErrNotFitted = errors.New("learning: classifier is not fitted")

// Training hyperparameters. Fixed: tuning them would break the stored
// model contract.
const (
	epochs       = 100
	learningRate = 0.01
	l2Penalty    = 1e-4
)

// TrainingSet is the parallel feature/label store.
type TrainingSet struct {
	Features [][]float64 `json:"features"`
	Labels   []int       `json:"results"`
}

// Append adds one labelled vector.
func (s *TrainingSet) Append(features []float64, label int) {
	s.Features = append(s.Features, features)
	s.Labels = append(s.Labels, label)
}

// Len is the number of stored samples.
func (s *TrainingSet) Len() int { return len(s.Features) }

// Classifier is the fitted linear model.
type Classifier struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Fitted  bool      `json:"fitted"`
}

// Fit trains the model on the set. Classes are reweighted by inverse
// frequency so an unbalanced set does not collapse onto the majority
// label. Samples are visited in storage order, every epoch.
func (c *Classifier) Fit(set *TrainingSet) error {
	if len(set.Features) != len(set.Labels) {
		return fmt.Errorf("learning: %d feature vectors against %d labels", len(set.Features), len(set.Labels))
	}
	if set.Len() == 0 {
		return errors.New("learning: empty training set")
	}

	dim := len(set.Features[0])
	for i, features := range set.Features {
		if len(features) != dim {
			return fmt.Errorf("learning: sample %d has %d features, want %d", i, len(features), dim)
		}
	}

	counts := map[int]int{}
	for _, label := range set.Labels {
		if label != 0 && label != 1 {
			return fmt.Errorf("learning: label %d outside {0,1}", label)
		}
		counts[label]++
	}

	total := float64(set.Len())
	classWeight := func(label int) float64 {
		n := counts[label]
		if n == 0 {
			return 0
		}
		return total / (2 * float64(n))
	}

	weights := make([]float64, dim)
	bias := 0.0
	for epoch := 0; epoch < epochs; epoch++ {
		for i, features := range set.Features {
			label := float64(set.Labels[i])
			p := sigmoid(floats.Dot(weights, features) + bias)
			grad := (p - label) * classWeight(set.Labels[i])

			for j, x := range features {
				weights[j] -= learningRate * (grad*x + l2Penalty*weights[j])
			}
			bias -= learningRate * grad
		}
	}

	c.Weights = weights
	c.Bias = bias
	c.Fitted = true
	return nil
}

// Predict labels one feature vector.
func (c *Classifier) Predict(features []float64) (int, error) {
	if !c.Fitted {
		return 0, ErrNotFitted
	}
	if len(features) != len(c.Weights) {
		return 0, fmt.Errorf("learning: %d features against %d weights", len(features), len(c.Weights))
	}

	if sigmoid(floats.Dot(c.Weights, features)+c.Bias) >= 0.5 {
		return 1, nil
	}
	return 0, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
