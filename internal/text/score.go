package text

// ClassCounts sums how many lines reached each classification state.
type ClassCounts struct {
	Classified   int `json:"classified"`
	Unclassified int `json:"unclassified"`
	Unrated      int `json:"unrated"`
}

// ConfusionCounts treats a garbage detection as the positive class.
type ConfusionCounts struct {
	TruePositive  int `json:"tp"`
	FalsePositive int `json:"fp"`
	TrueNegative  int `json:"tn"`
	FalseNegative int `json:"fn"`
}

// Evaluation compares assigned grades with expected labels.
type Evaluation struct {
	Classes   ClassCounts     `json:"class"`
	Confusion ConfusionCounts `json:"raw"`
	Precision float64         `json:"precision"`
	Recall    float64         `json:"recall"`
	F1        float64         `json:"f1"`
}

// Evaluate scores the document's classification against its expected
// labels. Lines without a final grade count as unclassified; lines without
// a label count as unrated.
func (d *Document) Evaluate() Evaluation {
	var eval Evaluation

	d.Lines(func(line *Line) {
		if !line.Classified() {
			eval.Classes.Unclassified++
			return
		}
		if line.Expected < 0 {
			eval.Classes.Unrated++
			return
		}
		eval.Classes.Classified++

		if line.Grade == GradeGarbage {
			if line.Expected == 1 {
				eval.Confusion.FalsePositive++
			} else {
				eval.Confusion.TruePositive++
			}
			return
		}
		if line.Expected == 1 {
			eval.Confusion.TrueNegative++
		} else {
			eval.Confusion.FalseNegative++
		}
	})

	if divider := eval.Confusion.TruePositive + eval.Confusion.FalsePositive; divider != 0 {
		eval.Precision = float64(eval.Confusion.TruePositive) / float64(divider)
	}
	if divider := eval.Confusion.TruePositive + eval.Confusion.FalseNegative; divider != 0 {
		eval.Recall = float64(eval.Confusion.TruePositive) / float64(divider)
	}
	if eval.Precision+eval.Recall != 0 {
		eval.F1 = 2 * eval.Precision * eval.Recall / (eval.Precision + eval.Recall)
	}

	return eval
}
