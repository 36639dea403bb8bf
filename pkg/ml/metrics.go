package ml

import (
	"fmt"
	"sort"

	xe "github.com/leadscore/leadscore/pkg/errors"
)

// Metrics is the evaluation record of one training run on the
// held-out split.
type Metrics struct {
	Precision float64
	Recall    float64
	F1        float64
	AUC       float64
	Accuracy  float64

	// Confusion[actual][predicted], classes 0 and 1.
	Confusion [2][2]int
}

// Evaluate scores class-1 probabilities against true labels at the
// given decision threshold.
func Evaluate(yTrue []float64, proba []float64, threshold float64) (Metrics, error) {
	if len(yTrue) != len(proba) {
		return Metrics{}, xe.New(fmt.Sprintf(
			"have %d labels but %d probabilities", len(yTrue), len(proba),
		))
	}
	if len(yTrue) == 0 {
		return Metrics{}, xe.New("can not evaluate on an empty split")
	}

	m := Metrics{AUC: AUC(yTrue, proba)}
	for i, p := range proba {
		actual := int(yTrue[i])
		predicted := 0
		if p >= threshold {
			predicted = 1
		}
		m.Confusion[actual][predicted]++
	}

	tp := float64(m.Confusion[1][1])
	fp := float64(m.Confusion[0][1])
	fn := float64(m.Confusion[1][0])
	tn := float64(m.Confusion[0][0])

	m.Precision = safeRatio(tp, tp+fp)
	m.Recall = safeRatio(tp, tp+fn)
	m.F1 = safeRatio(2*m.Precision*m.Recall, m.Precision+m.Recall)
	m.Accuracy = (tp + tn) / float64(len(yTrue))

	return m, nil
}

// AUC is the area under the ROC curve, computed as the rank statistic
// of class-1 scores over class-0 scores. Tied scores share their
// average rank. Degenerate splits with a single class score 0.5 (no
// ranking information).
func AUC(yTrue []float64, proba []float64) float64 {
	n := len(yTrue)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return proba[order[a]] < proba[order[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && proba[order[j]] == proba[order[i]] {
			j++
		}
		// ranks are 1-based; ties share the average of their range
		avg := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}

	var positives, rankSum float64
	for i, label := range yTrue {
		if label == 1 {
			positives++
			rankSum += ranks[i]
		}
	}
	negatives := float64(n) - positives
	if positives == 0 || negatives == 0 {
		return 0.5
	}

	return (rankSum - positives*(positives+1)/2) / (positives * negatives)
}

func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
