package evaluation

import (
	"fmt"
	"math"
)

// BinaryMetrics holds the confusion counts of a binary prediction and the
// scores derived from them. Precision and recall are taken with respect to
// PositiveLabel.
type BinaryMetrics struct {
	Accuracy      float64 `json:"accuracy"`
	Precision     float64 `json:"precision"`
	Recall        float64 `json:"recall"`
	F1Score       float64 `json:"f1_score"`
	TruePositive  int     `json:"true_positive"`
	FalsePositive int     `json:"false_positive"`
	TrueNegative  int     `json:"true_negative"`
	FalseNegative int     `json:"false_negative"`
	NumSamples    int     `json:"num_samples"`
	PositiveLabel float64 `json:"positive_label"`
}

func CalculateBinaryMetrics(yTrue, yPred []float64, positive float64) (*BinaryMetrics, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("y_true and y_pred have different lengths: %d vs %d", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return nil, fmt.Errorf("cannot score empty predictions")
	}

	m := &BinaryMetrics{NumSamples: len(yTrue), PositiveLabel: positive}
	for i := range yTrue {
		actual := yTrue[i] == positive
		predicted := yPred[i] == positive
		switch {
		case actual && predicted:
			m.TruePositive++
		case !actual && predicted:
			m.FalsePositive++
		case actual && !predicted:
			m.FalseNegative++
		default:
			m.TrueNegative++
		}
	}

	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}

	m.Accuracy = float64(correct) / float64(m.NumSamples)
	m.Precision = safeDivide(float64(m.TruePositive), float64(m.TruePositive+m.FalsePositive))
	m.Recall = safeDivide(float64(m.TruePositive), float64(m.TruePositive+m.FalseNegative))
	m.F1Score = safeDivide(2*m.Precision*m.Recall, m.Precision+m.Recall)
	return m, nil
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0.0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0.0
	}
	return result
}

func (m *BinaryMetrics) FormatMetrics() string {
	result := fmt.Sprintf("Accuracy: %.4f\n", m.Accuracy)
	result += fmt.Sprintf("Precision: %.4f, Recall: %.4f, F1: %.4f\n", m.Precision, m.Recall, m.F1Score)
	result += fmt.Sprintf("TP: %d, FP: %d, TN: %d, FN: %d\n",
		m.TruePositive, m.FalsePositive, m.TrueNegative, m.FalseNegative)
	return result
}

// Scorer turns a prediction into a single score; higher is better.
type Scorer func(yTrue, yPred []float64, positive float64) (float64, error)

func GetScorer(name string) (Scorer, error) {
	pick := func(get func(*BinaryMetrics) float64) Scorer {
		return func(yTrue, yPred []float64, positive float64) (float64, error) {
			m, err := CalculateBinaryMetrics(yTrue, yPred, positive)
			if err != nil {
				return 0, err
			}
			return get(m), nil
		}
	}

	switch name {
	case "accuracy", "":
		return pick(func(m *BinaryMetrics) float64 { return m.Accuracy }), nil
	case "precision":
		return pick(func(m *BinaryMetrics) float64 { return m.Precision }), nil
	case "recall":
		return pick(func(m *BinaryMetrics) float64 { return m.Recall }), nil
	case "f1":
		return pick(func(m *BinaryMetrics) float64 { return m.F1Score }), nil
	default:
		return nil, fmt.Errorf("unknown scoring metric: %s", name)
	}
}
