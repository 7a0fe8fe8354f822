package preprocessing

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrSingleClass = errors.New("labels contain a single class")
	ErrNotBinary   = errors.New("labels are not binary")
)

// LabelEncoder maps the two raw label values of a binary problem to -1/+1.
// The larger raw value is the positive class.
type LabelEncoder struct {
	Classes  []float64
	IsFitted bool
}

func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

func (le *LabelEncoder) Fit(labels []float64) error {
	if len(labels) == 0 {
		return fmt.Errorf("cannot fit label encoder on empty labels")
	}

	unique := make(map[float64]bool)
	for _, label := range labels {
		unique[label] = true
	}

	classes := make([]float64, 0, len(unique))
	for label := range unique {
		classes = append(classes, label)
	}
	sort.Float64s(classes)

	switch {
	case len(classes) == 1:
		return fmt.Errorf("%w: only label %v present, need samples of 2 classes", ErrSingleClass, classes[0])
	case len(classes) > 2:
		return fmt.Errorf("%w: found %d classes %v", ErrNotBinary, len(classes), classes)
	}

	le.Classes = classes
	le.IsFitted = true
	return nil
}

func (le *LabelEncoder) Transform(labels []float64) ([]float64, error) {
	if !le.IsFitted {
		return nil, fmt.Errorf("LabelEncoder must be fitted before transform")
	}

	result := make([]float64, len(labels))
	for i, label := range labels {
		switch label {
		case le.Classes[0]:
			result[i] = -1
		case le.Classes[1]:
			result[i] = 1
		default:
			return nil, fmt.Errorf("unknown label: %v", label)
		}
	}

	return result, nil
}

func (le *LabelEncoder) FitTransform(labels []float64) ([]float64, error) {
	if err := le.Fit(labels); err != nil {
		return nil, err
	}
	return le.Transform(labels)
}

// Decode maps a decision value back to a raw label: strictly positive
// values give the positive class.
func (le *LabelEncoder) Decode(score float64) float64 {
	if score > 0 {
		return le.Positive()
	}
	return le.Negative()
}

func (le *LabelEncoder) Positive() float64 {
	return le.Classes[1]
}

func (le *LabelEncoder) Negative() float64 {
	return le.Classes[0]
}
