package data

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"svmclassifier/internal/preprocessing"
)

type DataValidator struct{}

func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

func (dv *DataValidator) ValidateDataset(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("dataset is empty")
	}

	if len(X) != len(y) {
		return fmt.Errorf("feature matrix and labels have different lengths: %d vs %d", len(X), len(y))
	}

	nFeatures := len(X[0])
	if nFeatures == 0 {
		return fmt.Errorf("features cannot be empty")
	}

	for i, sample := range X {
		if len(sample) != nFeatures {
			return fmt.Errorf("inconsistent feature count at sample %d: expected %d, got %d", i, nFeatures, len(sample))
		}
		for j, value := range sample {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return fmt.Errorf("non-finite value at sample %d, feature %d", i, j)
			}
		}
	}

	return nil
}

// ValidateLabels requires a binary problem with both classes present.
func (dv *DataValidator) ValidateLabels(y []float64) error {
	if len(y) == 0 {
		return fmt.Errorf("labels are empty")
	}
	return preprocessing.NewLabelEncoder().Fit(y)
}

type FeatureStats struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Mean decimal.Decimal
}

type DatasetStats struct {
	Samples           int
	Features          int
	Classes           int
	ClassDistribution map[float64]int
	FeatureStats      []FeatureStats
}

// SortedClasses returns the class labels in ascending order.
func (s DatasetStats) SortedClasses() []float64 {
	classes := make([]float64, 0, len(s.ClassDistribution))
	for class := range s.ClassDistribution {
		classes = append(classes, class)
	}
	sort.Float64s(classes)
	return classes
}

func (dv *DataValidator) GetDatasetStats(ds *Dataset) DatasetStats {
	stats := DatasetStats{
		Samples:           ds.Len(),
		Features:          ds.NumFeatures(),
		ClassDistribution: make(map[float64]int),
	}
	if ds.Len() == 0 {
		return stats
	}

	for _, label := range ds.Labels {
		stats.ClassDistribution[label]++
	}
	stats.Classes = len(stats.ClassDistribution)

	stats.FeatureStats = make([]FeatureStats, stats.Features)
	for j := 0; j < stats.Features; j++ {
		values := make([]decimal.Decimal, ds.Len())
		for i := range values {
			values[i] = decimal.NewFromFloat(ds.Features.At(i, j))
		}

		stats.FeatureStats[j] = FeatureStats{
			Min:  decimal.Min(values[0], values[1:]...),
			Max:  decimal.Max(values[0], values[1:]...),
			Mean: decimal.Avg(values[0], values[1:]...),
		}
	}

	return stats
}
