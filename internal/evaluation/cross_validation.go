package evaluation

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"svmclassifier/internal/models"
)

// StratifiedKFold deals the samples of every class, in their original
// order, over NFolds consecutive folds so each fold keeps roughly the class
// proportions of the whole set. Fold sizes within a class differ by at
// most one, the first folds taking the extra samples.
type StratifiedKFold struct {
	NFolds int
}

// Split returns the test indices of every fold, each in ascending order.
func (s StratifiedKFold) Split(y []float64) ([][]int, error) {
	n := len(y)
	if s.NFolds < 2 {
		return nil, fmt.Errorf("invalid number of folds: %d (must be at least 2)", s.NFolds)
	}
	if s.NFolds > n {
		return nil, fmt.Errorf("%w: cannot have %d folds with %d samples", ErrTooFewSamples, s.NFolds, n)
	}

	byClass := make(map[float64][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}
	classes := make([]float64, 0, len(byClass))
	for class := range byClass {
		classes = append(classes, class)
	}
	sort.Float64s(classes)

	testFold := make([]int, n)
	for _, class := range classes {
		indices := byClass[class]
		base, extra := len(indices)/s.NFolds, len(indices)%s.NFolds
		pos := 0
		for fold := 0; fold < s.NFolds; fold++ {
			size := base
			if fold < extra {
				size++
			}
			for _, idx := range indices[pos : pos+size] {
				testFold[idx] = fold
			}
			pos += size
		}
	}

	folds := make([][]int, s.NFolds)
	for idx, fold := range testFold {
		folds[fold] = append(folds[fold], idx)
	}
	for i, fold := range folds {
		if len(fold) == 0 {
			return nil, fmt.Errorf("%w: fold %d of %d is empty", ErrTooFewSamples, i, s.NFolds)
		}
	}

	return folds, nil
}

// MinClassCount returns the size of the smallest class in y.
func MinClassCount(y []float64) int {
	counts := make(map[float64]int)
	for _, label := range y {
		counts[label]++
	}
	least := len(y)
	for _, count := range counts {
		least = min(least, count)
	}
	return least
}

type CrossValidator struct {
	NFolds  int
	Scoring string
	logger  *zap.Logger
}

func NewCrossValidator(nFolds int, scoring string) *CrossValidator {
	return &CrossValidator{
		NFolds:  nFolds,
		Scoring: scoring,
		logger:  zap.NewNop(),
	}
}

func (cv *CrossValidator) WithLogger(logger *zap.Logger) *CrossValidator {
	if logger != nil {
		cv.logger = logger
	}
	return cv
}

// CrossValScore fits a fresh clone of model on every training fold and
// returns the score of each held-out fold, in fold order.
func (cv *CrossValidator) CrossValScore(model models.Classifier, X [][]float64, y []float64) ([]float64, error) {
	if len(X) != len(y) {
		return nil, fmt.Errorf("x and y must have the same length")
	}

	scorer, err := GetScorer(cv.Scoring)
	if err != nil {
		return nil, err
	}

	folds, err := StratifiedKFold{NFolds: cv.NFolds}.Split(y)
	if err != nil {
		return nil, err
	}

	if least := MinClassCount(y); least < cv.NFolds {
		cv.logger.Warn("least populated class has fewer members than folds",
			zap.Int("members", least),
			zap.Int("folds", cv.NFolds))
	}

	scores := make([]float64, len(folds))
	for i, testIndices := range folds {
		score, err := cv.evaluateFold(X, y, model, testIndices, scorer)
		if err != nil {
			return nil, fmt.Errorf("fold %d failed: %w", i, err)
		}
		scores[i] = score
	}

	return scores, nil
}

func (cv *CrossValidator) evaluateFold(
	X [][]float64,
	y []float64,
	model models.Classifier,
	testIndices []int,
	scorer Scorer,
) (float64, error) {

	testSet := make(map[int]bool, len(testIndices))
	for _, idx := range testIndices {
		testSet[idx] = true
	}

	trainIndices := make([]int, 0, len(X)-len(testIndices))
	for i := range X {
		if !testSet[i] {
			trainIndices = append(trainIndices, i)
		}
	}

	XTrain, yTrain := takeRows(X, y, trainIndices)
	XTest, yTest := takeRows(X, y, testIndices)

	foldModel := model.Clone()
	if err := foldModel.Fit(XTrain, yTrain); err != nil {
		return 0, err
	}

	return scorer(yTest, foldModel.Predict(XTest), positiveLabel(foldModel))
}

// MeanStd summarizes fold scores. The standard deviation is the sample one
// and is zero for a single score.
func MeanStd(scores []float64) (mean, std float64) {
	if len(scores) == 0 {
		return 0, 0
	}
	if len(scores) == 1 {
		return scores[0], 0
	}
	return stat.MeanStdDev(scores, nil)
}

func positiveLabel(model models.Classifier) float64 {
	positive, err := model.PositiveClass()
	if err != nil {
		return 1
	}
	return positive
}
