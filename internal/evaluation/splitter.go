package evaluation

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

var ErrTooFewSamples = errors.New("too few samples")

// TrainTestSplitter partitions row indices into train and test sets. The
// test set takes ceil(testSize * n) rows of a seeded permutation and the
// train set takes the rest, so the same seed always yields the same split.
type TrainTestSplitter struct {
	testSize   float64
	randomSeed uint64
	shuffle    bool
}

func NewTrainTestSplitter(testSize float64, randomSeed uint64, shuffle bool) *TrainTestSplitter {
	return &TrainTestSplitter{
		testSize:   testSize,
		randomSeed: randomSeed,
		shuffle:    shuffle,
	}
}

func (tts *TrainTestSplitter) SplitIndices(n int) (train, test []int, err error) {
	if n == 0 {
		return nil, nil, fmt.Errorf("cannot split empty dataset")
	}

	if tts.testSize <= 0 || tts.testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be between 0 and 1")
	}

	testCount := int(math.Ceil(tts.testSize * float64(n)))
	trainCount := n - testCount
	if testCount == 0 || trainCount == 0 {
		return nil, nil, fmt.Errorf("%w: test size %v of %d samples leaves an empty partition", ErrTooFewSamples, tts.testSize, n)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if tts.shuffle {
		rng := rand.New(rand.NewPCG(tts.randomSeed, tts.randomSeed))
		indices = rng.Perm(n)
	}

	test = append([]int(nil), indices[:testCount]...)
	train = append([]int(nil), indices[testCount:]...)
	return train, test, nil
}

func takeRows(X [][]float64, y []float64, indices []int) ([][]float64, []float64) {
	XOut := make([][]float64, len(indices))
	yOut := make([]float64, len(indices))
	for i, idx := range indices {
		XOut[i] = make([]float64, len(X[idx]))
		copy(XOut[i], X[idx])
		yOut[i] = y[idx]
	}
	return XOut, yOut
}
