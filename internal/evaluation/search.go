package evaluation

import (
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"svmclassifier/internal/models"
)

// ParamDistribution draws candidate values of a single hyperparameter.
type ParamDistribution interface {
	Sample(rng *rand.Rand) float64
	String() string
}

// Exponential is the exponential distribution with the given scale (mean).
// Its support is the positive reals.
type Exponential struct {
	Scale float64
	dist  distuv.Exponential
}

func NewExponential(scale float64) Exponential {
	return Exponential{Scale: scale, dist: distuv.Exponential{Rate: 1 / scale}}
}

// Sample draws by inversion; a zero draw is rejected so the value stays
// strictly positive.
func (e Exponential) Sample(rng *rand.Rand) float64 {
	for {
		if v := e.dist.Quantile(rng.Float64()); v > 0 {
			return v
		}
	}
}

func (e Exponential) String() string {
	return fmt.Sprintf("expon(scale=%g)", e.Scale)
}

// SearchTrial is one scored candidate. MeanScore weights every fold score
// by the size of its held-out fold.
type SearchTrial struct {
	Value      float64
	FoldScores []float64
	MeanScore  float64
}

type SearchResult struct {
	Param     string
	BestValue float64
	BestScore float64
	Trials    []SearchTrial
	Elapsed   time.Duration
}

// RandomizedSearch samples NIter candidate values of Param from
// Distribution and scores each with stratified cross-validation. The best
// candidate has the highest mean fold score; ties keep the earliest.
type RandomizedSearch struct {
	Estimator    models.Classifier
	Param        string
	Distribution ParamDistribution
	NIter        int
	CV           *CrossValidator
	Seed         uint64
	logger       *zap.Logger
}

func NewRandomizedSearch(estimator models.Classifier, param string, dist ParamDistribution, nIter int, cv *CrossValidator, seed uint64) *RandomizedSearch {
	return &RandomizedSearch{
		Estimator:    estimator,
		Param:        param,
		Distribution: dist,
		NIter:        nIter,
		CV:           cv,
		Seed:         seed,
		logger:       zap.NewNop(),
	}
}

func (rs *RandomizedSearch) WithLogger(logger *zap.Logger) *RandomizedSearch {
	if logger != nil {
		rs.logger = logger
	}
	return rs
}

// Candidates returns the values the search will evaluate, in order.
func (rs *RandomizedSearch) Candidates() []float64 {
	rng := rand.New(rand.NewPCG(rs.Seed, rs.Seed))
	values := make([]float64, rs.NIter)
	for i := range values {
		values[i] = rs.Distribution.Sample(rng)
	}
	return values
}

func (rs *RandomizedSearch) Fit(X [][]float64, y []float64) (*SearchResult, error) {
	if rs.NIter < 1 {
		return nil, fmt.Errorf("number of search iterations must be positive, got %d", rs.NIter)
	}
	if len(X) < rs.CV.NFolds {
		return nil, fmt.Errorf("%w: %d samples for %d-fold search", ErrTooFewSamples, len(X), rs.CV.NFolds)
	}

	folds, err := StratifiedKFold{NFolds: rs.CV.NFolds}.Split(y)
	if err != nil {
		return nil, err
	}
	foldSizes := make([]float64, len(folds))
	for i, fold := range folds {
		foldSizes[i] = float64(len(fold))
	}

	start := time.Now()
	result := &SearchResult{Param: rs.Param, Trials: make([]SearchTrial, 0, rs.NIter)}

	for i, value := range rs.Candidates() {
		candidate := rs.Estimator.Clone()
		if err := candidate.SetParams(map[string]any{rs.Param: value}); err != nil {
			return nil, err
		}

		scores, err := rs.CV.CrossValScore(candidate, X, y)
		if err != nil {
			return nil, fmt.Errorf("candidate %d (%s=%g): %w", i, rs.Param, value, err)
		}

		mean := stat.Mean(scores, foldSizes)
		result.Trials = append(result.Trials, SearchTrial{Value: value, FoldScores: scores, MeanScore: mean})
		rs.logger.Debug("search candidate scored",
			zap.Int("candidate", i),
			zap.Float64(rs.Param, value),
			zap.Float64("score", mean))

		if i == 0 || mean > result.BestScore {
			result.BestValue = value
			result.BestScore = mean
		}
	}

	result.Elapsed = time.Since(start)
	return result, nil
}
