package models

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blobs returns two well separated clusters labelled 0 and 1.
func blobs(n int, seed uint64) ([][]float64, []float64) {
	rng := rand.New(rand.NewPCG(seed, seed))
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		center := -2.0
		if i%2 == 1 {
			center = 2.0
			y[i] = 1
		}
		X[i] = []float64{center + rng.NormFloat64()*0.5, center + rng.NormFloat64()*0.5}
	}
	return X, y
}

func newSVC(c float64) *LinearSVC {
	config := DefaultSVMConfig()
	config.C = c
	return NewLinearSVC(config)
}

func TestLinearSVCSeparable(t *testing.T) {
	X, y := blobs(60, 1)
	svc := newSVC(1)

	require.NoError(t, svc.Fit(X, y))
	assert.True(t, svc.Converged)
	assert.Equal(t, []float64{0, 1}, svc.GetClasses())
	assert.Len(t, svc.Coef(), 2)
	assert.Equal(t, y, svc.Predict(X))

	for _, w := range svc.Coef() {
		assert.Greater(t, w, 0.0)
	}

	positive, err := svc.PositiveClass()
	require.NoError(t, err)
	assert.Equal(t, 1.0, positive)
}

func TestLinearSVCOneDimensional(t *testing.T) {
	X := [][]float64{{-2}, {-1}, {1}, {2}}
	y := []float64{-1, -1, 1, 1}

	config := DefaultSVMConfig()
	config.C = 100
	config.ClassWeight = ""
	svc := NewLinearSVC(config)
	require.NoError(t, svc.Fit(X, y))

	assert.Equal(t, y, svc.Predict(X))
	assert.InDelta(t, 0, svc.Intercept(), 0.05)
	scores := svc.DecisionFunction([][]float64{{1}, {-1}})
	assert.InDelta(t, 1, scores[0], 0.05)
	assert.InDelta(t, -1, scores[1], 0.05)
}

func TestLinearSVCDeterministic(t *testing.T) {
	X, y := blobs(40, 7)
	y[0], y[1] = y[1], y[0]

	first := newSVC(0.5)
	second := newSVC(0.5)
	require.NoError(t, first.Fit(X, y))
	require.NoError(t, second.Fit(X, y))

	assert.Equal(t, first.Coef(), second.Coef())
	assert.Equal(t, first.Intercept(), second.Intercept())
}

func TestLinearSVCErrors(t *testing.T) {
	X := [][]float64{{1, 2}, {3, 4}}

	err := newSVC(1).Fit(X, []float64{1, 1})
	assert.ErrorIs(t, err, ErrSingleClass)

	err = newSVC(1).Fit([][]float64{{1}, {2}, {3}}, []float64{0, 1, 2})
	assert.ErrorIs(t, err, ErrNotBinary)

	err = NewLinearSVC(DefaultSVMConfig()).Fit(X, []float64{0, 1})
	assert.ErrorIs(t, err, ErrUnsetC)

	assert.Error(t, newSVC(-1).Fit(X, []float64{0, 1}))
	assert.Error(t, newSVC(1).Fit(X, []float64{0}))
	assert.Error(t, newSVC(1).Fit(nil, nil))
	assert.Error(t, newSVC(1).Fit([][]float64{{1, 2}, {3}}, []float64{0, 1}))

	svc := newSVC(1)
	svc.Config.Penalty = "l1"
	assert.ErrorIs(t, svc.Fit(X, []float64{0, 1}), ErrUnsupportedPenalty)

	_, err = newSVC(1).PositiveClass()
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestBalancedSampleCosts(t *testing.T) {
	svc := newSVC(2)
	cost := svc.sampleCosts([]float64{1, -1, -1, -1})
	assert.Equal(t, []float64{4, 2.0 * 4 / 6, 2.0 * 4 / 6, 2.0 * 4 / 6}, cost)

	svc.Config.ClassWeight = ""
	assert.Equal(t, []float64{2, 2, 2, 2}, svc.sampleCosts([]float64{1, -1, -1, -1}))
}

func TestSetParamsAndClone(t *testing.T) {
	svc := newSVC(1)
	require.NoError(t, svc.SetParams(map[string]any{"C": 3.5, "dual": true}))
	assert.Equal(t, 3.5, svc.GetParams()["C"])
	assert.Equal(t, true, svc.GetParams()["dual"])

	assert.Error(t, svc.SetParams(map[string]any{"C": "big"}))
	assert.Error(t, svc.SetParams(map[string]any{"gamma": 1.0}))

	X, y := blobs(20, 3)
	require.NoError(t, svc.Fit(X, y))

	clone := svc.Clone()
	assert.Equal(t, svc.GetParams(), clone.GetParams())
	assert.Empty(t, clone.Coef())
	assert.Equal(t, make([]float64, 2), clone.Predict(X[:2]))

	svc.Reset()
	assert.Empty(t, svc.Coef())
}

func TestCreateModel(t *testing.T) {
	model, err := CreateModel(ModelConfig{Algorithm: "linearsvc", SVM: SVMConfig{C: 1, FitIntercept: true}})
	require.NoError(t, err)
	assert.Equal(t, "LinearSVC", model.GetName())

	svc := model.(*LinearSVC)
	assert.Equal(t, "l2", svc.Config.Penalty)
	assert.Equal(t, 1e-4, svc.Config.Tol)
	assert.Equal(t, 1000, svc.Config.MaxIter)
	assert.Equal(t, 1.0, svc.Config.InterceptScaling)

	_, err = CreateModel(ModelConfig{Algorithm: "knn"})
	assert.Error(t, err)
}


// noisyGaussian returns n samples of d Gaussian features multiplied by
// scale, labelled by the sign of a fixed direction with 10% label noise.
func noisyGaussian(n, d int, scale float64, seed uint64) ([][]float64, []float64) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		X[i] = make([]float64, d)
		score := 0.0
		for j := range X[i] {
			X[i][j] = rng.NormFloat64() * scale
			score += float64(j+1) * X[i][j]
		}
		if score > 0 {
			y[i] = 1
		}
		if rng.Float64() < 0.1 {
			y[i] = 1 - y[i]
		}
	}
	return X, y
}

// objectiveFor rebuilds the training objective of a fitted classifier.
func objectiveFor(m *LinearSVC, X [][]float64, y []float64) (squaredHinge, []float64) {
	signs := make([]float64, len(y))
	rows := make([][]float64, len(X))
	for i := range X {
		signs[i] = -1
		if y[i] == m.Classes[1] {
			signs[i] = 1
		}
		rows[i] = append(append([]float64(nil), X[i]...), m.Config.InterceptScaling)
	}
	w := append(m.Coef(), m.Intercept()/m.Config.InterceptScaling)
	return squaredHinge{x: rows, y: signs, cost: m.sampleCosts(signs)}, w
}

func TestLinearSVCPrimalReachesOptimumOnUnscaledData(t *testing.T) {
	testCases := []struct {
		name  string
		scale float64
		c     float64
	}{
		{"unit scale small C", 1, 0.01},
		{"scale 10 C 1", 10, 1},
		{"scale 10 C 5", 10, 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			X, y := noisyGaussian(200, 5, tc.scale, 42)
			svc := newSVC(tc.c)
			require.False(t, svc.Config.Dual)
			require.NoError(t, svc.Fit(X, y))

			assert.True(t, svc.Converged)
			assert.Less(t, svc.Iterations, svc.Config.MaxIter)

			obj, w := objectiveFor(svc, X, y)
			assert.LessOrEqual(t, obj.gradNorm(w), 1e-2)
		})
	}
}

func TestLinearSVCPrimalNotWorseThanDual(t *testing.T) {
	X, y := noisyGaussian(200, 5, 10, 9)

	primal := newSVC(1)
	require.NoError(t, primal.Fit(X, y))

	dualConfig := DefaultSVMConfig()
	dualConfig.C = 1
	dualConfig.Dual = true
	dual := NewLinearSVC(dualConfig)
	require.NoError(t, dual.Fit(X, y))

	obj, wPrimal := objectiveFor(primal, X, y)
	_, wDual := objectiveFor(dual, X, y)
	assert.LessOrEqual(t, obj.value(wPrimal), obj.value(wDual)+1e-9)
}

func TestLinearSVCDualAndPrimalAgree(t *testing.T) {
	X, y := noisyGaussian(200, 5, 1, 3)

	primal := newSVC(0.01)
	require.NoError(t, primal.Fit(X, y))

	dualConfig := DefaultSVMConfig()
	dualConfig.C = 0.01
	dualConfig.Dual = true
	dual := NewLinearSVC(dualConfig)
	require.NoError(t, dual.Fit(X, y))
	require.True(t, dual.Converged)

	assert.InDeltaSlice(t, dual.Coef(), primal.Coef(), 1e-3)
	assert.InDelta(t, dual.Intercept(), primal.Intercept(), 1e-3)
}
