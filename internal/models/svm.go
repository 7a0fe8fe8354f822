package models

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"svmclassifier/internal/preprocessing"
)

var (
	ErrUnsetC             = errors.New("regularization constant C is not set")
	ErrUnsupportedPenalty = errors.New("unsupported penalty")
	ErrNotFitted          = errors.New("model is not fitted")
)

// projected gradients below this are treated as zero
const pgEps = 1e-12

type SVMConfig struct {
	Penalty          string
	Dual             bool
	ClassWeight      string
	C                float64
	Tol              float64
	MaxIter          int
	FitIntercept     bool
	InterceptScaling float64
	Seed             uint64
}

func DefaultSVMConfig() SVMConfig {
	return SVMConfig{
		Penalty:          "l2",
		Dual:             false,
		ClassWeight:      "balanced",
		Tol:              1e-4,
		MaxIter:          1000,
		FitIntercept:     true,
		InterceptScaling: 1,
	}
}

func (c SVMConfig) Validate() error {
	if c.C == 0 {
		return ErrUnsetC
	}
	if c.C < 0 || math.IsNaN(c.C) || math.IsInf(c.C, 0) {
		return fmt.Errorf("C must be a positive finite number, got %v", c.C)
	}
	if c.Penalty != "l2" {
		return fmt.Errorf("%w: %q", ErrUnsupportedPenalty, c.Penalty)
	}
	switch c.ClassWeight {
	case "", "balanced":
	default:
		return fmt.Errorf("unknown class weight: %q", c.ClassWeight)
	}
	if c.Tol <= 0 {
		return fmt.Errorf("tol must be positive, got %v", c.Tol)
	}
	if c.MaxIter <= 0 {
		return fmt.Errorf("max_iter must be positive, got %d", c.MaxIter)
	}
	if c.FitIntercept && c.InterceptScaling <= 0 {
		return fmt.Errorf("intercept_scaling must be positive, got %v", c.InterceptScaling)
	}
	return nil
}

// LinearSVC is a binary linear support-vector classifier with an L2 penalty
// and squared hinge loss:
//
//	min_w 1/2 w'w + sum_i C_i max(0, 1 - y_i w'x_i)^2
//
// When FitIntercept is set each sample is augmented with InterceptScaling
// and the last weight is the (regularized) bias. With Dual set the problem
// is solved by dual coordinate descent, otherwise the primal is minimized
// with L-BFGS.
type LinearSVC struct {
	BaseModel
	Config     SVMConfig
	Weights    []float64
	Bias       float64
	Iterations int
	Converged  bool

	encoder *preprocessing.LabelEncoder
	logger  *zap.Logger
}

func NewLinearSVC(config SVMConfig) *LinearSVC {
	svc := &LinearSVC{
		Config: config,
		logger: zap.NewNop(),
		BaseModel: BaseModel{
			Name: "LinearSVC",
		},
	}
	svc.syncParams()
	return svc
}

func (m *LinearSVC) WithLogger(logger *zap.Logger) *LinearSVC {
	if logger != nil {
		m.logger = logger
	}
	return m
}

func (m *LinearSVC) syncParams() {
	m.Params = map[string]any{
		"C":            m.Config.C,
		"penalty":      m.Config.Penalty,
		"dual":         m.Config.Dual,
		"class_weight": m.Config.ClassWeight,
		"tol":          m.Config.Tol,
		"max_iter":     m.Config.MaxIter,
	}
}

func (m *LinearSVC) SetParams(params map[string]any) error {
	for key, value := range params {
		var ok bool
		switch key {
		case "C":
			m.Config.C, ok = value.(float64)
		case "penalty":
			m.Config.Penalty, ok = value.(string)
		case "dual":
			m.Config.Dual, ok = value.(bool)
		case "class_weight":
			m.Config.ClassWeight, ok = value.(string)
		case "tol":
			m.Config.Tol, ok = value.(float64)
		case "max_iter":
			m.Config.MaxIter, ok = value.(int)
		default:
			return fmt.Errorf("unknown parameter %q for %s", key, m.Name)
		}
		if !ok {
			return fmt.Errorf("invalid value %v (%T) for parameter %q", value, value, key)
		}
	}
	m.syncParams()
	return nil
}

func (m *LinearSVC) Clone() Classifier {
	return NewLinearSVC(m.Config).WithLogger(m.logger)
}

func (m *LinearSVC) Reset() {
	m.Weights = nil
	m.Bias = 0
	m.Classes = nil
	m.Iterations = 0
	m.Converged = false
	m.encoder = nil
}

func (m *LinearSVC) Fit(X [][]float64, y []float64) error {
	if err := m.Config.Validate(); err != nil {
		return err
	}
	if len(X) == 0 {
		return fmt.Errorf("cannot fit %s on an empty dataset", m.Name)
	}
	if len(X) != len(y) {
		return fmt.Errorf("x and y must have the same length: %d vs %d", len(X), len(y))
	}

	encoder := preprocessing.NewLabelEncoder()
	signs, err := encoder.FitTransform(y)
	if err != nil {
		return err
	}

	nFeatures := len(X[0])
	width := nFeatures
	if m.Config.FitIntercept {
		width++
	}
	rows := make([][]float64, len(X))
	for i, sample := range X {
		if len(sample) != nFeatures {
			return fmt.Errorf("inconsistent feature count at sample %d: expected %d, got %d", i, nFeatures, len(sample))
		}
		rows[i] = make([]float64, width)
		copy(rows[i], sample)
		if m.Config.FitIntercept {
			rows[i][nFeatures] = m.Config.InterceptScaling
		}
	}

	cost := m.sampleCosts(signs)
	var (
		w         []float64
		iters     int
		converged bool
	)
	if m.Config.Dual {
		rng := rand.New(rand.NewPCG(m.Config.Seed, m.Config.Seed))
		w, iters, converged = solveL2LossDual(rows, signs, cost, m.Config.Tol, m.Config.MaxIter, rng)
	} else {
		w, iters, converged, err = solveL2LossPrimal(rows, signs, cost, m.Config.Tol, m.Config.MaxIter)
		if w == nil {
			return fmt.Errorf("primal solver failed: %w", err)
		}
		if err != nil {
			m.logger.Debug("primal solver stopped early", zap.Error(err))
		}
	}

	m.Reset()
	m.encoder = encoder
	m.Classes = encoder.Classes
	m.Weights = w[:nFeatures]
	if m.Config.FitIntercept {
		m.Bias = w[nFeatures] * m.Config.InterceptScaling
	}
	m.Iterations = iters
	m.Converged = converged

	if !converged {
		m.logger.Warn("solver did not converge, increase max_iter",
			zap.Float64("C", m.Config.C),
			zap.Int("max_iter", m.Config.MaxIter))
	}
	m.logger.Debug("fitted linear svm",
		zap.Float64("C", m.Config.C),
		zap.Int("samples", len(X)),
		zap.Bool("dual", m.Config.Dual),
		zap.Int("iterations", iters),
		zap.Bool("converged", converged))

	return nil
}

// sampleCosts returns C_i for every sample. With balanced class weights
// each class gets weight n / (2 * n_class).
func (m *LinearSVC) sampleCosts(signs []float64) []float64 {
	cost := make([]float64, len(signs))
	var nPos, nNeg float64
	for _, s := range signs {
		if s > 0 {
			nPos++
		} else {
			nNeg++
		}
	}
	n := float64(len(signs))

	for i, s := range signs {
		cost[i] = m.Config.C
		if m.Config.ClassWeight == "balanced" {
			if s > 0 {
				cost[i] *= n / (2 * nPos)
			} else {
				cost[i] *= n / (2 * nNeg)
			}
		}
	}
	return cost
}

// solveL2LossDual runs dual coordinate descent for the squared hinge loss.
// The dual is
//
//	min_a 1/2 a'(Q + D)a - e'a,  a >= 0,  D_ii = 1/(2 C_i)
//
// with w = sum_i a_i y_i x_i kept up to date after every coordinate step.
// It stops once the spread of projected gradients over an epoch drops to tol.
func solveL2LossDual(x [][]float64, y, cost []float64, tol float64, maxIter int, rng *rand.Rand) ([]float64, int, bool) {
	n := len(x)
	w := make([]float64, len(x[0]))
	alpha := make([]float64, n)
	diag := make([]float64, n)
	qd := make([]float64, n)
	for i := range x {
		diag[i] = 0.5 / cost[i]
		qd[i] = diag[i] + floats.Dot(x[i], x[i])
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	for iter := 0; iter < maxIter; iter++ {
		rng.Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		pgMax, pgMin := math.Inf(-1), math.Inf(1)
		for _, i := range order {
			g := y[i]*floats.Dot(w, x[i]) - 1 + diag[i]*alpha[i]

			pg := g
			if alpha[i] == 0 && g > 0 {
				pg = 0
			}
			pgMax = math.Max(pgMax, pg)
			pgMin = math.Min(pgMin, pg)

			if math.Abs(pg) > pgEps {
				old := alpha[i]
				alpha[i] = math.Max(old-g/qd[i], 0)
				floats.AddScaled(w, (alpha[i]-old)*y[i], x[i])
			}
		}

		if pgMax-pgMin <= tol {
			return w, iter + 1, true
		}
	}

	return w, maxIter, false
}

func (m *LinearSVC) DecisionFunction(X [][]float64) []float64 {
	scores := make([]float64, len(X))
	if m.Weights == nil {
		return scores
	}
	for i, sample := range X {
		scores[i] = floats.Dot(m.Weights, sample) + m.Bias
	}
	return scores
}

func (m *LinearSVC) Predict(X [][]float64) []float64 {
	predictions := make([]float64, len(X))
	if m.encoder == nil {
		return predictions
	}
	for i, score := range m.DecisionFunction(X) {
		predictions[i] = m.encoder.Decode(score)
	}
	return predictions
}

func (m *LinearSVC) Coef() []float64 {
	coef := make([]float64, len(m.Weights))
	copy(coef, m.Weights)
	return coef
}

func (m *LinearSVC) Intercept() float64 {
	return m.Bias
}

// PositiveClass returns the label predicted for positive decision values.
func (m *LinearSVC) PositiveClass() (float64, error) {
	if m.encoder == nil {
		return 0, ErrNotFitted
	}
	return m.encoder.Positive(), nil
}
