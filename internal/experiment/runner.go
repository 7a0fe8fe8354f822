package experiment

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"svmclassifier/internal/config"
	"svmclassifier/internal/data"
	"svmclassifier/internal/evaluation"
	"svmclassifier/internal/jobs"
	"svmclassifier/internal/logging"
	"svmclassifier/internal/models"
	"svmclassifier/internal/persistence"
	"svmclassifier/internal/preprocessing"
)

const classifierName = "SVM"

// Runner executes one training run: load, split, search C, cross-validate,
// score, refit on all rows and write the reports.
type Runner struct {
	Config *config.Config
	Jobs   *jobs.Manager

	logger *zap.Logger
	out    io.Writer
	cyan   func(a ...any) string
	green  func(a ...any) string
}

func NewRunner(cfg *config.Config, logger *zap.Logger, out io.Writer) *Runner {
	return &Runner{
		Config: cfg,
		Jobs:   jobs.NewManager(),
		logger: logging.OrNop(logger),
		out:    out,
		cyan:   color.New(color.FgCyan).SprintFunc(),
		green:  color.New(color.FgGreen).SprintFunc(),
	}
}

type Result struct {
	Samples   int
	Features  int
	TrainSize int
	TestSize  int

	Search *evaluation.SearchResult
	BestC  float64

	FoldScores   []float64
	MeanAccuracy float64
	Precision    float64
	Recall       float64
	Metrics      *evaluation.BinaryMetrics
	CVTime       time.Duration

	Weights     []float64
	Intercept   float64
	WeightsText string

	TotalTime time.Duration
}

type evaluationResult struct {
	foldScores []float64
	mean       float64
	metrics    *evaluation.BinaryMetrics
	elapsed    time.Duration
}

// Run executes the pipeline. Both report files are created before the data
// is read and closed before Run returns, whatever the outcome.
func (r *Runner) Run() (result *Result, err error) {
	if err := r.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	start := time.Now()

	report, err := persistence.NewReportWriter(r.Config.Output.Weights, r.Config.Output.Summary)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := report.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report files: %w", cerr)
		}
	}()

	ds, err := r.loadDataset()
	if err != nil {
		return nil, err
	}

	ds, err = r.preprocess(ds)
	if err != nil {
		return nil, err
	}

	job := r.Jobs.Start("split", "train/test split")
	splitter := evaluation.NewTrainTestSplitter(r.Config.Split.TestSize, r.Config.Split.Seed, true)
	trainIdx, testIdx, err := splitter.SplitIndices(ds.Len())
	if err := r.Jobs.Finish(job, err); err != nil {
		return nil, fmt.Errorf("failed to split data: %w", err)
	}
	trainSet, testSet := ds.Subset(trainIdx), ds.Subset(testIdx)
	XTrain, yTrain := trainSet.X(), trainSet.Y()
	XTest, yTest := testSet.X(), testSet.Y()
	job.AddLog("train %d rows, test %d rows", trainSet.Len(), testSet.Len())

	result = &Result{
		Samples:   ds.Len(),
		Features:  ds.NumFeatures(),
		TrainSize: trainSet.Len(),
		TestSize:  testSet.Len(),
	}

	fmt.Fprintln(r.out, r.cyan(classifierName+" classifier : "))

	search, err := r.searchC(XTrain, yTrain)
	if err != nil {
		return nil, err
	}
	result.Search = search
	result.BestC = search.BestValue

	fmt.Fprintf(r.out, "RandomizedSearchCV took %.2f seconds for %d candidates parameter settings.\n",
		search.Elapsed.Seconds(), r.Config.Search.Iterations)
	fmt.Fprintf(r.out, "Best value of C found on development set :  %s  with score  %s\n",
		persistence.PyFloat(search.BestValue), persistence.PyFloat(search.BestScore))
	fmt.Fprintln(r.out)

	eval, err := r.evaluate(XTrain, yTrain, XTest, yTest, search.BestValue)
	if err != nil {
		return nil, err
	}
	result.FoldScores = eval.foldScores
	result.MeanAccuracy = eval.mean
	result.Metrics = eval.metrics
	result.Precision = eval.metrics.Precision
	result.Recall = eval.metrics.Recall
	result.CVTime = eval.elapsed

	weights, intercept, err := r.refit(ds.X(), ds.Y(), search.BestValue)
	if err != nil {
		return nil, err
	}
	result.Weights = weights
	result.Intercept = intercept

	text, err := report.WriteWeights(weights)
	if err != nil {
		return nil, err
	}
	result.WeightsText = text

	r.printResults(result)

	err = report.WriteSummary(persistence.Summary{
		ClassifierName: classifierName,
		WeightsText:    text,
		Accuracies:     []float64{result.MeanAccuracy},
		Precisions:     []float64{result.Precision},
		Recalls:        []float64{result.Recall},
	})
	if err != nil {
		return nil, err
	}

	result.TotalTime = time.Since(start)
	r.logger.Info("training run finished",
		zap.Duration("elapsed", result.TotalTime),
		zap.String("weights", r.Config.Output.Weights),
		zap.String("summary", r.Config.Output.Summary))

	return result, nil
}

func (r *Runner) loadDataset() (*data.Dataset, error) {
	job := r.Jobs.Start("load", r.Config.Data.Input)

	delimiter := []rune(r.Config.Data.Delimiter)[0]
	ds, err := data.NewCSVReader(r.Config.Data.Input).WithDelimiter(delimiter).LoadDataset()
	if err == nil {
		validator := data.NewDataValidator()
		err = validator.ValidateDataset(ds.X(), ds.Y())
		if err == nil {
			err = validator.ValidateLabels(ds.Y())
		}
	}
	if err := r.Jobs.Finish(job, err); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	stats := data.NewDataValidator().GetDatasetStats(ds)
	job.AddLog("loaded %d samples with %d features", stats.Samples, stats.Features)
	r.logger.Info("dataset loaded",
		zap.String("file", r.Config.Data.Input),
		zap.Int("samples", stats.Samples),
		zap.Int("features", stats.Features),
		zap.Float64s("classes", stats.SortedClasses()))
	for j, fs := range stats.FeatureStats {
		job.AddLog("feature %d: min %s max %s mean %s",
			j, fs.Min.StringFixed(4), fs.Max.StringFixed(4), fs.Mean.StringFixed(4))
		r.logger.Info("feature summary",
			zap.Int("feature", j),
			zap.String("min", fs.Min.String()),
			zap.String("max", fs.Max.String()),
			zap.String("mean", fs.Mean.Round(6).String()),
			zap.String("range", fs.Max.Sub(fs.Min).String()))
	}

	return ds, nil
}

func (r *Runner) preprocess(ds *data.Dataset) (*data.Dataset, error) {
	if r.Config.Preprocess == "raw" {
		return ds, nil
	}
	r.logger.Info("applying preprocessing", zap.String("method", r.Config.Preprocess))
	scaled, err := preprocessing.NewScaler(r.Config.Preprocess).FitTransform(ds.X())
	if err == nil {
		ds, err = ds.WithFeatures(scaled)
	}
	if err != nil {
		return nil, fmt.Errorf("preprocessing failed: %w", err)
	}
	return ds, nil
}

// newClassifier builds the configured classifier with the given C, class
// weighting and formulation.
func (r *Runner) newClassifier(c float64, classWeight string, dual bool) (models.Classifier, error) {
	mc := r.Config.Model
	return models.CreateModel(models.ModelConfig{
		Algorithm: mc.Algorithm,
		Logger:    r.logger,
		SVM: models.SVMConfig{
			Penalty:          mc.Penalty,
			Dual:             dual,
			ClassWeight:      classWeight,
			C:                c,
			Tol:              mc.Tol,
			MaxIter:          mc.MaxIter,
			FitIntercept:     mc.FitIntercept,
			InterceptScaling: mc.InterceptScaling,
			Seed:             mc.Seed,
		},
	})
}

func (r *Runner) searchC(XTrain [][]float64, yTrain []float64) (*evaluation.SearchResult, error) {
	sc := r.Config.Search
	job := r.Jobs.Start("search", "randomized search over C")

	template, err := r.newClassifier(0, r.Config.Model.ClassWeight, r.Config.Model.Dual)
	if err != nil {
		return nil, r.Jobs.Finish(job, err)
	}

	cv := evaluation.NewCrossValidator(sc.Folds, r.Config.Evaluation.Scoring).WithLogger(r.logger)
	search := evaluation.NewRandomizedSearch(template, "C", evaluation.NewExponential(sc.Scale), sc.Iterations, cv, sc.Seed).
		WithLogger(r.logger)

	result, err := search.Fit(XTrain, yTrain)
	if err := r.Jobs.Finish(job, err); err != nil {
		return nil, fmt.Errorf("hyperparameter search failed: %w", err)
	}

	job.AddLog("best C %g with score %g", result.BestValue, result.BestScore)
	r.logger.Info("hyperparameter search finished",
		zap.Float64("best_C", result.BestValue),
		zap.Float64("best_score", result.BestScore),
		zap.Duration("elapsed", result.Elapsed))
	return result, nil
}

// evaluate cross-validates the tuned classifier on the test split and runs
// one fit/predict pass for precision and recall. With precision_fit "eval"
// that pass fits on the same test split it predicts, which leaks test data
// into the fit; it is kept to reproduce earlier results.
func (r *Runner) evaluate(XTrain [][]float64, yTrain []float64, XTest [][]float64, yTest []float64, c float64) (*evaluationResult, error) {
	ec := r.Config.Evaluation
	job := r.Jobs.Start("evaluate", fmt.Sprintf("%d-fold cross-validation", ec.Folds))

	clf, err := r.newClassifier(c, r.Config.Model.ClassWeight, r.Config.Model.Dual)
	if err != nil {
		return nil, r.Jobs.Finish(job, err)
	}

	start := time.Now()
	cv := evaluation.NewCrossValidator(ec.Folds, ec.Scoring).WithLogger(r.logger)
	scores, err := cv.CrossValScore(clf, XTest, yTest)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("cross-validation failed: %w", r.Jobs.Finish(job, err))
	}
	mean, std := evaluation.MeanStd(scores)

	fitX, fitY := XTest, yTest
	if ec.PrecisionFit == "train" {
		fitX, fitY = XTrain, yTrain
	}
	if err := clf.Fit(fitX, fitY); err != nil {
		return nil, fmt.Errorf("precision/recall fit failed: %w", r.Jobs.Finish(job, err))
	}

	positive, err := clf.PositiveClass()
	var metrics *evaluation.BinaryMetrics
	if err == nil {
		metrics, err = evaluation.CalculateBinaryMetrics(yTest, clf.Predict(XTest), positive)
	}
	if err := r.Jobs.Finish(job, err); err != nil {
		return nil, fmt.Errorf("scoring failed: %w", err)
	}
	r.logger.Debug("precision/recall pass", zap.String("metrics", metrics.FormatMetrics()))

	job.AddLog("mean %s %.4f +/- %.4f", ec.Scoring, mean, std)
	r.logger.Info("cross-validation finished",
		zap.Float64s("scores", scores),
		zap.Float64("mean", mean),
		zap.Float64("std", std),
		zap.Float64("precision", metrics.Precision),
		zap.Float64("recall", metrics.Recall),
		zap.String("precision_fit", ec.PrecisionFit))

	return &evaluationResult{foldScores: scores, mean: mean, metrics: metrics, elapsed: elapsed}, nil
}

// refit trains a fresh classifier on every row, unweighted and in the
// primal formulation, to extract the final weight vector.
func (r *Runner) refit(X [][]float64, y []float64, c float64) ([]float64, float64, error) {
	job := r.Jobs.Start("refit", "full-data refit")

	clf, err := r.newClassifier(c, "", false)
	if err == nil {
		err = clf.Fit(X, y)
	}
	if err := r.Jobs.Finish(job, err); err != nil {
		return nil, 0, fmt.Errorf("full-data refit failed: %w", err)
	}

	r.logger.Info("full-data refit finished",
		zap.Int("samples", len(X)),
		zap.Float64("intercept", clf.Intercept()))
	return clf.Coef(), clf.Intercept(), nil
}

func (r *Runner) printResults(result *Result) {
	folds := r.Config.Evaluation.Folds
	fmt.Fprintf(r.out, "Mean accuracy values for  %d  tests :  %s\n", folds, persistence.FormatVector(result.FoldScores))
	fmt.Fprintf(r.out, "Average accuracy :  %s\n", r.green(persistence.PyFloat(result.MeanAccuracy)))
	fmt.Fprintf(r.out, "Precision :  %s\n", persistence.PyFloat(result.Precision))
	fmt.Fprintf(r.out, "Recall :  %s\n", persistence.PyFloat(result.Recall))
	fmt.Fprintf(r.out, "Weight vector :  %s\n", result.WeightsText)
	fmt.Fprintf(r.out, "Training time for  %d -fold cross-validation :  %s  seconds\n", folds, persistence.PyFloat(result.CVTime.Seconds()))
	fmt.Fprintln(r.out)
}
