package models

import (
	"fmt"

	"go.uber.org/zap"
)

type ModelConfig struct {
	Algorithm string
	SVM       SVMConfig
	Logger    *zap.Logger
}

func CreateModel(config ModelConfig) (Classifier, error) {
	switch config.Algorithm {
	case "linearsvc", "svm":
		svm := config.SVM
		defaults := DefaultSVMConfig()
		if svm.Penalty == "" {
			svm.Penalty = defaults.Penalty
		}
		if svm.Tol <= 0 {
			svm.Tol = defaults.Tol
		}
		if svm.MaxIter <= 0 {
			svm.MaxIter = defaults.MaxIter
		}
		if svm.FitIntercept && svm.InterceptScaling <= 0 {
			svm.InterceptScaling = defaults.InterceptScaling
		}
		return NewLinearSVC(svm).WithLogger(config.Logger), nil

	default:
		return nil, fmt.Errorf("unknown algorithm: %s", config.Algorithm)
	}
}
