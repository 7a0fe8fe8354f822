package models

import (
	"svmclassifier/internal/preprocessing"
)

var (
	ErrSingleClass = preprocessing.ErrSingleClass
	ErrNotBinary   = preprocessing.ErrNotBinary
)

type Classifier interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
	DecisionFunction(X [][]float64) []float64
	Coef() []float64
	Intercept() float64
	GetType() string
	GetName() string
	GetParams() map[string]any
	SetParams(params map[string]any) error
	GetClasses() []float64
	PositiveClass() (float64, error)
	Clone() Classifier
	Reset()
}

type BaseModel struct {
	Name    string
	Params  map[string]any
	Classes []float64
}

func (bm *BaseModel) GetType() string {
	return bm.Name
}

func (bm *BaseModel) GetName() string {
	return bm.Name
}

func (bm *BaseModel) GetParams() map[string]any {
	return bm.Params
}

func (bm *BaseModel) GetClasses() []float64 {
	return bm.Classes
}
