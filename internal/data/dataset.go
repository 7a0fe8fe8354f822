package data

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Dataset is the parsed input table: column 0 holds record identifiers,
// the last column holds labels and everything in between is a feature.
type Dataset struct {
	IDs      []float64
	Features *mat.Dense
	Labels   []float64
}

// NewDataset splits a full numeric table into identifiers, features and
// labels. Every row must have the same length of at least three columns.
func NewDataset(table [][]float64) (*Dataset, error) {
	if len(table) == 0 {
		return nil, ErrEmptyFile
	}

	nCols := len(table[0])
	if nCols < 3 {
		return nil, fmt.Errorf("%w: need id, at least one feature and a label, got %d columns", ErrTooFewColumns, nCols)
	}

	nFeatures := nCols - 2
	ids := make([]float64, len(table))
	labels := make([]float64, len(table))
	features := mat.NewDense(len(table), nFeatures, nil)

	for i, row := range table {
		if len(row) != nCols {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrMalformedRow, i+1, len(row), nCols)
		}
		ids[i] = row[0]
		features.SetRow(i, row[1:nCols-1])
		labels[i] = row[nCols-1]
	}

	return &Dataset{IDs: ids, Features: features, Labels: labels}, nil
}

func (d *Dataset) Len() int {
	return len(d.Labels)
}

func (d *Dataset) NumFeatures() int {
	_, c := d.Features.Dims()
	return c
}

// X returns the feature rows. The rows alias the dataset's storage.
func (d *Dataset) X() [][]float64 {
	rows := make([][]float64, d.Len())
	for i := range rows {
		rows[i] = d.Features.RawRowView(i)
	}
	return rows
}

func (d *Dataset) Y() []float64 {
	return d.Labels
}

// WithFeatures returns a copy of the dataset with its feature rows replaced.
// X must have one row per sample and the same number of features.
func (d *Dataset) WithFeatures(X [][]float64) (*Dataset, error) {
	if len(X) != d.Len() {
		return nil, fmt.Errorf("%w: %d feature rows for %d samples", ErrMalformedRow, len(X), d.Len())
	}

	features := mat.NewDense(d.Len(), d.NumFeatures(), nil)
	for i, row := range X {
		if len(row) != d.NumFeatures() {
			return nil, fmt.Errorf("%w: row %d has %d features, expected %d", ErrMalformedRow, i+1, len(row), d.NumFeatures())
		}
		features.SetRow(i, row)
	}

	return &Dataset{
		IDs:      append([]float64(nil), d.IDs...),
		Features: features,
		Labels:   append([]float64(nil), d.Labels...),
	}, nil
}

// Subset copies the given rows, in order, into a new dataset.
func (d *Dataset) Subset(indices []int) *Dataset {
	if len(indices) == 0 {
		return &Dataset{Features: &mat.Dense{}}
	}

	sub := &Dataset{
		IDs:      make([]float64, len(indices)),
		Features: mat.NewDense(len(indices), d.NumFeatures(), nil),
		Labels:   make([]float64, len(indices)),
	}
	for i, idx := range indices {
		sub.IDs[i] = d.IDs[idx]
		sub.Features.SetRow(i, d.Features.RawRowView(idx))
		sub.Labels[i] = d.Labels[idx]
	}
	return sub
}
