package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"svmclassifier/internal/preprocessing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resultat.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDataset(t *testing.T) {
	path := writeFile(t, "1,0.5,2,0\n2,1.5,-3,1\n\n3, 2.5e1,4,1\n")

	ds, err := NewCSVReader(path).LoadDataset()
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 2, ds.NumFeatures())
	assert.Equal(t, []float64{1, 2, 3}, ds.IDs)
	assert.Equal(t, []float64{0, 1, 1}, ds.Y())
	assert.Equal(t, [][]float64{{0.5, 2}, {1.5, -3}, {25, 4}}, ds.X())
}

func TestLoadDatasetDelimiter(t *testing.T) {
	path := writeFile(t, "1;0.5;0\n2;1.5;1\n")

	ds, err := NewCSVReader(path).WithDelimiter(';').LoadDataset()
	require.NoError(t, err)
	assert.Equal(t, 1, ds.NumFeatures())
}

func TestLoadDatasetErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    error
	}{
		{"inconsistent row length", "1,2,3,0\n2,3,1\n", ErrMalformedRow},
		{"non numeric cell", "1,2,abc,0\n", ErrNonNumeric},
		{"empty cell", "1,2,,0\n", ErrNonNumeric},
		{"empty file", "\n\n", ErrEmptyFile},
		{"two columns", "1,0\n2,1\n", ErrTooFewColumns},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCSVReader(writeFile(t, tc.content)).LoadDataset()
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLoadDatasetMissingFile(t *testing.T) {
	_, err := NewCSVReader(filepath.Join(t.TempDir(), "absent.csv")).LoadDataset()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSubset(t *testing.T) {
	ds, err := NewDataset([][]float64{
		{10, 1, 2, 0},
		{11, 3, 4, 1},
		{12, 5, 6, 0},
	})
	require.NoError(t, err)

	sub := ds.Subset([]int{2, 0})
	assert.Equal(t, []float64{12, 10}, sub.IDs)
	assert.Equal(t, [][]float64{{5, 6}, {1, 2}}, sub.X())
	assert.Equal(t, []float64{0, 0}, sub.Y())

	sub.Features.Set(0, 0, 99)
	assert.Equal(t, 5.0, ds.Features.At(2, 0))

	empty := ds.Subset(nil)
	assert.Equal(t, 0, empty.Len())
}

func TestWithFeatures(t *testing.T) {
	ds, err := NewDataset([][]float64{
		{10, 1, 2, 0},
		{11, 3, 4, 1},
	})
	require.NoError(t, err)

	scaled, err := ds.WithFeatures([][]float64{{0, 0}, {1, 1}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 0}, {1, 1}}, scaled.X())
	assert.Equal(t, ds.IDs, scaled.IDs)
	assert.Equal(t, ds.Y(), scaled.Y())
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, ds.X())

	_, err = ds.WithFeatures([][]float64{{0, 0}})
	assert.ErrorIs(t, err, ErrMalformedRow)
	_, err = ds.WithFeatures([][]float64{{0, 0}, {1}})
	assert.ErrorIs(t, err, ErrMalformedRow)
}

func TestValidator(t *testing.T) {
	dv := NewDataValidator()

	assert.NoError(t, dv.ValidateDataset([][]float64{{1, 2}, {3, 4}}, []float64{0, 1}))
	assert.Error(t, dv.ValidateDataset(nil, nil))
	assert.Error(t, dv.ValidateDataset([][]float64{{1, 2}}, []float64{0, 1}))
	assert.Error(t, dv.ValidateDataset([][]float64{{1, 2}, {3}}, []float64{0, 1}))

	assert.NoError(t, dv.ValidateLabels([]float64{0, 1, 1}))
	assert.ErrorIs(t, dv.ValidateLabels([]float64{1, 1}), preprocessing.ErrSingleClass)
	assert.ErrorIs(t, dv.ValidateLabels([]float64{0, 1, 2}), preprocessing.ErrNotBinary)
}

func TestDatasetStats(t *testing.T) {
	ds, err := NewDataset([][]float64{
		{1, 1, 10, 0},
		{2, 2, 20, 1},
		{3, 3, 60, 1},
	})
	require.NoError(t, err)

	stats := NewDataValidator().GetDatasetStats(ds)
	assert.Equal(t, 3, stats.Samples)
	assert.Equal(t, 2, stats.Features)
	assert.Equal(t, 2, stats.Classes)
	assert.Equal(t, map[float64]int{0: 1, 1: 2}, stats.ClassDistribution)
	assert.Equal(t, []float64{0, 1}, stats.SortedClasses())
	assert.Equal(t, "1", stats.FeatureStats[0].Min.String())
	assert.Equal(t, "60", stats.FeatureStats[1].Max.String())
	assert.Equal(t, "30", stats.FeatureStats[1].Mean.String())
}
