package persistence

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// Summary is the content of the human-readable output file. The score
// fields are lists to keep the file layout of earlier runs, one entry per
// evaluated configuration.
type Summary struct {
	ClassifierName string
	WeightsText    string
	Accuracies     []float64
	Precisions     []float64
	Recalls        []float64
}

// ReportWriter owns the weights file and the summary file for one run.
// Both are created up front and released by Close on every exit path.
type ReportWriter struct {
	weightsPath string
	outputPath  string
	weights     *os.File
	output      *os.File
}

func NewReportWriter(weightsPath, outputPath string) (*ReportWriter, error) {
	weights, err := os.Create(weightsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create weights file: %w", err)
	}

	output, err := os.Create(outputPath)
	if err != nil {
		weights.Close()
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &ReportWriter{
		weightsPath: weightsPath,
		outputPath:  outputPath,
		weights:     weights,
		output:      output,
	}, nil
}

// WriteWeights writes the formatted weight vector and returns the text.
func (rw *ReportWriter) WriteWeights(w []float64) (string, error) {
	text := FormatWeights(w)
	if _, err := rw.weights.WriteString(text); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", rw.weightsPath, err)
	}
	return text, nil
}

func (rw *ReportWriter) WriteSummary(s Summary) error {
	name := s.ClassifierName
	if name == "" {
		name = "SVM"
	}

	if err := writeSummary(rw.output, name, s); err != nil {
		return fmt.Errorf("failed to write %s: %w", rw.outputPath, err)
	}
	return nil
}

func writeSummary(w io.Writer, name string, s Summary) error {
	buf := bufio.NewWriter(w)
	fmt.Fprintf(buf, "%s classifier weights : %s\n", name, s.WeightsText)
	fmt.Fprintf(buf, "\n")
	fmt.Fprintf(buf, "Accuracy scores for %s classifier : %s\n", name, PyList(s.Accuracies))
	fmt.Fprintf(buf, "Precision scores for %s classifier : %s\n", name, PyList(s.Precisions))
	fmt.Fprintf(buf, "Recall scores for %s classifier : %s\n", name, PyList(s.Recalls))
	return buf.Flush()
}

// Close closes both files. It is safe to call more than once.
func (rw *ReportWriter) Close() error {
	var errs []error
	if rw.weights != nil {
		errs = append(errs, rw.weights.Close())
		rw.weights = nil
	}
	if rw.output != nil {
		errs = append(errs, rw.output.Close())
		rw.output = nil
	}
	return errors.Join(errs...)
}
