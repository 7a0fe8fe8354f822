package persistence

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	lineWidth      = 75
	floatPrecision = 8
)

// FormatWeights renders a weight vector the way NumPy prints a (1, n)
// coefficient array: "[[ 0.5  -1.25]]", elements aligned on the decimal
// point, at most 8 fractional digits, wrapped at 75 columns.
func FormatWeights(w []float64) string {
	return formatArray(w, "[[", "]]")
}

// FormatVector renders a 1-D array the same way: "[0.5  1.25]".
func FormatVector(v []float64) string {
	return formatArray(v, "[", "]")
}

// ParseWeights reads back the output of FormatWeights or FormatVector.
func ParseWeights(text string) ([]float64, error) {
	cleaned := strings.NewReplacer("[", " ", "]", " ").Replace(text)
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no weights found in %q", text)
	}

	weights := make([]float64, len(fields))
	for i, field := range fields {
		val, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight %d: %w", i, err)
		}
		weights[i] = val
	}
	return weights, nil
}

func ReadWeightsFile(filename string) ([]float64, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights: %w", err)
	}
	return ParseWeights(string(data))
}

func formatArray(values []float64, prefix, suffix string) string {
	if len(values) == 0 {
		return prefix + suffix
	}

	words := formatElements(values)
	indent := strings.Repeat(" ", len(prefix))

	var b strings.Builder
	line := prefix
	for i, word := range words {
		limit := lineWidth
		if i == len(words)-1 {
			limit -= len(suffix)
		}
		switch {
		case i == 0:
			line += word
		case len(line)+1+len(word) > limit:
			b.WriteString(strings.TrimRight(line, " "))
			b.WriteString("\n")
			line = indent + word
		default:
			line += " " + word
		}
	}
	b.WriteString(line)
	b.WriteString(suffix)
	return b.String()
}

// formatElements formats every value and pads them to a common layout:
// integer parts right-aligned, fractional parts left-aligned. In exponent
// notation the mantissas are zero-filled to the same number of digits.
func formatElements(values []float64) []string {
	scientific := useScientific(values)

	heads := make([]string, len(values))
	fracs := make([]string, len(values))
	exps := make([]string, len(values))
	headWidth, fracWidth, expWidth := 0, 0, 0
	for i, v := range values {
		heads[i], fracs[i], exps[i] = splitFloat(v, scientific)
		headWidth = max(headWidth, len(heads[i]))
		fracWidth = max(fracWidth, len(fracs[i]))
		expWidth = max(expWidth, len(exps[i]))
	}

	words := make([]string, len(values))
	for i := range values {
		frac := fmt.Sprintf("%-*s", fracWidth, fracs[i])
		if scientific && exps[i] != "" {
			frac = fracs[i] + strings.Repeat("0", fracWidth-len(fracs[i]))
		}
		words[i] = fmt.Sprintf("%*s%s%-*s", headWidth, heads[i], frac, expWidth, exps[i])
	}
	return words
}

// splitFloat returns the part up to and including the decimal point, the
// fractional digits and the exponent. Non-finite values only have a head.
func splitFloat(v float64, scientific bool) (head, frac, exp string) {
	switch {
	case math.IsNaN(v):
		return "nan", "", ""
	case math.IsInf(v, 1):
		return "inf", "", ""
	case math.IsInf(v, -1):
		return "-inf", "", ""
	}

	s := strconv.FormatFloat(v, 'f', floatPrecision, 64)
	if scientific {
		s = strconv.FormatFloat(v, 'e', floatPrecision, 64)
		var exponent string
		s, exponent, _ = strings.Cut(s, "e")
		exp = "e" + exponent
	}
	head, frac, _ = strings.Cut(s, ".")
	return head + ".", strings.TrimRight(frac, "0"), exp
}

// useScientific mirrors NumPy's switch to exponent notation for very large,
// very small or widely spread magnitudes.
func useScientific(values []float64) bool {
	maxAbs, minAbs := 0.0, math.Inf(1)
	for _, v := range values {
		a := math.Abs(v)
		if a == 0 || math.IsNaN(a) || math.IsInf(a, 0) {
			continue
		}
		maxAbs = math.Max(maxAbs, a)
		minAbs = math.Min(minAbs, a)
	}
	if maxAbs == 0 {
		return false
	}
	return maxAbs >= 1e8 || minAbs < 1e-4 || maxAbs/minAbs > 1e3
}

// PyFloat formats a float like Python's repr: shortest round-trip digits,
// always with a decimal point or exponent.
func PyFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	a := math.Abs(v)
	if a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// PyList formats values like Python's str() of a list of floats.
func PyList(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = PyFloat(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
