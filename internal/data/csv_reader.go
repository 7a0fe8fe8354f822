package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyFile     = errors.New("no data rows in file")
	ErrMalformedRow  = errors.New("malformed row")
	ErrNonNumeric    = errors.New("non-numeric cell")
	ErrTooFewColumns = errors.New("too few columns")
)

// CSVReader loads a headerless delimited file of numeric cells.
type CSVReader struct {
	filename string
	comma    rune
}

func NewCSVReader(filename string) *CSVReader {
	return &CSVReader{filename: filename, comma: ','}
}

func (cr *CSVReader) WithDelimiter(comma rune) *CSVReader {
	cr.comma = comma
	return cr
}

// LoadData parses every cell as an exact decimal. Blank lines and lines
// starting with '#' are skipped; every other row must have the same
// number of cells as the first one.
func (cr *CSVReader) LoadData() ([][]decimal.Decimal, error) {
	file, err := os.Open(cr.filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer file.Close()

	return readDecimals(file, cr.comma)
}

// LoadDataset loads the file and splits it into ids, features and labels.
func (cr *CSVReader) LoadDataset() (*Dataset, error) {
	records, err := cr.LoadData()
	if err != nil {
		return nil, err
	}

	table := make([][]float64, len(records))
	for i, record := range records {
		table[i] = make([]float64, len(record))
		for j, val := range record {
			table[i][j] = val.InexactFloat64()
		}
	}

	ds, err := NewDataset(table)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cr.filename, err)
	}
	return ds, nil
}

func readDecimals(r io.Reader, comma rune) ([][]decimal.Decimal, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.Comment = '#'
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var records [][]decimal.Decimal
	nCols := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}

		line, _ := reader.FieldPos(0)
		if nCols == 0 {
			nCols = len(record)
		} else if len(record) != nCols {
			return nil, fmt.Errorf("%w: line %d has %d columns, expected %d", ErrMalformedRow, line, len(record), nCols)
		}

		row := make([]decimal.Decimal, len(record))
		for j, cell := range record {
			val, err := decimal.NewFromString(strings.TrimSpace(cell))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d, column %d: %q", ErrNonNumeric, line, j+1, cell)
			}
			row[j] = val
		}
		records = append(records, row)
	}

	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	return records, nil
}
