package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	xe "github.com/leadscore/leadscore/pkg/errors"
)

// Field declares how one column of the raw file is parsed.
type Field struct {
	Name string
	Kind Kind
}

// Load reads a semicolon-delimited file with a header row into a
// Frame holding one column per declared field.
//
// Columns present in the file but not declared are dropped. A
// declared field missing from the header, an unreadable path or a
// malformed row is an error; ingestion has no fallback.
func Load(path string, fields []Field) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, xe.WrapWithNote(fmt.Sprintf("can not open raw dataset %s", path), err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.Comma = ';'

	header, err := r.Read()
	if err != nil {
		return nil, xe.WrapWithNote("can not read header row", err)
	}
	position := map[string]int{}
	for i, name := range header {
		position[name] = i
	}

	for _, field := range fields {
		if _, ok := position[field.Name]; !ok {
			return nil, xe.New(fmt.Sprintf("declared column %s is not in %s", field.Name, path))
		}
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, xe.WrapWithNote("malformed raw dataset", err)
	}

	columns := make([]Column, len(fields))
	for i, field := range fields {
		at := position[field.Name]
		switch field.Kind {
		case Numeric:
			values := make([]float64, len(records))
			for row, record := range records {
				v, err := strconv.ParseFloat(record[at], 64)
				if err != nil {
					return nil, xe.WrapWithNote(fmt.Sprintf(
						"column %s row %d: not a number", field.Name, row+1,
					), err)
				}
				values[row] = v
			}
			columns[i] = NumericColumn(field.Name, values)
		default:
			values := make([]string, len(records))
			for row, record := range records {
				values[row] = record[at]
			}
			columns[i] = StringColumn(field.Name, values)
		}
	}

	return New(columns...)
}
