// Package dataset holds the in-memory tabular structure flowing
// through the training and serving pipelines, and the ingestion and
// cleaning steps producing it.
package dataset

import (
	"fmt"
	"math"

	xe "github.com/leadscore/leadscore/pkg/errors"
	"github.com/leadscore/leadscore/pkg/utils"
)

// Kind tells how the values of a Column are represented.
type Kind int

const (
	// String columns hold categorical tokens. The empty string marks
	// a missing value.
	String Kind = iota

	// Numeric columns hold float64 values. NaN marks a missing value.
	Numeric
)

// Column is a single named column. Exactly one of Floats or Strings
// is populated, selected by Kind.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Strings []string
}

func NumericColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: Numeric, Floats: values}
}

func StringColumn(name string, values []string) Column {
	return Column{Name: name, Kind: String, Strings: values}
}

func (c Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Floats)
	}
	return len(c.Strings)
}

func (c Column) clone() Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	if c.Floats != nil {
		out.Floats = append([]float64{}, c.Floats...)
	}
	if c.Strings != nil {
		out.Strings = append([]string{}, c.Strings...)
	}
	return out
}

// IsMissingFloat reports whether v is the numeric missing marker.
func IsMissingFloat(v float64) bool {
	return math.IsNaN(v)
}

// IsMissingString reports whether v is the string missing marker.
func IsMissingString(v string) bool {
	return v == ""
}

// MissingString is the token cleaning writes in place of unknown values.
const MissingString = ""

// Frame is an ordered collection of equal-length named columns.
//
// Frames are treated as immutable: every operation returns a new
// Frame and leaves its receiver untouched.
type Frame struct {
	columns []Column
	index   map[string]int
}

// New builds a Frame from columns. All columns must have the same
// length and distinct names.
func New(columns ...Column) (*Frame, error) {
	f := &Frame{index: make(map[string]int, len(columns))}
	rows := -1
	for _, c := range columns {
		if _, dup := f.index[c.Name]; dup {
			return nil, xe.New(fmt.Sprintf("duplicated column name: %s", c.Name))
		}
		if rows < 0 {
			rows = c.Len()
		} else if c.Len() != rows {
			return nil, xe.New(fmt.Sprintf(
				"column %s has %d rows, others have %d", c.Name, c.Len(), rows,
			))
		}
		f.index[c.Name] = len(f.columns)
		f.columns = append(f.columns, c)
	}
	return f, nil
}

func (f *Frame) NumRows() int {
	if len(f.columns) == 0 {
		return 0
	}
	return f.columns[0].Len()
}

func (f *Frame) NumCols() int {
	return len(f.columns)
}

func (f *Frame) Names() []string {
	return utils.Map(f.columns, func(c Column) string { return c.Name })
}

func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

func (f *Frame) Column(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return Column{}, false
	}
	return f.columns[i], true
}

// Clone deep-copies the frame.
func (f *Frame) Clone() *Frame {
	cols := utils.Map(f.columns, func(c Column) Column { return c.clone() })
	cloned, _ := New(cols...)
	return cloned
}

// Drop returns a new frame without the named column.
func (f *Frame) Drop(name string) (*Frame, error) {
	if !f.Has(name) {
		return nil, xe.New(fmt.Sprintf("no such column: %s", name))
	}
	cols := make([]Column, 0, len(f.columns)-1)
	for _, c := range f.columns {
		if c.Name == name {
			continue
		}
		cols = append(cols, c.clone())
	}
	return New(cols...)
}

// WithColumn returns a new frame with col appended. An existing
// column of the same name is replaced in place, keeping its position.
func (f *Frame) WithColumn(col Column) (*Frame, error) {
	if col.Len() != f.NumRows() && f.NumCols() != 0 {
		return nil, xe.New(fmt.Sprintf(
			"column %s has %d rows, frame has %d", col.Name, col.Len(), f.NumRows(),
		))
	}
	cols := utils.Map(f.columns, func(c Column) Column { return c.clone() })
	if i, ok := f.index[col.Name]; ok {
		cols[i] = col
		return New(cols...)
	}
	return New(append(cols, col)...)
}

// SelectRows returns a new frame holding the rows picked by idx, in
// that order. Indices may repeat.
func (f *Frame) SelectRows(idx []int) (*Frame, error) {
	rows := f.NumRows()
	for _, i := range idx {
		if i < 0 || rows <= i {
			return nil, xe.New(fmt.Sprintf("row index %d out of range [0, %d)", i, rows))
		}
	}
	cols := utils.Map(f.columns, func(c Column) Column {
		out := Column{Name: c.Name, Kind: c.Kind}
		if c.Kind == Numeric {
			out.Floats = utils.Map(idx, func(i int) float64 { return c.Floats[i] })
		} else {
			out.Strings = utils.Map(idx, func(i int) string { return c.Strings[i] })
		}
		return out
	})
	return New(cols...)
}

// Row returns one row as a single-row frame, preserving columns.
func (f *Frame) Row(i int) (*Frame, error) {
	return f.SelectRows([]int{i})
}
