package dataprocessing

import (
	"time"
)

// ColumnKind is the inferred type of a column. The names follow the dtype
// strings clients already know from spreadsheet tooling.
type ColumnKind string

const (
	KindInt      ColumnKind = "int64"
	KindFloat    ColumnKind = "float64"
	KindBool     ColumnKind = "bool"
	KindDatetime ColumnKind = "datetime64[ns]"
	KindObject   ColumnKind = "object"
)

// IsNumeric reports whether statistics and trends apply to the kind
func (k ColumnKind) IsNumeric() bool {
	return k == KindInt || k == KindFloat
}

// CellKind tags the value held by a Cell
type CellKind uint8

const (
	CellMissing CellKind = iota
	CellInt
	CellFloat
	CellBool
	CellTime
	CellText
)

// Cell is a single typed table value. Only the field matching Kind is set.
type Cell struct {
	Kind  CellKind
	Int   int64
	Float float64
	Bool  bool
	Time  time.Time
	Text  string
}

// IsMissing reports whether the cell holds no value
func (c Cell) IsMissing() bool {
	return c.Kind == CellMissing
}

// Number returns the numeric value of an int or float cell
func (c Cell) Number() (float64, bool) {
	switch c.Kind {
	case CellInt:
		return float64(c.Int), true
	case CellFloat:
		return c.Float, true
	default:
		return 0, false
	}
}

// Value returns the cell as a JSON-friendly value. Missing cells are nil.
func (c Cell) Value() interface{} {
	switch c.Kind {
	case CellInt:
		return c.Int
	case CellFloat:
		return c.Float
	case CellBool:
		return c.Bool
	case CellTime:
		return c.Time.Format(time.RFC3339)
	case CellText:
		return c.Text
	default:
		return nil
	}
}

// Column is a named, typed column of cells
type Column struct {
	Name  string
	Kind  ColumnKind
	Cells []Cell
}

// Numbers returns the non-missing numeric values of the column in row order
func (c *Column) Numbers() []float64 {
	if !c.Kind.IsNumeric() {
		return nil
	}
	values := make([]float64, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if v, ok := cell.Number(); ok {
			values = append(values, v)
		}
	}
	return values
}

// Table is an immutable, column-oriented view of an uploaded file.
// All columns have the same number of cells.
type Table struct {
	columns []Column
	rows    int
}

// NewTable builds a table from already typed columns. Columns shorter than
// the longest one are padded with missing cells.
func NewTable(columns []Column) *Table {
	rows := 0
	for _, c := range columns {
		if len(c.Cells) > rows {
			rows = len(c.Cells)
		}
	}
	cols := make([]Column, len(columns))
	for i, c := range columns {
		cells := make([]Cell, rows)
		copy(cells, c.Cells)
		cols[i] = Column{Name: c.Name, Kind: c.Kind, Cells: cells}
	}
	return &Table{columns: cols, rows: rows}
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int { return t.rows }

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int { return len(t.columns) }

// Columns returns the columns in header order
func (t *Table) Columns() []Column { return t.columns }

// Column returns the named column
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.columns {
		if t.columns[i].Name == name {
			return &t.columns[i], true
		}
	}
	return nil, false
}

// ColumnNames returns the column names in header order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// ColumnTypes maps each column name to its inferred kind
func (t *Table) ColumnTypes() map[string]string {
	types := make(map[string]string, len(t.columns))
	for _, c := range t.columns {
		types[c.Name] = string(c.Kind)
	}
	return types
}

// NumericColumns returns the numeric columns in header order
func (t *Table) NumericColumns() []*Column {
	var out []*Column
	for i := range t.columns {
		if t.columns[i].Kind.IsNumeric() {
			out = append(out, &t.columns[i])
		}
	}
	return out
}

// Preview returns up to n leading rows as column-name keyed records
func (t *Table) Preview(n int) []map[string]interface{} {
	if n > t.rows {
		n = t.rows
	}
	if n < 0 {
		n = 0
	}
	records := make([]map[string]interface{}, n)
	for i := 0; i < n; i++ {
		rec := make(map[string]interface{}, len(t.columns))
		for _, c := range t.columns {
			rec[c.Name] = c.Cells[i].Value()
		}
		records[i] = rec
	}
	return records
}
