package vizier

import (
	"bytes"
	"encoding/json"
)

// Row is the dynamic record form: column name to value. Numeric values are
// json.Number so that integer and floating point literals survive unchanged.
type Row = map[string]any

// ColumnMetadata describes one column of the result table.
type ColumnMetadata struct {
	Name        string `json:"name"`
	Datatype    string `json:"datatype,omitempty"`
	Description string `json:"description,omitempty"`
	Arraysize   string `json:"arraysize,omitempty"`
	Unit        string `json:"unit,omitempty"`
	UCD         string `json:"ucd,omitempty"`
}

// UnmarshalJSON accepts arraysize as either a string ("*", "8") or a number.
func (c *ColumnMetadata) UnmarshalJSON(data []byte) error {
	type plain ColumnMetadata
	var raw struct {
		plain
		Arraysize json.RawMessage `json:"arraysize"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = ColumnMetadata(raw.plain)
	c.Arraysize = ""

	size := bytes.TrimSpace(raw.Arraysize)
	switch {
	case len(size) == 0 || bytes.Equal(size, []byte("null")):
	case size[0] == '"':
		if err := json.Unmarshal(size, &c.Arraysize); err != nil {
			return err
		}
	default:
		var n json.Number
		if err := json.Unmarshal(size, &n); err != nil {
			return err
		}
		c.Arraysize = n.String()
	}
	return nil
}

// Result holds the column metadata and the decoded rows of one query, in the
// order the service returned them.
type Result[T any] struct {
	Columns []ColumnMetadata
	Rows    []T
}

// Len returns the number of rows.
func (r *Result[T]) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// IsEmpty reports whether the result has no rows.
func (r *Result[T]) IsEmpty() bool { return r.Len() == 0 }

// ColumnNames returns the column names in declaration order.
func (r *Result[T]) ColumnNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.Columns))
	for i, c := range r.Columns {
		names[i] = c.Name
	}
	return names
}
