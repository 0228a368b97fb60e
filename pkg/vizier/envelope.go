package vizier

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	metadataKey = "metadata"
	dataKey     = "data"
)

// envelope is the JSON wrapper returned by the TAP service with FORMAT=json.
type envelope struct {
	columns []ColumnMetadata
	rows    [][]json.RawMessage
}

// Decode turns a TAP JSON envelope into a Result. Each row is zipped with the
// column names and coerced into T; see the package documentation for the
// field matching rules. When a column name repeats, the later value wins.
// Decoding is all or nothing.
func Decode[T any](body []byte) (*Result[T], error) {
	env, err := parseEnvelope(body)
	if err != nil {
		return nil, err
	}

	dec := decoderFor[T]()

	names := make([]string, len(env.columns))
	for i, c := range env.columns {
		names[i] = c.Name
	}

	rows := make([]T, 0, len(env.rows))
	for i, values := range env.rows {
		record := zipRow(names, values)
		v, err := dec(i, record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, v)
	}

	return &Result[T]{Columns: env.columns, Rows: rows}, nil
}

// parseEnvelope validates the top-level shape and the row arity.
func parseEnvelope(body []byte) (*envelope, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, &MalformedResponseError{Reason: "body is not a JSON object", Err: err}
	}
	if top == nil {
		return nil, &MalformedResponseError{Reason: "body is not a JSON object"}
	}

	rawMeta, err := section(top, metadataKey)
	if err != nil {
		return nil, err
	}
	rawData, err := section(top, dataKey)
	if err != nil {
		return nil, err
	}

	var columns []ColumnMetadata
	if err := json.Unmarshal(rawMeta, &columns); err != nil {
		return nil, &MalformedResponseError{Reason: "metadata is not a list of column descriptions", Err: err}
	}
	for i, c := range columns {
		if c.Name == "" {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("metadata[%d] has no column name", i)}
		}
	}

	var rawRows []json.RawMessage
	if err := json.Unmarshal(rawData, &rawRows); err != nil {
		return nil, &MalformedResponseError{Reason: "data is not a list of rows", Err: err}
	}

	rows := make([][]json.RawMessage, len(rawRows))
	for i, raw := range rawRows {
		var values []json.RawMessage
		if err := json.Unmarshal(raw, &values); err != nil || values == nil {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("data[%d] is not an array", i), Err: err}
		}
		if len(values) != len(columns) {
			return nil, &MalformedResponseError{
				Reason: fmt.Sprintf("data[%d] has %d values but %d columns are declared", i, len(values), len(columns)),
			}
		}
		rows[i] = values
	}

	return &envelope{columns: columns, rows: rows}, nil
}

func section(top map[string]json.RawMessage, key string) (json.RawMessage, error) {
	raw, ok := top[key]
	if !ok {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("missing %q section", key)}
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("%q section is not an array", key)}
	}
	return raw, nil
}

// zipRow pairs column names with positional values. Later duplicates overwrite
// earlier ones.
func zipRow(names []string, values []json.RawMessage) map[string]json.RawMessage {
	record := make(map[string]json.RawMessage, len(names))
	for i, name := range names {
		record[name] = values[i]
	}
	return record
}
