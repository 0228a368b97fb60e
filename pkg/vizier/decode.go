package vizier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	goreflect "github.com/goccy/go-reflect"
)

const tagName = "vizier"

// rowDecoder coerces one zipped row into T. row is the index used in errors.
type rowDecoder[T any] func(row int, record map[string]json.RawMessage) (T, error)

// field describes how one struct field is filled from a column.
type field struct {
	name     string
	column   string
	index    []int
	typ      string
	optional bool
	nullable bool
}

type structPlan struct {
	fields []field
}

// plans caches struct plans keyed by struct type.
var plans sync.Map

func decoderFor[T any]() rowDecoder[T] {
	if _, ok := any(Row{}).(T); ok {
		return decodeDynamic[T]
	}

	var zero T
	typ := goreflect.TypeOf(&zero).Elem()
	isPtr := false
	if typ.Kind() == goreflect.Ptr && typ.Elem().Kind() == goreflect.Struct {
		typ = typ.Elem()
		isPtr = true
	}
	if typ.Kind() != goreflect.Struct {
		return decodeWhole[T]
	}

	plan := planFor(typ)
	return func(row int, record map[string]json.RawMessage) (T, error) {
		return decodeStruct[T](plan, isPtr, row, record)
	}
}

// decodeDynamic returns the raw name to value mapping.
func decodeDynamic[T any](row int, record map[string]json.RawMessage) (T, error) {
	out := make(Row, len(record))
	for name, raw := range record {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			var zero T
			return zero, &DeserializationError{Row: row, Column: name, Actual: jsonKind(raw), Err: err}
		}
		out[name] = v
	}
	t, _ := any(out).(T)
	return t, nil
}

// decodeWhole re-encodes the row as an object and lets encoding/json (or the
// type's own UnmarshalJSON) handle it.
func decodeWhole[T any](row int, record map[string]json.RawMessage) (T, error) {
	var out T
	obj, err := json.Marshal(record)
	if err != nil {
		return out, &DeserializationError{Row: row, Err: err}
	}
	if err := json.Unmarshal(obj, &out); err != nil {
		return out, &DeserializationError{Row: row, Expected: fmt.Sprintf("%T", out), Actual: "object", Err: err}
	}
	return out, nil
}

func decodeStruct[T any](plan *structPlan, isPtr bool, row int, record map[string]json.RawMessage) (T, error) {
	var out T
	target := reflect.ValueOf(&out).Elem()
	if isPtr {
		target.Set(reflect.New(target.Type().Elem()))
		target = target.Elem()
	}

	for _, f := range plan.fields {
		raw, ok := record[f.column]
		if !ok {
			if f.optional {
				continue
			}
			var zero T
			return zero, &DeserializationError{
				Row: row, Field: f.name, Column: f.column,
				Expected: f.typ, Actual: "missing column",
			}
		}

		if isNull(raw) {
			if f.optional || f.nullable {
				continue
			}
			var zero T
			return zero, &DeserializationError{
				Row: row, Field: f.name, Column: f.column,
				Expected: f.typ, Actual: "null",
			}
		}

		fv := fieldByIndexAlloc(target, f.index)
		if err := json.Unmarshal(raw, fv.Addr().Interface()); err != nil {
			var zero T
			return zero, &DeserializationError{
				Row: row, Field: f.name, Column: f.column,
				Expected: f.typ, Actual: jsonKind(raw), Err: err,
			}
		}
	}

	return out, nil
}

// fieldByIndexAlloc is reflect.Value.FieldByIndex that allocates nil embedded
// struct pointers on the way down.
func fieldByIndexAlloc(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

func planFor(typ goreflect.Type) *structPlan {
	if cached, ok := plans.Load(typ); ok {
		return cached.(*structPlan)
	}
	plan := &structPlan{fields: collectFields(typ, nil, "", false, map[goreflect.Type]bool{typ: true})}
	actual, _ := plans.LoadOrStore(typ, plan)
	return actual.(*structPlan)
}

// collectFields walks exported fields, flattening embedded structs and
// pointers to structs that carry no explicit column name. Fields promoted
// through an embedded pointer are optional. path holds the struct types being
// walked so self-embedding pointers stop the recursion.
func collectFields(typ goreflect.Type, parent []int, prefix string, viaPtr bool, path map[goreflect.Type]bool) []field {
	var fields []field
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		index := append(append([]int(nil), parent...), i)

		column, opts, skip := fieldTag(sf.Tag.Get(tagName), sf.Tag.Get("json"))
		if skip {
			continue
		}

		if sf.Anonymous && column == "" {
			switch {
			case sf.Type.Kind() == goreflect.Struct:
				fields = append(fields, collectFields(sf.Type, index, prefix+sf.Name+".", viaPtr, path)...)
				continue
			case sf.Type.Kind() == goreflect.Ptr && sf.Type.Elem().Kind() == goreflect.Struct:
				// an unexported embedded pointer cannot be allocated
				elem := sf.Type.Elem()
				if sf.PkgPath == "" && !path[elem] {
					path[elem] = true
					fields = append(fields, collectFields(elem, index, prefix+sf.Name+".", true, path)...)
					delete(path, elem)
				}
				continue
			}
		}
		if sf.PkgPath != "" {
			continue
		}

		if column == "" {
			column = sf.Name
		}
		nullable := isNullableKind(sf.Type.Kind())
		fields = append(fields, field{
			name:     prefix + sf.Name,
			column:   column,
			index:    index,
			typ:      sf.Type.String(),
			optional: viaPtr || nullable || opts.has("optional"),
			nullable: nullable,
		})
	}
	return fields
}

type tagOptions []string

func (o tagOptions) has(opt string) bool {
	for _, v := range o {
		if v == opt {
			return true
		}
	}
	return false
}

// fieldTag resolves the column name from the vizier tag, falling back to the
// json tag. Options are only read from the vizier tag.
func fieldTag(vizierTag, jsonTag string) (column string, opts tagOptions, skip bool) {
	if vizierTag == "-" {
		return "", nil, true
	}
	if vizierTag != "" {
		parts := strings.Split(vizierTag, ",")
		column, opts = parts[0], parts[1:]
	}
	if column == "" && jsonTag != "" {
		if jsonTag == "-" {
			return "", opts, true
		}
		column, _, _ = strings.Cut(jsonTag, ",")
	}
	return column, opts, false
}

func isNullableKind(k goreflect.Kind) bool {
	switch k {
	case goreflect.Ptr, goreflect.Slice, goreflect.Map, goreflect.Interface:
		return true
	default:
		return false
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// jsonKind names the JSON type of a raw value for error messages.
func jsonKind(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "empty"
	}
	switch raw[0] {
	case 'n':
		return "null"
	case 't', 'f':
		return "bool"
	case '"':
		return "string"
	case '[':
		return "array"
	case '{':
		return "object"
	default:
		return "number"
	}
}
