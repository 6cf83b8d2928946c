package postgres

import (
	"reflect"
	"sync"
)

// column is one "db"-tagged field, reached through embedded structs by path.
type column struct {
	name string
	path []int
}

// columnCache maps a struct type to its []column.
var columnCache sync.Map

// columnsOf returns the tagged fields of t in declaration order, embedded
// structs such as entity.BaseEntity flattened in place.
func columnsOf(t reflect.Type) []column {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := columnCache.Load(t); ok {
		return cached.([]column)
	}

	var cols []column
	if t.Kind() == reflect.Struct {
		cols = appendColumns(cols, t, nil)
	}
	columnCache.Store(t, cols)
	return cols
}

func appendColumns(cols []column, t reflect.Type, prefix []int) []column {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		path := append(append([]int(nil), prefix...), i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			cols = appendColumns(cols, f.Type, path)
			continue
		}
		if tag := f.Tag.Get("db"); tag != "" && tag != "-" {
			cols = append(cols, column{name: tag, path: path})
		}
	}
	return cols
}

// ExtractDBColumns lists the column names of T from its "db" tags.
//
//	columns := ExtractDBColumns[counterparty.Counterparty]()
//	// ["id", "version", "created_at", "updated_at", "kind", "name", ...]
func ExtractDBColumns[T any]() []string {
	cols := columnsOf(reflect.TypeOf((*T)(nil)).Elem())
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names
}

// StructToMap converts a struct, or a pointer to one, to a column map.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	cols := columnsOf(rv.Type())
	res := make(map[string]any, len(cols))
	for _, c := range cols {
		res[c.name] = rv.FieldByIndex(c.path).Interface()
	}
	return res
}
