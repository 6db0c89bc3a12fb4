package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds a single-row insert from the `db` tags of model.
func InsertModel(table string, model any) (string, []any, error) {
	value, err := structValue(reflect.ValueOf(model))
	if err != nil {
		return "", nil, err
	}
	return insertStructs(table, value.Type(), []reflect.Value{value})
}

// InsertModels builds one multi-row insert from a batch of tagged structs.
// Columns follow the field order of T.
func InsertModels[T any](table string, models []T) (string, []any, error) {
	if len(models) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}
	values := make([]reflect.Value, 0, len(models))
	for i := range models {
		value, err := structValue(reflect.ValueOf(models[i]))
		if err != nil {
			return "", nil, fmt.Errorf("model %d: %w", i, err)
		}
		values = append(values, value)
	}
	return insertStructs(table, values[0].Type(), values)
}

func insertStructs(table string, typ reflect.Type, values []reflect.Value) (string, []any, error) {
	columns, indexes := taggedFields(typ)
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("model %s has no db columns", typ.Name())
	}

	builder := InsertInto(table).Columns(columns...)
	for _, value := range values {
		row := make([]any, len(indexes))
		for i, idx := range indexes {
			row[i] = value.Field(idx).Interface()
		}
		builder.Values(row...)
	}
	return builder.ToSQL()
}

func structValue(value reflect.Value) (reflect.Value, error) {
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return reflect.Value{}, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("model must be struct, got %s", value.Kind())
	}
	return value, nil
}

// taggedFields lists exported fields carrying a db column name, skipping
// `db:"-"`.
func taggedFields(typ reflect.Type) ([]string, []int) {
	columns := make([]string, 0, typ.NumField())
	indexes := make([]int, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		column, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		column = strings.TrimSpace(column)
		if column == "" || column == "-" {
			continue
		}
		columns = append(columns, column)
		indexes = append(indexes, i)
	}
	return columns, indexes
}
