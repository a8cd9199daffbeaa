package gridex

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const tagKey = "gridex"

var timeType = reflect.TypeOf(time.Time{})

// schemaMeta holds parsed struct tag metadata, cached per Table.
type schemaMeta struct {
	typ      reflect.Type // struct type for reconstruction
	ptr      bool         // T is *struct
	resource Resource

	// Mapping from struct field index to the row key it decodes from.
	columns []fieldMapping
}

type fieldMapping struct {
	structIdx int
	key       string
}

// ResourceFor derives a Resource declaration from T's struct tags:
//
//	`gridex:"column[,pk][,softdelete][,tenant][,searchable][,sortable][,nofilter][,kind=K][,name=N]"`
//
// The column defaults to the Go field name. The public name defaults to
// the Go field name with a lowercase first letter; the kind is inferred from
// the Go type unless kind= is given. pk, softdelete and tenant mark
// structural columns rather than declared fields.
func ResourceFor[T any](name, table string) (Resource, error) {
	meta, err := parseSchema[T](name, table)
	if err != nil {
		return Resource{}, err
	}
	return meta.resource, nil
}

// parseSchema reflects on T and extracts gridex struct tag metadata.
func parseSchema[T any](name, table string) (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	isPtr := t != nil && t.Kind() == reflect.Pointer
	if isPtr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("gridex: type %v is not a struct", t)
	}

	meta := &schemaMeta{typ: t, ptr: isPtr, resource: Resource{Name: name, Table: table}}
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" || !f.IsExported() {
			continue
		}
		if err := applyTag(meta, i, f, tag); err != nil {
			return nil, err
		}
	}

	if len(meta.resource.Fields) == 0 {
		return nil, fmt.Errorf("gridex: %s declares no gridex fields", t)
	}
	return meta, nil
}

// applyTag processes a single struct field's gridex tag.
func applyTag(meta *schemaMeta, idx int, sf reflect.StructField, tag string) error {
	parts := strings.Split(tag, ",")
	column := strings.TrimSpace(parts[0])
	if column == "" {
		column = sf.Name
	}

	field := Field{Name: lowerFirst(sf.Name), Column: column}
	var kind FieldKind
	structural := false

	for _, mod := range parts[1:] {
		mod = strings.TrimSpace(mod)
		key, value, _ := strings.Cut(mod, "=")
		switch key {
		case "pk":
			if meta.resource.PrimaryKey != "" {
				return fmt.Errorf("gridex: duplicate pk tag on field %s", sf.Name)
			}
			meta.resource.PrimaryKey = column
			structural = true
		case "softdelete":
			meta.resource.SoftDeleteColumn = column
			structural = true
		case "tenant":
			meta.resource.TenantColumn = column
			structural = true
		case "searchable":
			field.Searchable = true
		case "sortable":
			field.Sortable = true
		case "nofilter":
			field.NotFilterable = true
		case "kind":
			kind = FieldKind(value)
		case "name":
			if value == "" {
				return fmt.Errorf("gridex: empty name on field %s", sf.Name)
			}
			field.Name = value
		case "":
		default:
			return fmt.Errorf("gridex: unknown modifier %q on field %s", mod, sf.Name)
		}
	}

	if structural {
		// The primary key is always selected and keyed by its column.
		if column == meta.resource.PrimaryKey {
			meta.columns = append(meta.columns, fieldMapping{structIdx: idx, key: column})
		}
		return nil
	}

	if kind == "" {
		var err error
		kind, err = inferKind(sf.Type)
		if err != nil {
			return fmt.Errorf("gridex: field %s: %w", sf.Name, err)
		}
	}
	field.Kind = kind
	meta.resource.Fields = append(meta.resource.Fields, field)
	meta.columns = append(meta.columns, fieldMapping{structIdx: idx, key: field.Name})
	return nil
}

func inferKind(t reflect.Type) (FieldKind, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return KindDate, nil
	}
	switch t.Kind() {
	case reflect.String:
		return KindText, nil
	case reflect.Bool:
		return KindBoolean, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumeric, nil
	}
	return "", fmt.Errorf("cannot infer kind for %s (use kind=)", t)
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[n:]
}
