package gridex

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// Table is a generic, schema-first listing handle backed by a Client.
// Schema is inferred from T's struct tags at construction time.
type Table[T any] struct {
	name   string
	client *Client
	meta   *schemaMeta
}

// Page is one page of a typed listing. Items is set for flat and search
// views, Groups for grouped views.
type Page[T any] struct {
	Items      []T
	Groups     []Group
	TotalCount *int64
	GroupCount *int64
	Summary    []any
}

// NewTable creates a typed handle for a declared resource. Declare the
// resource with WithResource(ResourceFor[T](...)) or a resources file.
func NewTable[T any](client *Client, resourceName string) (*Table[T], error) {
	meta, err := parseSchema[T](resourceName, resourceName)
	if err != nil {
		return nil, fmt.Errorf("new table %q: %w", resourceName, err)
	}
	return &Table[T]{name: resourceName, client: client, meta: meta}, nil
}

// Resource returns the declaration derived from T.
func (tb *Table[T]) Resource() Resource { return tb.meta.resource }

// List runs one listing request and decodes rows into T.
func (tb *Table[T]) List(ctx context.Context, p Params) (*Page[T], error) {
	resp, err := tb.client.List(ctx, tb.name, p)
	if err != nil {
		return nil, err
	}
	page := &Page[T]{
		Groups:     resp.Groups,
		TotalCount: resp.TotalCount,
		GroupCount: resp.GroupCount,
		Summary:    resp.Summary,
	}
	if resp.Rows != nil {
		page.Items = make([]T, 0, len(resp.Rows))
	}
	for i, row := range resp.Rows {
		item, err := tb.meta.decode(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		typed, ok := item.(T)
		if !ok {
			return nil, fmt.Errorf("row %d: type assertion failed", i)
		}
		page.Items = append(page.Items, typed)
	}
	return page, nil
}

// decode builds a T (or *T) from a listing row.
func (m *schemaMeta) decode(row map[string]any) (any, error) {
	ptr := reflect.New(m.typ)
	v := ptr.Elem()
	for _, fm := range m.columns {
		raw, ok := row[fm.key]
		if !ok {
			continue
		}
		if err := setValue(v.Field(fm.structIdx), raw); err != nil {
			return nil, fmt.Errorf("field %s: %w", m.typ.Field(fm.structIdx).Name, err)
		}
	}
	if m.ptr {
		return ptr.Interface(), nil
	}
	return v.Interface(), nil
}

// setValue assigns a driver or JSON value to a struct field, converting
// between the representations SQL drivers return.
func setValue(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	if dst.Kind() == reflect.Pointer {
		elem := reflect.New(dst.Type().Elem())
		if err := setValue(elem.Elem(), v); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	}
	if dst.Type() == timeType {
		t, err := toTime(v)
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(t))
		return nil
	}

	switch dst.Kind() {
	case reflect.String:
		switch x := v.(type) {
		case string:
			dst.SetString(x)
		case time.Time:
			dst.SetString(x.Format(time.RFC3339Nano))
		default:
			dst.SetString(fmt.Sprint(x))
		}
		return nil
	case reflect.Bool:
		b, err := toBool(v)
		if err != nil {
			return err
		}
		dst.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		dst.SetInt(int64(f))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		if f < 0 {
			return fmt.Errorf("negative value %v for unsigned field", f)
		}
		dst.SetUint(uint64(f))
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		dst.SetFloat(f)
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(dst.Type()) {
		dst.Set(rv)
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", v, dst.Type())
}

func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		return strconv.ParseFloat(x, 64)
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("cannot convert %T to number", v)
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		return strconv.ParseBool(x)
	}
	// SQLite and MySQL store booleans as integers.
	f, err := toFloat64(v)
	if err != nil {
		return false, fmt.Errorf("cannot convert %T to bool", v)
	}
	return f != 0, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func toTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("cannot parse time %q", x)
	case int64:
		return time.Unix(x, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("cannot convert %T to time", v)
}
