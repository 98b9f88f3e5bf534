package jsonshape

import (
	"fmt"
	"reflect"

	"github.com/viant/jsonshape/internal/cache"
	"github.com/viant/jsonshape/shape"
	"github.com/viant/jsonshape/value"
	"github.com/viant/tagly/format/text"
	"github.com/viant/xunsafe"
)

type bindKey struct {
	rType      reflect.Type
	caseFormat text.CaseFormat
}

type boundField struct {
	name  string
	field *xunsafe.Field
	rType reflect.Type
}

var bindPlans = cache.New[bindKey, []*boundField](256)

// Bind parses data with a record shape derived from the destination struct
// and assigns the parsed fields into it.
func Bind(data []byte, dest any, opts ...Option) error {
	rv := reflect.ValueOf(dest)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("dest must be a non-nil pointer to a struct")
	}
	rType := rv.Type().Elem()
	if rType.Kind() != reflect.Struct {
		return fmt.Errorf("dest must point to a struct, had %s", rType.Kind())
	}
	cfg := resolveOptions(opts)
	target, err := shape.OfStruct(rType, cfg.caseFormat)
	if err != nil {
		return err
	}
	parsed, err := Parse(data, target, opts...)
	if err != nil {
		return err
	}
	obj, ok := parsed.(*value.Object)
	if !ok {
		return fmt.Errorf("cannot bind %T into %s", parsed, rType)
	}
	plan := planFor(rType, cfg.caseFormat)
	holder := xunsafe.AsPointer(dest)
	for _, bound := range plan {
		entry, ok := obj.Get(bound.name)
		if !ok {
			continue
		}
		converted, err := nativeValue(bound.rType, entry, cfg.caseFormat)
		if err != nil {
			return fmt.Errorf("field %s: %w", bound.name, err)
		}
		if !converted.IsValid() {
			continue
		}
		bound.field.SetValue(holder, converted.Interface())
	}
	return nil
}

func planFor(rType reflect.Type, caseFormat text.CaseFormat) []*boundField {
	key := bindKey{rType: rType, caseFormat: caseFormat}
	if plan, ok := bindPlans.Get(key); ok {
		return plan
	}
	var plan []*boundField
	for i := 0; i < rType.NumField(); i++ {
		sf := rType.Field(i)
		if sf.PkgPath != "" {
			continue
		}
		name, ok := shape.FieldName(sf, caseFormat)
		if !ok {
			continue
		}
		plan = append(plan, &boundField{
			name:  name,
			field: xunsafe.NewField(sf),
			rType: sf.Type,
		})
	}
	bindPlans.Set(key, plan)
	return plan
}

// nativeValue converts a parsed value into a reflect value of the requested
// Go type. An invalid result means "leave the field at its zero value".
func nativeValue(rType reflect.Type, v any, caseFormat text.CaseFormat) (reflect.Value, error) {
	if v == nil {
		return reflect.Value{}, nil
	}
	switch rType.Kind() {
	case reflect.Ptr:
		elem, err := nativeValue(rType.Elem(), v, caseFormat)
		if err != nil || !elem.IsValid() {
			return reflect.Value{}, err
		}
		result := reflect.New(rType.Elem())
		result.Elem().Set(elem)
		return result, nil
	case reflect.Bool:
		if b, ok := v.(bool); ok {
			return reflect.ValueOf(b).Convert(rType), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if i, ok := v.(int64); ok {
			return reflect.ValueOf(i).Convert(rType), nil
		}
	case reflect.Float32, reflect.Float64:
		switch actual := v.(type) {
		case float64:
			return reflect.ValueOf(actual).Convert(rType), nil
		case int64:
			return reflect.ValueOf(float64(actual)).Convert(rType), nil
		}
	case reflect.String:
		if s, ok := v.(string); ok {
			return reflect.ValueOf(s).Convert(rType), nil
		}
	case reflect.Slice:
		if rType.Elem().Kind() == reflect.Uint8 {
			if s, ok := v.(string); ok {
				return reflect.ValueOf([]byte(s)), nil
			}
		}
		arr, ok := v.(*value.Array)
		if !ok {
			break
		}
		result := reflect.MakeSlice(rType, 0, arr.Len())
		for _, item := range arr.Items() {
			elem, err := nativeValue(rType.Elem(), item, caseFormat)
			if err != nil {
				return reflect.Value{}, err
			}
			if !elem.IsValid() {
				elem = reflect.Zero(rType.Elem())
			}
			result = reflect.Append(result, elem)
		}
		return result, nil
	case reflect.Map:
		obj, ok := v.(*value.Object)
		if !ok {
			break
		}
		result := reflect.MakeMapWithSize(rType, obj.Len())
		for _, key := range obj.Keys() {
			entry, _ := obj.Get(key)
			elem, err := nativeValue(rType.Elem(), entry, caseFormat)
			if err != nil {
				return reflect.Value{}, err
			}
			if !elem.IsValid() {
				elem = reflect.Zero(rType.Elem())
			}
			result.SetMapIndex(reflect.ValueOf(key).Convert(rType.Key()), elem)
		}
		return result, nil
	case reflect.Struct:
		obj, ok := v.(*value.Object)
		if !ok {
			break
		}
		result := reflect.New(rType).Elem()
		for i := 0; i < rType.NumField(); i++ {
			sf := rType.Field(i)
			if sf.PkgPath != "" {
				continue
			}
			name, ok := shape.FieldName(sf, caseFormat)
			if !ok {
				continue
			}
			entry, ok := obj.Get(name)
			if !ok {
				continue
			}
			elem, err := nativeValue(sf.Type, entry, caseFormat)
			if err != nil {
				return reflect.Value{}, err
			}
			if elem.IsValid() {
				result.Field(i).Set(elem)
			}
		}
		return result, nil
	case reflect.Interface:
		return reflect.ValueOf(anyNative(v)), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot assign %T to %s", v, rType)
}

// anyNative lowers parsed containers to plain Go maps and slices for
// interface{} destinations.
func anyNative(v any) any {
	switch actual := v.(type) {
	case *value.Object:
		result := make(map[string]any, actual.Len())
		for _, key := range actual.Keys() {
			entry, _ := actual.Get(key)
			result[key] = anyNative(entry)
		}
		return result
	case *value.Array:
		result := make([]any, 0, actual.Len())
		for _, item := range actual.Items() {
			result = append(result, anyNative(item))
		}
		return result
	}
	return v
}
