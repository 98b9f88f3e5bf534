package shape

import (
	"fmt"
	"reflect"

	"github.com/viant/jsonshape/internal/cache"
	"github.com/viant/jsonshape/internal/tagutil"
	"github.com/viant/tagly/format/text"
)

type structKey struct {
	rType      reflect.Type
	caseFormat text.CaseFormat
}

var structShapes = cache.New[structKey, *Type](256)

// OfStruct derives an open record shape from a Go struct type. Field names
// come from json/format tags, with untagged names transformed by the
// supplied case format; pointer and omitempty fields become optional.
// Derived shapes are cached per (type, case format).
func OfStruct(rType reflect.Type, caseFormat text.CaseFormat) (*Type, error) {
	if rType == nil {
		return nil, fmt.Errorf("struct type was nil")
	}
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	if rType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected a struct type, had %s", rType.Kind())
	}
	key := structKey{rType: rType, caseFormat: caseFormat}
	if t, ok := structShapes.Get(key); ok {
		return t, nil
	}
	t, err := deriveStruct(rType, caseFormat, map[reflect.Type]*Type{})
	if err != nil {
		return nil, err
	}
	structShapes.Set(key, t)
	return t, nil
}

// FieldName resolves the JSON name of a struct field the same way OfStruct
// does, so binding lookups stay consistent with derived shapes.
func FieldName(sf reflect.StructField, caseFormat text.CaseFormat) (string, bool) {
	tag := tagutil.Resolve(sf)
	if tag.Ignore {
		return "", false
	}
	name := tag.Name
	if !tag.Explicit && caseFormat.IsDefined() {
		name = text.CaseFormatUpperCamel.Format(sf.Name, caseFormat)
	}
	return name, true
}

func deriveStruct(rType reflect.Type, caseFormat text.CaseFormat, seen map[reflect.Type]*Type) (*Type, error) {
	if existing, ok := seen[rType]; ok {
		return existing, nil
	}
	record := &Type{
		Kind:     KindRecord,
		Name:     rType.Name(),
		Size:     -1,
		fieldIdx: map[string]*Field{},
	}
	if record.Name == "" {
		record.Name = "record"
	}
	// undeclared input fields are admitted as anydata and ignored by binding
	seen[rType] = record
	for i := 0; i < rType.NumField(); i++ {
		sf := rType.Field(i)
		if sf.PkgPath != "" {
			continue
		}
		name, ok := FieldName(sf, caseFormat)
		if !ok {
			continue
		}
		fieldType, optional, err := deriveType(sf.Type, caseFormat, seen)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", rType.Name(), sf.Name, err)
		}
		field := &Field{
			Name:     name,
			Type:     fieldType,
			Optional: optional || tagutil.Resolve(sf).OmitEmpty,
		}
		record.Fields = append(record.Fields, field)
		record.fieldIdx[name] = field
	}
	return record, nil
}

func deriveType(rType reflect.Type, caseFormat text.CaseFormat, seen map[reflect.Type]*Type) (*Type, bool, error) {
	switch rType.Kind() {
	case reflect.Ptr:
		t, _, err := deriveType(rType.Elem(), caseFormat, seen)
		return t, true, err
	case reflect.Bool:
		return Boolean, false, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int, false, nil
	case reflect.Uint8:
		return Byte, false, nil
	case reflect.Float32, reflect.Float64:
		return Float, false, nil
	case reflect.String:
		return String, false, nil
	case reflect.Slice:
		if rType.Elem().Kind() == reflect.Uint8 {
			return String, false, nil
		}
		elem, _, err := deriveType(rType.Elem(), caseFormat, seen)
		if err != nil {
			return nil, false, err
		}
		return NewArray(elem, -1, false), false, nil
	case reflect.Map:
		if rType.Key().Kind() != reflect.String {
			return nil, false, fmt.Errorf("unsupported map key kind %s", rType.Key().Kind())
		}
		elem, _, err := deriveType(rType.Elem(), caseFormat, seen)
		if err != nil {
			return nil, false, err
		}
		return NewMap(elem), false, nil
	case reflect.Struct:
		t, err := deriveStruct(rType, caseFormat, seen)
		return t, false, err
	case reflect.Interface:
		return Anydata, false, nil
	}
	return nil, false, fmt.Errorf("unsupported kind %s", rType.Kind())
}
