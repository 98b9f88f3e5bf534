// Package conv coerces generically built values (map/array primitives) into
// the concrete shapes a target type requires.
package conv

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/viant/jsonshape/internal/literal"
	"github.com/viant/jsonshape/shape"
	"github.com/viant/jsonshape/value"
)

type visitKey struct {
	node   any
	target *shape.Type
}

// Converter performs recursive value conversion with cycle detection. A
// Converter is not safe for concurrent use; each worker owns its own.
type Converter struct {
	visited map[visitKey]struct{}
}

func New() *Converter {
	return &Converter{visited: map[visitKey]struct{}{}}
}

// Convert coerces v into the shape required by t using a fresh converter.
func Convert(v any, t *shape.Type) (any, error) {
	return New().Convert(v, t)
}

// Convert runs one top-level conversion. The visited set is scoped to this
// call and cleared on return, success or error.
func (c *Converter) Convert(v any, t *shape.Type) (any, error) {
	defer func() {
		for key := range c.visited {
			delete(c.visited, key)
		}
	}()
	return c.convert(v, t)
}

func (c *Converter) convert(v any, t *shape.Type) (any, error) {
	if v == nil {
		if t.AcceptsNil() {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot convert nil to type %s", t.Name)
	}
	if isComposite(v) {
		key := visitKey{node: v, target: t}
		if _, ok := c.visited[key]; ok {
			return nil, fmt.Errorf("cyclic value reference detected converting to type %s", t.Name)
		}
		c.visited[key] = struct{}{}
		defer delete(c.visited, key)
	}
	switch t.Kind {
	case shape.KindJSON, shape.KindAnydata:
		return v, nil
	case shape.KindUnion:
		return c.convertUnion(v, t)
	case shape.KindFiniteSet:
		for _, lit := range t.Literals {
			if value.Equal(v, lit) {
				return v, nil
			}
		}
		return nil, fmt.Errorf("%s is not a member of the finite set type", describe(v))
	case shape.KindRecord:
		src, ok := v.(*value.Object)
		if !ok {
			return nil, incompatible(v, t)
		}
		return c.convertRecord(src, t)
	case shape.KindMap:
		src, ok := v.(*value.Object)
		if !ok {
			return nil, incompatible(v, t)
		}
		return c.convertMap(src, t)
	case shape.KindArray:
		src, ok := v.(*value.Array)
		if !ok {
			return nil, incompatible(v, t)
		}
		return c.convertArray(src, t)
	case shape.KindTuple:
		src, ok := v.(*value.Array)
		if !ok {
			return nil, incompatible(v, t)
		}
		return c.convertTuple(src, t)
	case shape.KindTable:
		if existing, ok := v.(*value.Table); ok {
			return existing, nil
		}
		src, ok := v.(*value.Array)
		if !ok {
			return nil, incompatible(v, t)
		}
		return c.convertTable(src, t)
	}
	return c.convertScalar(v, t)
}

func (c *Converter) convertUnion(v any, t *shape.Type) (any, error) {
	for _, member := range t.Members {
		if result, err := c.convert(v, member); err == nil {
			return result, nil
		}
	}
	attempted := make([]string, 0, len(t.Members))
	for _, member := range t.Members {
		attempted = append(attempted, member.Name)
	}
	return nil, fmt.Errorf("cannot convert %s to '%s': no matching member among %s",
		describe(v), t.Name, strings.Join(attempted, ", "))
}

// convertRecord builds the record mutable and freezes at the end when the
// type is readonly, so partially built state never needs unfreezing.
func (c *Converter) convertRecord(src *value.Object, t *shape.Type) (any, error) {
	result := value.NewObject(t)
	for _, key := range src.Keys() {
		fieldType := t.RestFieldType()
		if field := t.Field(key); field != nil {
			fieldType = field.Type
		} else if fieldType == nil {
			return nil, fmt.Errorf("field '%s' not permitted in closed record '%s'", key, t.Name)
		}
		entry, _ := src.Get(key)
		converted, err := c.convert(entry, fieldType)
		if err != nil {
			return nil, err
		}
		if err = result.Put(key, converted); err != nil {
			return nil, err
		}
	}
	for _, field := range t.Fields {
		if result.Has(field.Name) {
			continue
		}
		if field.Required {
			return nil, fmt.Errorf("missing required field '%s' of record '%s'", field.Name, t.Name)
		}
		if field.Optional {
			continue
		}
		filler, err := value.DefaultOf(field.Type)
		if err != nil {
			return nil, err
		}
		if err = result.Put(field.Name, filler); err != nil {
			return nil, err
		}
	}
	if t.ReadOnly {
		value.Freeze(result)
	}
	return result, nil
}

func (c *Converter) convertMap(src *value.Object, t *shape.Type) (any, error) {
	result := value.NewObject(t)
	for _, key := range src.Keys() {
		entry, _ := src.Get(key)
		converted, err := c.convert(entry, t.Elem)
		if err != nil {
			return nil, err
		}
		if err = result.Put(key, converted); err != nil {
			return nil, err
		}
	}
	if t.ReadOnly {
		value.Freeze(result)
	}
	return result, nil
}

func (c *Converter) convertArray(src *value.Array, t *shape.Type) (any, error) {
	if t.Size >= 0 && src.Len() > t.Size {
		return nil, fmt.Errorf("size mismatch: array of size %d cannot hold %d elements", t.Size, src.Len())
	}
	result := value.NewArray(t)
	for _, item := range src.Items() {
		converted, err := c.convert(item, t.Elem)
		if err != nil {
			return nil, err
		}
		if err = result.Append(converted); err != nil {
			return nil, err
		}
	}
	if t.Size >= 0 && result.Len() < t.Size {
		if !t.Filler {
			return nil, fmt.Errorf("size mismatch: expected %d elements for array type '%s', found %d", t.Size, t.Name, result.Len())
		}
		// one filler per slot, padded composites must not alias
		for result.Len() < t.Size {
			filler, err := value.DefaultOf(t.Elem)
			if err != nil {
				return nil, err
			}
			if err = result.Append(filler); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

func (c *Converter) convertTuple(src *value.Array, t *shape.Type) (any, error) {
	if src.Len() < len(t.Items) {
		return nil, fmt.Errorf("size mismatch: tuple type '%s' requires %d elements, found %d", t.Name, len(t.Items), src.Len())
	}
	if src.Len() > len(t.Items) && t.Rest == nil {
		return nil, fmt.Errorf("size mismatch: tuple type '%s' cannot hold %d elements", t.Name, src.Len())
	}
	result := value.NewArray(t)
	for i, item := range src.Items() {
		itemType := t.Rest
		if i < len(t.Items) {
			itemType = t.Items[i]
		}
		converted, err := c.convert(item, itemType)
		if err != nil {
			return nil, err
		}
		if err = result.Append(converted); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (c *Converter) convertTable(src *value.Array, t *shape.Type) (any, error) {
	result := value.NewTable(t.KeyFields)
	for _, item := range src.Items() {
		converted, err := c.convert(item, t.Row)
		if err != nil {
			return nil, err
		}
		row, ok := converted.(*value.Object)
		if !ok {
			return nil, fmt.Errorf("cannot convert %s to a row of table type '%s'", describe(item), t.Name)
		}
		if err = result.Append(row); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (c *Converter) convertScalar(v any, t *shape.Type) (any, error) {
	// a scalar stored as a string is re-interpreted against the target kind
	if s, ok := v.(string); ok && t.Kind != shape.KindString {
		return literal.Interpret(s, t, literal.Plain)
	}
	switch t.Kind {
	case shape.KindInt, shape.KindByte:
		i, err := toInt64(v, t)
		if err != nil {
			return nil, err
		}
		if t.Kind == shape.KindByte && (i < 0 || i > 255) {
			return nil, fmt.Errorf("cannot convert %d to type byte: out of range", i)
		}
		return i, nil
	case shape.KindFloat:
		switch actual := v.(type) {
		case float64:
			return actual, nil
		case int64:
			return float64(actual), nil
		case decimal.Decimal:
			return actual.InexactFloat64(), nil
		}
	case shape.KindDecimal:
		switch actual := v.(type) {
		case decimal.Decimal:
			return actual, nil
		case int64:
			return decimal.NewFromInt(actual), nil
		case float64:
			return decimal.NewFromFloat(actual), nil
		}
	case shape.KindBoolean:
		if actual, ok := v.(bool); ok {
			return actual, nil
		}
	case shape.KindString:
		if actual, ok := v.(string); ok {
			return actual, nil
		}
	}
	return nil, incompatible(v, t)
}

func toInt64(v any, t *shape.Type) (int64, error) {
	switch actual := v.(type) {
	case int64:
		return actual, nil
	case float64:
		if actual != math.Trunc(actual) || math.IsInf(actual, 0) || actual < math.MinInt64 || actual >= math.MaxInt64 {
			return 0, fmt.Errorf("cannot convert %v to type %s", actual, t.Name)
		}
		return int64(actual), nil
	case decimal.Decimal:
		if !actual.IsInteger() {
			return 0, fmt.Errorf("cannot convert %s to type %s", actual.String(), t.Name)
		}
		return actual.IntPart(), nil
	}
	return 0, incompatible(v, t)
}

func isComposite(v any) bool {
	switch v.(type) {
	case *value.Object, *value.Array, *value.Table:
		return true
	}
	return false
}

func describe(v any) string {
	switch actual := v.(type) {
	case *value.Object:
		if actual.Shape() != nil {
			return actual.Shape().Name
		}
		return "map value"
	case *value.Array:
		if actual.Shape() != nil {
			return actual.Shape().Name
		}
		return "array value"
	case *value.Table:
		return "table value"
	case string:
		return fmt.Sprintf("'%s'", actual)
	}
	return fmt.Sprintf("'%v'", v)
}

func incompatible(v any, t *shape.Type) error {
	return fmt.Errorf("cannot convert %s to type %s", describe(v), t.Name)
}
