package value

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/viant/jsonshape/shape"
)

// DefaultOf produces the filler/default value of a type: the value used to
// pad under-supplied fixed-size arrays and to fill absent record fields that
// are neither required nor optional.
func DefaultOf(t *shape.Type) (any, error) {
	switch t.Kind {
	case shape.KindNil, shape.KindJSON, shape.KindAnydata:
		return nil, nil
	case shape.KindBoolean:
		return false, nil
	case shape.KindInt, shape.KindByte:
		return int64(0), nil
	case shape.KindFloat:
		return float64(0), nil
	case shape.KindDecimal:
		return decimal.Decimal{}, nil
	case shape.KindString:
		return "", nil
	case shape.KindArray:
		result := NewArray(t)
		if t.Size > 0 {
			if !t.Filler {
				return nil, fmt.Errorf("no filler value for fixed size array type '%s'", t.Name)
			}
			// one filler per slot, padded composites must not alias
			for i := 0; i < t.Size; i++ {
				filler, err := DefaultOf(t.Elem)
				if err != nil {
					return nil, err
				}
				_ = result.Append(filler)
			}
		}
		return result, nil
	case shape.KindTuple:
		result := NewArray(t)
		for _, item := range t.Items {
			v, err := DefaultOf(item)
			if err != nil {
				return nil, err
			}
			_ = result.Append(v)
		}
		return result, nil
	case shape.KindMap:
		return NewObject(t), nil
	case shape.KindRecord:
		result := NewObject(t)
		for _, field := range t.Fields {
			if field.Optional {
				continue
			}
			if field.Required {
				return nil, fmt.Errorf("record type '%s' has no default value: field '%s' is required", t.Name, field.Name)
			}
			v, err := DefaultOf(field.Type)
			if err != nil {
				return nil, err
			}
			_ = result.Put(field.Name, v)
		}
		if t.ReadOnly {
			Freeze(result)
		}
		return result, nil
	case shape.KindUnion:
		var firstErr error
		for _, m := range t.Members {
			v, err := DefaultOf(m)
			if err == nil {
				return v, nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, fmt.Errorf("union type '%s' has no default value", t.Name)
	case shape.KindFiniteSet:
		if len(t.Literals) > 0 {
			return t.Literals[0], nil
		}
		return nil, fmt.Errorf("finite set type has no default value")
	case shape.KindTable:
		return NewTable(t.KeyFields), nil
	}
	return nil, fmt.Errorf("type '%s' has no default value", t.Name)
}
