// Package literal interprets bare (unquoted) JSON tokens against scalar
// target kinds and infers generic scalar values when no concrete target is
// fixed yet.
package literal

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/viant/jsonshape/shape"
)

// Mode controls how bare, ambiguous numeric tokens are classified when the
// target gives no guidance (json/anydata/union targets).
type Mode int

const (
	Plain Mode = iota
	DecimalPreferred
	FloatPreferred
)

// Interpret converts a bare token into the scalar value a concrete target
// kind requires. Generic target kinds are not handled here; the caller
// routes those through Infer and the conversion engine.
func Interpret(token string, t *shape.Type, mode Mode) (any, error) {
	switch t.Kind {
	case shape.KindInt:
		v, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, conversionError(token, t)
		}
		return v, nil
	case shape.KindByte:
		v, err := strconv.ParseInt(token, 10, 32)
		if err != nil || v < 0 || v > 255 {
			return nil, conversionError(token, t)
		}
		return v, nil
	case shape.KindFloat:
		v, err := strconv.ParseFloat(token, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, conversionError(token, t)
		}
		return v, nil
	case shape.KindDecimal:
		v, err := decimal.NewFromString(token)
		if err != nil {
			return nil, conversionError(token, t)
		}
		return v, nil
	case shape.KindBoolean:
		switch token {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, conversionError(token, t)
	case shape.KindNil:
		if token == "null" {
			return nil, nil
		}
		return nil, conversionError(token, t)
	}
	return nil, conversionError(token, t)
}

// Infer classifies a bare token with no target fixed: true/false/null
// literals, then a numeric value whose concrete kind depends on mode.
func Infer(token string, mode Mode) (any, error) {
	switch token {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	}
	switch mode {
	case FloatPreferred:
		if v, err := strconv.ParseFloat(token, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v, nil
		}
	case DecimalPreferred:
		if v, err := decimal.NewFromString(token); err == nil {
			return v, nil
		}
	default:
		if strings.ContainsRune(token, '.') {
			if v, err := strconv.ParseFloat(token, 64); err == nil {
				return v, nil
			}
		} else if strings.ContainsAny(token, "eE") {
			if v, err := decimal.NewFromString(token); err == nil {
				return v, nil
			}
		} else if v, err := strconv.ParseInt(token, 10, 64); err == nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("unrecognized token '%s'", token)
}

func conversionError(token string, t *shape.Type) error {
	return fmt.Errorf("cannot convert '%s' to type %s", token, t.Name)
}
