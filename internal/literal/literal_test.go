package literal

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/viant/jsonshape/shape"
)

func TestInterpret(t *testing.T) {
	testCases := []struct {
		name     string
		token    string
		target   *shape.Type
		expected any
		hasError bool
	}{
		{name: "int", token: "42", target: shape.Int, expected: int64(42)},
		{name: "negative int", token: "-7", target: shape.Int, expected: int64(-7)},
		{name: "int with fraction", token: "1.5", target: shape.Int, hasError: true},
		{name: "byte", token: "255", target: shape.Byte, expected: int64(255)},
		{name: "byte overflow", token: "256", target: shape.Byte, hasError: true},
		{name: "byte negative", token: "-1", target: shape.Byte, hasError: true},
		{name: "float", token: "1.5", target: shape.Float, expected: 1.5},
		{name: "float exponent", token: "1e2", target: shape.Float, expected: 100.0},
		{name: "float nan", token: "NaN", target: shape.Float, hasError: true},
		{name: "float infinity", token: "Infinity", target: shape.Float, hasError: true},
		{name: "decimal", token: "1.5", target: shape.Decimal, expected: decimal.RequireFromString("1.5")},
		{name: "boolean true", token: "true", target: shape.Boolean, expected: true},
		{name: "boolean false", token: "false", target: shape.Boolean, expected: false},
		{name: "boolean wrong case", token: "True", target: shape.Boolean, hasError: true},
		{name: "null", token: "null", target: shape.Nil, expected: nil},
		{name: "null wrong case", token: "Null", target: shape.Nil, hasError: true},
		{name: "bare token to string", token: "abc", target: shape.String, hasError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Interpret(tc.token, tc.target, Plain)
			if tc.hasError {
				assert.NotNil(t, err)
				return
			}
			assert.Nil(t, err)
			if d, ok := tc.expected.(decimal.Decimal); ok {
				assert.True(t, d.Equal(result.(decimal.Decimal)))
				return
			}
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestInfer(t *testing.T) {
	testCases := []struct {
		name     string
		token    string
		mode     Mode
		expected any
		hasError bool
	}{
		{name: "plain int", token: "42", mode: Plain, expected: int64(42)},
		{name: "plain fraction", token: "1.5", mode: Plain, expected: 1.5},
		{name: "plain exponent", token: "1e2", mode: Plain, expected: decimal.NewFromInt(100)},
		{name: "plain true", token: "true", mode: Plain, expected: true},
		{name: "plain null", token: "null", mode: Plain, expected: nil},
		{name: "decimal preferred int", token: "42", mode: DecimalPreferred, expected: decimal.NewFromInt(42)},
		{name: "decimal preferred fraction", token: "1.5", mode: DecimalPreferred, expected: decimal.RequireFromString("1.5")},
		{name: "float preferred int", token: "42", mode: FloatPreferred, expected: float64(42)},
		{name: "float preferred literal", token: "false", mode: FloatPreferred, expected: false},
		{name: "garbage", token: "tru", mode: Plain, hasError: true},
		{name: "plain nan", token: "NaN", mode: Plain, hasError: true},
		{name: "float preferred nan", token: "NaN", mode: FloatPreferred, hasError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Infer(tc.token, tc.mode)
			if tc.hasError {
				assert.NotNil(t, err)
				assert.Contains(t, err.Error(), "unrecognized token")
				return
			}
			assert.Nil(t, err)
			if d, ok := tc.expected.(decimal.Decimal); ok {
				assert.True(t, d.Equal(result.(decimal.Decimal)))
				return
			}
			assert.Equal(t, tc.expected, result)
		})
	}
}
