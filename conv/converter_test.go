package conv

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/viant/jsonshape/shape"
	"github.com/viant/jsonshape/value"
)

func TestConvertScalar(t *testing.T) {
	testCases := []struct {
		name     string
		src      any
		target   *shape.Type
		expected any
		hasError bool
	}{
		{name: "int to int", src: int64(7), target: shape.Int, expected: int64(7)},
		{name: "integral float to int", src: float64(7), target: shape.Int, expected: int64(7)},
		{name: "fractional float to int", src: 7.5, target: shape.Int, hasError: true},
		{name: "int to float", src: int64(7), target: shape.Float, expected: float64(7)},
		{name: "int to byte", src: int64(200), target: shape.Byte, expected: int64(200)},
		{name: "byte out of range", src: int64(300), target: shape.Byte, hasError: true},
		{name: "int to decimal", src: int64(7), target: shape.Decimal, expected: decimal.NewFromInt(7)},
		{name: "string to string", src: "x", target: shape.String, expected: "x"},
		{name: "string to int", src: "x", target: shape.Int, hasError: true},
		{name: "numeric string to int", src: "7", target: shape.Int, expected: int64(7)},
		{name: "numeric string to decimal", src: "1.5", target: shape.Decimal, expected: decimal.RequireFromString("1.5")},
		{name: "string to bool", src: "true", target: shape.Boolean, expected: true},
		{name: "string to bool wrong case", src: "True", target: shape.Boolean, hasError: true},
		{name: "bool to boolean", src: true, target: shape.Boolean, expected: true},
		{name: "nil to nilable", src: nil, target: shape.Nil, expected: nil},
		{name: "nil to int", src: nil, target: shape.Int, hasError: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Convert(tc.src, tc.target)
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

func TestConvertRecord(t *testing.T) {
	target := shape.NewRecord("person", []*shape.Field{
		{Name: "name", Type: shape.String, Required: true},
		{Name: "age", Type: shape.Int},
	}, nil, true, false)

	src := value.NewObject(nil)
	_ = src.Put("name", "ana")
	_ = src.Put("age", int64(31))
	result, err := Convert(src, target)
	assert.Nil(t, err)
	obj := result.(*value.Object)
	assert.Equal(t, target, obj.Shape())
	name, _ := obj.Get("name")
	assert.Equal(t, "ana", name)

	missing := value.NewObject(nil)
	_ = missing.Put("age", int64(1))
	_, err = Convert(missing, target)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "missing required field 'name'")

	extra := value.NewObject(nil)
	_ = extra.Put("name", "ana")
	_ = extra.Put("other", int64(1))
	_, err = Convert(extra, target)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "not permitted in closed record")
}

func TestConvertRecord_DefaultFill(t *testing.T) {
	target := shape.NewRecord("counts", []*shape.Field{
		{Name: "total", Type: shape.Int},
	}, nil, false, false)
	result, err := Convert(value.NewObject(nil), target)
	assert.Nil(t, err)
	total, _ := result.(*value.Object).Get("total")
	assert.Equal(t, int64(0), total)
}

func TestConvertReadOnlyRecord(t *testing.T) {
	target := shape.NewRecord("config", []*shape.Field{
		{Name: "name", Type: shape.String},
	}, nil, false, true)
	src := value.NewObject(nil)
	_ = src.Put("name", "a")
	result, err := Convert(src, target)
	assert.Nil(t, err)
	assert.True(t, value.IsFrozen(result))
}

func TestConvertArrayAndTuple(t *testing.T) {
	src := value.NewArray(nil)
	_ = src.Append(int64(1))
	_ = src.Append(int64(2))

	result, err := Convert(src, shape.NewArray(shape.Int, -1, false))
	assert.Nil(t, err)
	assert.Equal(t, 2, result.(*value.Array).Len())

	result, err = Convert(src, shape.NewArray(shape.Int, 4, true))
	assert.Nil(t, err)
	assert.Equal(t, 4, result.(*value.Array).Len())
	assert.Equal(t, int64(0), result.(*value.Array).At(3))

	_, err = Convert(src, shape.NewArray(shape.Int, 1, false))
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "size mismatch")

	result, err = Convert(src, shape.NewTuple([]*shape.Type{shape.Int, shape.Float}, nil))
	assert.Nil(t, err)
	assert.Equal(t, float64(2), result.(*value.Array).At(1))

	_, err = Convert(src, shape.NewTuple([]*shape.Type{shape.Int, shape.Int, shape.Int}, nil))
	assert.NotNil(t, err)
}

func TestConvertArray_FillerIndependence(t *testing.T) {
	row := shape.NewRecord("row", []*shape.Field{
		{Name: "n", Type: shape.Int},
	}, nil, false, false)
	src := value.NewArray(nil)
	obj := value.NewObject(nil)
	_ = obj.Put("n", int64(1))
	_ = src.Append(obj)

	result, err := Convert(src, shape.NewArray(row, 3, true))
	assert.Nil(t, err)
	arr := result.(*value.Array)
	assert.Equal(t, 3, arr.Len())
	first := arr.At(1).(*value.Object)
	second := arr.At(2).(*value.Object)
	assert.NotSame(t, first, second)
	assert.Nil(t, first.Put("n", int64(99)))
	n, _ := second.Get("n")
	assert.Equal(t, int64(0), n)
}

func TestConvertUnion(t *testing.T) {
	target := shape.NewUnion(shape.Int, shape.String)
	result, err := Convert("x", target)
	assert.Nil(t, err)
	assert.Equal(t, "x", result)

	_, err = Convert(true, target)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "no matching member among int, string")
}

func TestConvertFiniteSet(t *testing.T) {
	target := shape.NewFiniteSet("on", "off", int64(0))
	result, err := Convert("on", target)
	assert.Nil(t, err)
	assert.Equal(t, "on", result)

	// numeric membership holds across representations
	result, err = Convert(float64(0), target)
	assert.Nil(t, err)
	assert.Equal(t, float64(0), result)

	_, err = Convert("dim", target)
	assert.NotNil(t, err)
}

func TestConvertTable(t *testing.T) {
	row := shape.NewRecord("row", []*shape.Field{
		{Name: "id", Type: shape.Int, Required: true},
	}, nil, false, false)
	target := shape.NewTable(row, "id")

	src := value.NewArray(nil)
	for _, id := range []int64{1, 2} {
		obj := value.NewObject(nil)
		_ = obj.Put("id", id)
		_ = src.Append(obj)
	}
	result, err := Convert(src, target)
	assert.Nil(t, err)
	table := result.(*value.Table)
	assert.Equal(t, 2, table.Len())
	_, ok := table.Lookup(int64(1))
	assert.True(t, ok)
}

func TestConvertCycleDetection(t *testing.T) {
	field := &shape.Field{Name: "next", Optional: true}
	node := shape.NewRecord("node", []*shape.Field{field}, nil, false, false)
	field.Type = node

	src := value.NewObject(nil)
	_ = src.Put("next", src)
	_, err := Convert(src, node)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "cyclic value reference detected")
}

func TestConverterReuse(t *testing.T) {
	converter := New()
	src := value.NewObject(nil)
	_ = src.Put("next", src)
	node := func() *shape.Type {
		field := &shape.Field{Name: "next", Optional: true}
		t := shape.NewRecord("node", []*shape.Field{field}, nil, false, false)
		field.Type = t
		return t
	}()

	_, err := converter.Convert(src, node)
	assert.NotNil(t, err)

	// the visited set does not leak into the next conversion
	plain := value.NewObject(nil)
	_ = plain.Put("next", value.NewObject(nil))
	result, err := converter.Convert(plain, node)
	assert.Nil(t, err)
	assert.NotNil(t, result)
}
