package value

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/viant/jsonshape/shape"
)

// Object is a key-ordered map container backing records, maps and generic
// objects. A nil shape marks a generically built object.
type Object struct {
	shape   *shape.Type
	keys    []string
	entries map[string]any
	frozen  bool
}

// NewObject creates an object container; t may be nil for generic objects.
func NewObject(t *shape.Type) *Object {
	return &Object{shape: t, entries: map[string]any{}}
}

func (o *Object) Shape() *shape.Type { return o.shape }

func (o *Object) Frozen() bool { return o.frozen }

func (o *Object) Len() int { return len(o.keys) }

// Keys returns keys in insertion order.
func (o *Object) Keys() []string { return o.keys }

func (o *Object) Get(key string) (any, bool) {
	v, ok := o.entries[key]
	return v, ok
}

func (o *Object) Has(key string) bool {
	_, ok := o.entries[key]
	return ok
}

// Put sets an entry; a duplicate key overwrites in place (last wins).
func (o *Object) Put(key string, v any) error {
	if o.frozen {
		return fmt.Errorf("cannot modify frozen %s value", o.kindName())
	}
	if _, ok := o.entries[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.entries[key] = v
	return nil
}

func (o *Object) kindName() string {
	if o.shape != nil {
		return o.shape.Kind.String()
	}
	return "map"
}

// Array is an indexed container backing arrays, tuples and generic lists.
// A nil shape marks a generically built array.
type Array struct {
	shape  *shape.Type
	items  []any
	frozen bool
}

// NewArray creates an array container; t may be nil for generic arrays.
func NewArray(t *shape.Type) *Array {
	return &Array{shape: t}
}

func (a *Array) Shape() *shape.Type { return a.shape }

func (a *Array) Frozen() bool { return a.frozen }

func (a *Array) Len() int { return len(a.items) }

func (a *Array) At(i int) any { return a.items[i] }

// Items returns the backing slice; callers must not mutate frozen arrays.
func (a *Array) Items() []any { return a.items }

func (a *Array) Append(v any) error {
	if a.frozen {
		return fmt.Errorf("cannot modify frozen %s value", a.kindName())
	}
	a.items = append(a.items, v)
	return nil
}

func (a *Array) Set(i int, v any) error {
	if a.frozen {
		return fmt.Errorf("cannot modify frozen %s value", a.kindName())
	}
	if i < 0 || i >= len(a.items) {
		return fmt.Errorf("index %d out of bounds for length %d", i, len(a.items))
	}
	a.items[i] = v
	return nil
}

func (a *Array) kindName() string {
	if a.shape != nil {
		return a.shape.Kind.String()
	}
	return "array"
}

// Table is a keyed collection of row objects.
type Table struct {
	rows      []*Object
	keyFields []string
	index     map[string]*Object
	frozen    bool
}

func NewTable(keyFields []string) *Table {
	t := &Table{keyFields: keyFields}
	if len(keyFields) > 0 {
		t.index = map[string]*Object{}
	}
	return t
}

func (t *Table) Frozen() bool { return t.frozen }

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) Rows() []*Object { return t.rows }

func (t *Table) KeyFields() []string { return t.keyFields }

// Append adds a row; rows with a duplicate key-field tuple are rejected.
func (t *Table) Append(row *Object) error {
	if t.frozen {
		return fmt.Errorf("cannot modify frozen table value")
	}
	if t.index != nil {
		key, err := t.rowKey(row)
		if err != nil {
			return err
		}
		if _, ok := t.index[key]; ok {
			return fmt.Errorf("duplicate table key %s", key)
		}
		t.index[key] = row
	}
	t.rows = append(t.rows, row)
	return nil
}

// Lookup finds a row by its key-field values in declaration order.
func (t *Table) Lookup(keyValues ...any) (*Object, bool) {
	if t.index == nil || len(keyValues) != len(t.keyFields) {
		return nil, false
	}
	parts := make([]string, 0, len(keyValues))
	for _, v := range keyValues {
		parts = append(parts, fmt.Sprintf("%v", v))
	}
	row, ok := t.index[strings.Join(parts, "\x00")]
	return row, ok
}

func (t *Table) rowKey(row *Object) (string, error) {
	parts := make([]string, 0, len(t.keyFields))
	for _, name := range t.keyFields {
		v, ok := row.Get(name)
		if !ok {
			return "", fmt.Errorf("table row is missing key field '%s'", name)
		}
		parts = append(parts, fmt.Sprintf("%v", v))
	}
	return strings.Join(parts, "\x00"), nil
}

// Freeze makes a value and everything reachable from it permanently
// immutable. Scalars are returned as-is.
func Freeze(v any) any {
	switch actual := v.(type) {
	case *Object:
		if actual.frozen {
			return actual
		}
		actual.frozen = true
		for _, key := range actual.keys {
			Freeze(actual.entries[key])
		}
	case *Array:
		if actual.frozen {
			return actual
		}
		actual.frozen = true
		for _, item := range actual.items {
			Freeze(item)
		}
	case *Table:
		if actual.frozen {
			return actual
		}
		actual.frozen = true
		for _, row := range actual.rows {
			Freeze(row)
		}
	}
	return v
}

// IsFrozen reports whether a value is frozen; scalars are always frozen.
func IsFrozen(v any) bool {
	switch actual := v.(type) {
	case *Object:
		return actual.frozen
	case *Array:
		return actual.frozen
	case *Table:
		return actual.frozen
	}
	return true
}

// Equal compares two values. Numeric values compare by numeric value across
// int, float and decimal representations; containers compare recursively.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if da, ok := numericOf(a); ok {
		db, bok := numericOf(b)
		return bok && da.Equal(db)
	}
	switch av := a.(type) {
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case *Object:
		bv, ok := b.(*Object)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for key, entry := range av.entries {
			other, ok := bv.Get(key)
			if !ok || !Equal(entry, other) {
				return false
			}
		}
		return true
	case *Array:
		bv, ok := b.(*Array)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for i, item := range av.items {
			if !Equal(item, bv.items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func numericOf(v any) (decimal.Decimal, bool) {
	switch actual := v.(type) {
	case int64:
		return decimal.NewFromInt(actual), true
	case float64:
		return decimal.NewFromFloat(actual), true
	case decimal.Decimal:
		return actual, true
	}
	return decimal.Decimal{}, false
}
