package shape

import (
	"strings"
)

// Kind identifies a target type kind. The set is closed: every switch over
// Kind in this module is expected to enumerate all composite kinds.
type Kind int

const (
	KindNil Kind = iota
	KindBoolean
	KindInt
	KindByte
	KindFloat
	KindDecimal
	KindString
	KindArray
	KindTuple
	KindMap
	KindRecord
	KindUnion
	KindFiniteSet
	KindJSON
	KindAnydata
	KindTable
)

var kindNames = [...]string{
	KindNil:       "nil",
	KindBoolean:   "boolean",
	KindInt:       "int",
	KindByte:      "byte",
	KindFloat:     "float",
	KindDecimal:   "decimal",
	KindString:    "string",
	KindArray:     "array",
	KindTuple:     "tuple",
	KindMap:       "map",
	KindRecord:    "record",
	KindUnion:     "union",
	KindFiniteSet: "finite set",
	KindJSON:      "json",
	KindAnydata:   "anydata",
	KindTable:     "table",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Generic reports whether a target of this kind provides no structural
// guidance during parsing; such subtrees are built with generic containers
// and converted once complete.
func (k Kind) Generic() bool {
	switch k {
	case KindUnion, KindFiniteSet, KindJSON, KindAnydata, KindTable:
		return true
	}
	return false
}

// Field describes a single record field.
type Field struct {
	Name     string
	Type     *Type
	Required bool
	Optional bool
}

// Type describes a target shape. Instances are immutable once constructed;
// the parser and converter only read them.
type Type struct {
	Kind Kind
	Name string

	// Elem is the array element type or the map value type.
	Elem *Type
	// Size is the declared array size, -1 when the array is open.
	Size int
	// Filler enables default-filling of under-supplied fixed-size arrays.
	Filler bool

	// Items are the ordered tuple member types; Rest is the tuple rest type
	// or the record rest field type.
	Items []*Type
	Rest  *Type

	Fields   []*Field
	Closed   bool
	ReadOnly bool

	Members   []*Type
	Literals  []any
	Row       *Type
	KeyFields []string

	fieldIdx map[string]*Field
}

// Predefined scalar and generic types. Shared instances; never mutated.
var (
	Nil     = &Type{Kind: KindNil, Name: "nil"}
	Boolean = &Type{Kind: KindBoolean, Name: "boolean"}
	Int     = &Type{Kind: KindInt, Name: "int"}
	Byte    = &Type{Kind: KindByte, Name: "byte"}
	Float   = &Type{Kind: KindFloat, Name: "float"}
	Decimal = &Type{Kind: KindDecimal, Name: "decimal"}
	String  = &Type{Kind: KindString, Name: "string"}
	JSON    = &Type{Kind: KindJSON, Name: "json"}
	Anydata = &Type{Kind: KindAnydata, Name: "anydata"}
)

// NewArray creates an array type; size -1 means open, filler enables
// default-filling of missing tail elements for fixed sizes.
func NewArray(elem *Type, size int, filler bool) *Type {
	return &Type{Kind: KindArray, Name: elem.Name + "[]", Elem: elem, Size: size, Filler: filler}
}

// NewTuple creates a fixed-arity tuple type with an optional rest type.
func NewTuple(items []*Type, rest *Type) *Type {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return &Type{Kind: KindTuple, Name: "[" + strings.Join(names, ", ") + "]", Items: items, Rest: rest, Size: -1}
}

// NewMap creates a map type with a constrained value type.
func NewMap(value *Type) *Type {
	return &Type{Kind: KindMap, Name: "map<" + value.Name + ">", Elem: value, Size: -1}
}

// NewRecord creates a record type. A nil rest with closed=true rejects
// undeclared fields; a nil rest with closed=false admits them as anydata.
func NewRecord(name string, fields []*Field, rest *Type, closed, readOnly bool) *Type {
	t := &Type{
		Kind:     KindRecord,
		Name:     name,
		Fields:   fields,
		Rest:     rest,
		Closed:   closed,
		ReadOnly: readOnly,
		Size:     -1,
		fieldIdx: make(map[string]*Field, len(fields)),
	}
	for _, field := range fields {
		t.fieldIdx[field.Name] = field
	}
	return t
}

// NewUnion creates a union type over the supplied member types.
func NewUnion(members ...*Type) *Type {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	return &Type{Kind: KindUnion, Name: strings.Join(names, "|"), Members: members, Size: -1}
}

// NewFiniteSet creates a finite-value-set type over the supplied literals.
func NewFiniteSet(literals ...any) *Type {
	return &Type{Kind: KindFiniteSet, Name: "finite set", Literals: literals, Size: -1}
}

// NewTable creates a table type keyed by the named row fields.
func NewTable(row *Type, keyFields ...string) *Type {
	return &Type{Kind: KindTable, Name: "table<" + row.Name + ">", Row: row, KeyFields: keyFields, Size: -1}
}

// Field returns the declared record field with the given name, or nil.
func (t *Type) Field(name string) *Field {
	if t.fieldIdx == nil {
		return nil
	}
	return t.fieldIdx[name]
}

// RestFieldType resolves the type applied to an undeclared record field, or
// nil when the record is closed to unknown fields.
func (t *Type) RestFieldType() *Type {
	if t.Rest != nil {
		return t.Rest
	}
	if t.Closed {
		return nil
	}
	return Anydata
}

// AcceptsNil reports whether a null value satisfies the type.
func (t *Type) AcceptsNil() bool {
	switch t.Kind {
	case KindNil, KindJSON, KindAnydata:
		return true
	case KindUnion:
		for _, m := range t.Members {
			if m.AcceptsNil() {
				return true
			}
		}
	case KindFiniteSet:
		for _, lit := range t.Literals {
			if lit == nil {
				return true
			}
		}
	}
	return false
}
