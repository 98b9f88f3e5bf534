package jsonshape

import (
	"fmt"

	"github.com/viant/jsonshape/conv"
	"github.com/viant/jsonshape/internal/literal"
	"github.com/viant/jsonshape/shape"
	"github.com/viant/jsonshape/value"
)

// beginContainer opens an object or array scope. The parent value, if any,
// moves onto the parent stack and the type that governs the new scope is
// pushed so the type stack depth always matches the nesting depth.
func (p *Parser) beginContainer(open byte) (parseState, error) {
	if p.current != nil {
		childType, err := p.descendType(open)
		if err != nil {
			return 0, err
		}
		p.parents = append(p.parents, p.current)
		p.types = append(p.types, childType)
		p.current = nil
	}
	t := p.topType()
	if t.Kind.Generic() {
		if p.genericDepth < 0 {
			p.genericDepth = len(p.parents)
		}
		if open == '{' {
			p.current = value.NewObject(nil)
			p.fieldNames = append(p.fieldNames, "")
			return stateFirstFieldReady, nil
		}
		p.current = value.NewArray(nil)
		return stateFirstArrayElementReady, nil
	}
	switch t.Kind {
	case shape.KindRecord, shape.KindMap:
		if open != '{' {
			return 0, fmt.Errorf("cannot parse array as type %s", t.Name)
		}
		p.current = value.NewObject(t)
		p.fieldNames = append(p.fieldNames, "")
		return stateFirstFieldReady, nil
	case shape.KindArray, shape.KindTuple:
		if open != '[' {
			return 0, fmt.Errorf("cannot parse object as type %s", t.Name)
		}
		p.current = value.NewArray(t)
		p.listIndexes = append(p.listIndexes, 0)
		return stateFirstArrayElementReady, nil
	}
	return 0, fmt.Errorf("cannot parse %s as type %s", openName(open), t.Name)
}

// descendType resolves the target type that applies inside a container being
// opened under the current parent scope.
func (p *Parser) descendType(open byte) (*shape.Type, error) {
	parentType := p.topType()
	switch parentType.Kind {
	case shape.KindRecord:
		name := p.topFieldName()
		if field := parentType.Field(name); field != nil {
			return field.Type, nil
		}
		// commitFieldName already rejected unknown fields of closed records
		return parentType.RestFieldType(), nil
	case shape.KindMap:
		return parentType.Elem, nil
	case shape.KindArray:
		if parentType.Size >= 0 && p.topListIndex() >= parentType.Size {
			return nil, fmt.Errorf("size mismatch: array of size %d cannot hold more elements", parentType.Size)
		}
		return parentType.Elem, nil
	case shape.KindTuple:
		idx := p.topListIndex()
		if idx < len(parentType.Items) {
			return parentType.Items[idx], nil
		}
		if parentType.Rest != nil {
			return parentType.Rest, nil
		}
		return nil, fmt.Errorf("size mismatch: tuple type '%s' cannot hold more than %d elements", parentType.Name, len(parentType.Items))
	case shape.KindUnion, shape.KindFiniteSet, shape.KindJSON, shape.KindAnydata, shape.KindTable:
		return parentType, nil
	}
	return nil, fmt.Errorf("cannot parse %s into type %s", openName(open), parentType.Name)
}

// endContainer finalizes the current scope: size and required-field
// validation, default filling, readonly freezing and, when this scope opened
// the active generic region, conversion of the generic subtree.
func (p *Parser) endContainer() (parseState, error) {
	cur := p.current
	if _, ok := cur.(*value.Object); ok {
		p.fieldNames = p.fieldNames[:len(p.fieldNames)-1]
	}
	t := p.popType()
	switch t.Kind {
	case shape.KindArray:
		count := p.popListIndex()
		arr := cur.(*value.Array)
		if t.Size >= 0 && count < t.Size {
			if !t.Filler {
				return 0, fmt.Errorf("size mismatch: expected %d elements for array type '%s', found %d", t.Size, t.Name, count)
			}
			// one filler per slot, padded composites must not alias
			for arr.Len() < t.Size {
				filler, err := value.DefaultOf(t.Elem)
				if err != nil {
					return 0, err
				}
				if err = arr.Append(filler); err != nil {
					return 0, err
				}
			}
		}
	case shape.KindTuple:
		count := p.popListIndex()
		if count < len(t.Items) {
			return 0, fmt.Errorf("size mismatch: tuple type '%s' requires %d elements, found %d", t.Name, len(t.Items), count)
		}
	case shape.KindRecord:
		obj := cur.(*value.Object)
		for _, field := range t.Fields {
			if obj.Has(field.Name) {
				continue
			}
			if field.Required {
				return 0, fmt.Errorf("missing required field '%s' of record '%s'", field.Name, t.Name)
			}
			if field.Optional {
				continue
			}
			filler, err := value.DefaultOf(field.Type)
			if err != nil {
				return 0, err
			}
			if err = obj.Put(field.Name, filler); err != nil {
				return 0, err
			}
		}
		if t.ReadOnly {
			value.Freeze(obj)
		}
	case shape.KindMap:
		if t.ReadOnly {
			value.Freeze(cur)
		}
	case shape.KindUnion, shape.KindFiniteSet, shape.KindJSON, shape.KindAnydata, shape.KindTable:
		if p.genericDepth == len(p.parents) {
			p.genericDepth = -1
			converted, err := conv.Convert(cur, t)
			if err != nil {
				return 0, err
			}
			cur = converted
		}
	}
	if len(p.parents) == 0 {
		p.current = cur
		return stateDocEnd, nil
	}
	parent := p.parents[len(p.parents)-1]
	p.parents[len(p.parents)-1] = nil
	p.parents = p.parents[:len(p.parents)-1]
	p.current = parent
	if err := p.attach(cur); err != nil {
		return 0, err
	}
	switch parent.(type) {
	case *value.Object:
		return stateFieldEnd, nil
	case *value.Array:
		return stateArrayElementEnd, nil
	}
	return 0, fmt.Errorf("corrupted parser state: unexpected parent value")
}

// commitFieldName records the pending field name for the open object scope,
// rejecting names a closed record does not permit.
func (p *Parser) commitFieldName(name string) error {
	holder, ok := p.current.(*value.Object)
	if !ok {
		return fmt.Errorf("corrupted parser state: field name outside an object scope")
	}
	if t := holder.Shape(); t != nil && t.Kind == shape.KindRecord {
		if t.Field(name) == nil && t.RestFieldType() == nil {
			return fmt.Errorf("field '%s' not permitted in closed record '%s'", name, t.Name)
		}
	}
	p.fieldNames[len(p.fieldNames)-1] = name
	return nil
}

// finishScalar converts the accumulated bare token and attaches it.
func (p *Parser) finishScalar() error {
	token := string(p.sb)
	p.sb = p.sb[:0]
	return p.processScalar(token, false)
}

// processScalar converts an accumulated token against the currently expected
// scalar type and attaches the result into the enclosing container, or makes
// it the document value at top level.
func (p *Parser) processScalar(token string, quoted bool) error {
	expected, err := p.scalarType()
	if err != nil {
		return err
	}
	var v any
	if quoted {
		v, err = p.convertString(token, expected)
	} else {
		v, err = p.convertBare(token, expected)
	}
	if err != nil {
		return err
	}
	if p.current == nil {
		p.types = p.types[:len(p.types)-1]
		p.current = v
		return nil
	}
	return p.attach(v)
}

// scalarType resolves the type expected of the next scalar; nil means the
// scalar belongs to a generic subtree and is inferred without a target.
func (p *Parser) scalarType() (*shape.Type, error) {
	if p.current == nil {
		return p.topType(), nil
	}
	switch holder := p.current.(type) {
	case *value.Object:
		t := holder.Shape()
		if t == nil {
			return nil, nil
		}
		if t.Kind == shape.KindMap {
			return t.Elem, nil
		}
		if field := t.Field(p.topFieldName()); field != nil {
			return field.Type, nil
		}
		return t.RestFieldType(), nil
	case *value.Array:
		t := holder.Shape()
		if t == nil {
			return nil, nil
		}
		if t.Kind == shape.KindArray {
			return t.Elem, nil
		}
		idx := p.topListIndex()
		if idx < len(t.Items) {
			return t.Items[idx], nil
		}
		if t.Rest != nil {
			return t.Rest, nil
		}
		return nil, fmt.Errorf("size mismatch: tuple type '%s' cannot hold more than %d elements", t.Name, len(t.Items))
	}
	return nil, fmt.Errorf("corrupted parser state: scalar outside a container scope")
}

func (p *Parser) convertBare(token string, expected *shape.Type) (any, error) {
	mode := literal.Mode(p.opts.numericMode)
	if expected == nil || expected.Kind == shape.KindJSON || expected.Kind == shape.KindAnydata {
		return literal.Infer(token, mode)
	}
	if expected.Kind.Generic() {
		v, err := literal.Infer(token, mode)
		if err != nil {
			return nil, err
		}
		return conv.Convert(v, expected)
	}
	return literal.Interpret(token, expected, mode)
}

// convertString resolves a quoted token: strings pass through for string and
// generic-content targets, other scalar targets re-interpret the content.
func (p *Parser) convertString(token string, expected *shape.Type) (any, error) {
	if expected == nil || expected.Kind == shape.KindString ||
		expected.Kind == shape.KindJSON || expected.Kind == shape.KindAnydata {
		return token, nil
	}
	if expected.Kind.Generic() {
		return conv.Convert(token, expected)
	}
	return literal.Interpret(token, expected, literal.Mode(p.opts.numericMode))
}

// attach links a finished value into the enclosing container, keeping the
// per-scope insertion index in step for typed arrays and tuples.
func (p *Parser) attach(v any) error {
	switch holder := p.current.(type) {
	case *value.Object:
		return holder.Put(p.topFieldName(), v)
	case *value.Array:
		if t := holder.Shape(); t != nil {
			idx := p.topListIndex()
			if t.Kind == shape.KindArray && t.Size >= 0 && idx >= t.Size {
				return fmt.Errorf("size mismatch: array of size %d cannot hold more elements", t.Size)
			}
			if t.Kind == shape.KindTuple && idx >= len(t.Items) && t.Rest == nil {
				return fmt.Errorf("size mismatch: tuple type '%s' cannot hold more than %d elements", t.Name, len(t.Items))
			}
			p.listIndexes[len(p.listIndexes)-1]++
		}
		return holder.Append(v)
	}
	return fmt.Errorf("corrupted parser state: no container to attach to")
}

func (p *Parser) topType() *shape.Type {
	return p.types[len(p.types)-1]
}

func (p *Parser) popType() *shape.Type {
	t := p.types[len(p.types)-1]
	p.types[len(p.types)-1] = nil
	p.types = p.types[:len(p.types)-1]
	return t
}

func (p *Parser) topFieldName() string {
	return p.fieldNames[len(p.fieldNames)-1]
}

func (p *Parser) topListIndex() int {
	return p.listIndexes[len(p.listIndexes)-1]
}

func (p *Parser) popListIndex() int {
	idx := p.listIndexes[len(p.listIndexes)-1]
	p.listIndexes = p.listIndexes[:len(p.listIndexes)-1]
	return idx
}

func openName(open byte) string {
	if open == '{' {
		return "object"
	}
	return "array"
}
