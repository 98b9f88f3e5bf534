package shape

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/tagly/format/text"
)

type derivedAddress struct {
	City string `json:"city"`
}

type derivedUser struct {
	Name    string `json:"name"`
	Age     int    `json:"age,omitempty"`
	Raw     []byte `json:"raw"`
	Alias   *string
	Tags    []string
	Lookup  map[string]int
	Address derivedAddress
	Meta    interface{}
	Secret  string `json:"-"`
	hidden  string
}

type linkedNode struct {
	ID   int
	Next *linkedNode
}

func TestOfStruct(t *testing.T) {
	derived, err := OfStruct(reflect.TypeOf(derivedUser{}), text.CaseFormatUndefined)
	assert.Nil(t, err)
	assert.Equal(t, KindRecord, derived.Kind)

	name := derived.Field("name")
	if assert.NotNil(t, name) {
		assert.Equal(t, KindString, name.Type.Kind)
		assert.False(t, name.Optional)
	}
	age := derived.Field("age")
	if assert.NotNil(t, age) {
		assert.Equal(t, KindInt, age.Type.Kind)
		assert.True(t, age.Optional)
	}
	raw := derived.Field("raw")
	if assert.NotNil(t, raw) {
		assert.Equal(t, KindString, raw.Type.Kind)
	}
	alias := derived.Field("Alias")
	if assert.NotNil(t, alias) {
		assert.True(t, alias.Optional)
	}
	tags := derived.Field("Tags")
	if assert.NotNil(t, tags) {
		assert.Equal(t, KindArray, tags.Type.Kind)
		assert.Equal(t, KindString, tags.Type.Elem.Kind)
	}
	lookup := derived.Field("Lookup")
	if assert.NotNil(t, lookup) {
		assert.Equal(t, KindMap, lookup.Type.Kind)
		assert.Equal(t, KindInt, lookup.Type.Elem.Kind)
	}
	address := derived.Field("Address")
	if assert.NotNil(t, address) {
		assert.Equal(t, KindRecord, address.Type.Kind)
		assert.NotNil(t, address.Type.Field("city"))
	}
	meta := derived.Field("Meta")
	if assert.NotNil(t, meta) {
		assert.Equal(t, KindAnydata, meta.Type.Kind)
	}
	assert.Nil(t, derived.Field("Secret"))
	assert.Nil(t, derived.Field("-"))
	assert.Nil(t, derived.Field("hidden"))
}

func TestOfStruct_CaseFormat(t *testing.T) {
	derived, err := OfStruct(reflect.TypeOf(derivedUser{}), text.CaseFormatLowerCamel)
	assert.Nil(t, err)
	// tagged names stay as tagged, untagged names follow the case format
	assert.NotNil(t, derived.Field("name"))
	assert.NotNil(t, derived.Field("alias"))
	assert.NotNil(t, derived.Field("address"))
	assert.Nil(t, derived.Field("Alias"))
}

func TestOfStruct_Recursive(t *testing.T) {
	derived, err := OfStruct(reflect.TypeOf(linkedNode{}), text.CaseFormatUndefined)
	assert.Nil(t, err)
	next := derived.Field("Next")
	if assert.NotNil(t, next) {
		assert.Same(t, derived, next.Type)
		assert.True(t, next.Optional)
	}
}

func TestOfStruct_Cached(t *testing.T) {
	first, err := OfStruct(reflect.TypeOf(derivedUser{}), text.CaseFormatUndefined)
	assert.Nil(t, err)
	second, err := OfStruct(reflect.TypeOf(&derivedUser{}), text.CaseFormatUndefined)
	assert.Nil(t, err)
	assert.Same(t, first, second)
}

func TestOfStruct_Invalid(t *testing.T) {
	_, err := OfStruct(nil, text.CaseFormatUndefined)
	assert.NotNil(t, err)
	_, err = OfStruct(reflect.TypeOf(1), text.CaseFormatUndefined)
	assert.NotNil(t, err)
	_, err = OfStruct(reflect.TypeOf(struct {
		Ch chan int
	}{}), text.CaseFormatUndefined)
	assert.NotNil(t, err)
}
