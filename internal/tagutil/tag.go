// Package tagutil resolves json and format struct tags into the effective
// field naming used by shape derivation and struct binding.
package tagutil

import (
	"reflect"
	"strings"

	"github.com/viant/tagly/format"
)

type FieldTag struct {
	Name      string
	Explicit  bool
	OmitEmpty bool
	Ignore    bool
}

// Resolve resolves precedence between json and format tags: an explicit json
// name wins, a format tag name or case format applies otherwise.
func Resolve(sf reflect.StructField) FieldTag {
	tag := parseJSONTag(sf.Name, sf.Tag.Get("json"))
	if fTag, err := format.Parse(sf.Tag); err == nil && fTag != nil {
		tag.OmitEmpty = tag.OmitEmpty || fTag.Omitempty
		tag.Ignore = tag.Ignore || fTag.Ignore
		if !tag.Explicit && (fTag.Name != "" || fTag.CaseFormat != "") {
			named := &format.Tag{Name: fTag.Name, CaseFormat: fTag.CaseFormat}
			if named.Name == "" {
				named.Name = sf.Name
			}
			if resolved := named.CaseFormatName(""); resolved != "" {
				tag.Name = resolved
				tag.Explicit = true
			}
		}
	}
	return tag
}

func parseJSONTag(defaultName string, raw string) FieldTag {
	if raw == "" {
		return FieldTag{Name: defaultName}
	}
	parts := strings.Split(raw, ",")
	name := parts[0]
	explicit := name != ""
	if name == "" {
		name = defaultName
	}
	tag := FieldTag{
		Name:     name,
		Explicit: explicit,
		Ignore:   name == "-",
	}
	for _, p := range parts[1:] {
		if p == "omitempty" {
			tag.OmitEmpty = true
			break
		}
	}
	return tag
}
