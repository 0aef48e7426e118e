// Package schemafile loads type graph declarations from YAML (or JSON,
// which YAML subsumes) documents.
//
// A node is either a type string or a mapping with a "type" key:
//
//	type: mapping
//	extra: discard
//	fields:
//	  name: string
//	  birthday: date
//	  favorites: "[string]"
//	  nickname: {type: string, optional: true}
//	  scores: {type: strmapping, of: int}
//
// Scalar names are string, int, float, bool, date, datetime, time, any.
// "[t]" is shorthand for a list of t. Field order in the document is the
// declaration order of the resulting graph.
package schemafile

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/lattice/pkg/marker"
	"github.com/aretw0/lattice/pkg/typegraph"
)

// Parse decodes one schema document into a type graph.
func Parse(data []byte) (typegraph.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return typegraph.Node{}, fmt.Errorf("failed to parse schema: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return typegraph.Node{}, fmt.Errorf("empty schema document")
	}
	return parseNode(doc.Content[0])
}

// ParseType converts a type string to a single-node (or list) graph.
// Supports the scalar names plus "[t]" nesting, mirroring the string
// convention used for inline field declarations.
func ParseType(s string) (typegraph.Node, error) {
	s = strings.TrimSpace(s)
	if len(s) > 2 && s[0] == '[' && s[len(s)-1] == ']' {
		elem, err := ParseType(s[1 : len(s)-1])
		if err != nil {
			return typegraph.Node{}, err
		}
		return marker.List{}.Of(elem), nil
	}
	m, err := scalarMarker(s)
	if err != nil {
		return typegraph.Node{}, err
	}
	return typegraph.New(m), nil
}

func scalarMarker(name string) (marker.Marker, error) {
	switch name {
	case "string":
		return marker.String{}, nil
	case "int":
		return marker.Int{}, nil
	case "float":
		return marker.Float{}, nil
	case "bool":
		return marker.Bool{}, nil
	case "date":
		return marker.Date{}, nil
	case "datetime":
		return marker.DateTime{}, nil
	case "time":
		return marker.Time{}, nil
	case "any":
		return marker.Passthrough{}, nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", name)
	}
}

func parseNode(n *yaml.Node) (typegraph.Node, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return ParseType(n.Value)
	case yaml.MappingNode:
		return parseMapping(n)
	case yaml.AliasNode:
		return parseNode(n.Alias)
	default:
		return typegraph.Node{}, fmt.Errorf("line %d: expected type name or mapping", n.Line)
	}
}

func parseMapping(n *yaml.Node) (typegraph.Node, error) {
	var (
		typeName string
		fields   *yaml.Node
		of       *yaml.Node
		extra    string
		optional bool
	)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "type":
			typeName = val.Value
		case "fields":
			fields = val
		case "of":
			of = val
		case "extra":
			extra = val.Value
		case "optional":
			optional = val.Value == "true"
		default:
			return typegraph.Node{}, fmt.Errorf("line %d: unknown key %q", key.Line, key.Value)
		}
	}

	tg, err := buildNode(n, typeName, fields, of, extra)
	if err != nil {
		return typegraph.Node{}, err
	}
	if optional {
		tg = marker.OptionalOf(tg)
	}
	return tg, nil
}

func buildNode(n *yaml.Node, typeName string, fields, of *yaml.Node, extra string) (typegraph.Node, error) {
	switch typeName {
	case "mapping":
		if fields == nil || fields.Kind != yaml.MappingNode {
			return typegraph.Node{}, fmt.Errorf("line %d: mapping requires fields", n.Line)
		}
		policy, err := parsePolicy(extra)
		if err != nil {
			return typegraph.Node{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		var decl []marker.Field
		for i := 0; i+1 < len(fields.Content); i += 2 {
			key, val := fields.Content[i], fields.Content[i+1]
			child, err := parseNode(val)
			if err != nil {
				return typegraph.Node{}, fmt.Errorf("field %q: %w", key.Value, err)
			}
			decl = append(decl, marker.F(key.Value, child))
		}
		return marker.SchemaMapping{Extra: policy}.Of(decl...), nil
	case "list":
		if of == nil {
			return typegraph.Node{}, fmt.Errorf("line %d: list requires of", n.Line)
		}
		elem, err := parseNode(of)
		if err != nil {
			return typegraph.Node{}, err
		}
		return marker.List{}.Of(elem), nil
	case "strmapping":
		if of == nil {
			return typegraph.Node{}, fmt.Errorf("line %d: strmapping requires of", n.Line)
		}
		elem, err := parseNode(of)
		if err != nil {
			return typegraph.Node{}, err
		}
		return marker.StrMapping{}.Of(elem), nil
	case "":
		return typegraph.Node{}, fmt.Errorf("line %d: missing type", n.Line)
	default:
		return ParseType(typeName)
	}
}

func parsePolicy(s string) (marker.ExtraFieldPolicy, error) {
	switch s {
	case "", "discard":
		return marker.Discard, nil
	case "save":
		return marker.Save, nil
	case "error", "reject":
		return marker.Reject, nil
	default:
		return marker.Discard, fmt.Errorf("unknown extra-field policy %q", s)
	}
}
