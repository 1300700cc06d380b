package query

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FromValue converts decoded JSON (map[string]any, []any, leaves) into a tree.
// Existing nodes are returned as they are.
func FromValue(v any) Node {
	switch t := v.(type) {
	case nil:
		return Scalar{}
	case Node:
		return t
	case map[string]any:
		m := make(Mapping, len(t))
		for k, child := range t {
			m[k] = FromValue(child)
		}
		return m
	case []any:
		s := make(Sequence, len(t))
		for i, child := range t {
			s[i] = FromValue(child)
		}
		return s
	case []map[string]any:
		s := make(Sequence, len(t))
		for i, child := range t {
			s[i] = FromValue(child)
		}
		return s
	case []string:
		s := make(Sequence, len(t))
		for i, child := range t {
			s[i] = Scalar{V: child}
		}
		return s
	default:
		return Scalar{V: v}
	}
}

// Parse decodes a JSON document into a tree. Numbers are kept as json.Number
// so large integers (epoch millis in range filters) survive unchanged.
func Parse(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode query: %w", err)
	}
	return FromValue(v), nil
}

// Encode marshals a tree into JSON. A nil node encodes as null.
func Encode(n Node) ([]byte, error) {
	return marshalNode(n)
}
