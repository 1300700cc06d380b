package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Kind tags the shape of a query tree node.
type Kind int

const (
	KindScalar Kind = iota
	KindMapping
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return "scalar"
	}
}

// Node is one node of a structured query tree.
// The set of implementations is closed: Mapping, Sequence and Scalar.
type Node interface {
	Kind() Kind
	// Value converts the node back into plain Go values (map[string]any, []any, leaves).
	Value() any
	isNode()
}

// Mapping is an object node. Nil values are encoded as JSON null.
type Mapping map[string]Node

// Sequence is an array node.
type Sequence []Node

// Scalar is a leaf: string, bool, number (json.Number when parsed) or nil.
type Scalar struct {
	V any
}

func (Mapping) Kind() Kind  { return KindMapping }
func (Sequence) Kind() Kind { return KindSequence }
func (Scalar) Kind() Kind   { return KindScalar }

func (Mapping) isNode()  {}
func (Sequence) isNode() {}
func (Scalar) isNode()   {}

func (m Mapping) Value() any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = valueOf(v)
	}
	return out
}

func (s Sequence) Value() any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = valueOf(v)
	}
	return out
}

func (s Scalar) Value() any { return s.V }

// Get returns the child stored under key.
func (m Mapping) Get(key string) (Node, bool) {
	n, ok := m[key]
	return n, ok
}

// Keys returns the mapping keys in sorted order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON encodes the mapping with sorted keys so request bodies are deterministic.
func (m Mapping) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalNode(m[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s Sequence) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, n := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		val, err := marshalNode(n)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		buf.Write(val)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.V)
}

// Float reports the numeric value of the scalar, if it holds one.
func (s Scalar) Float() (float64, bool) {
	switch v := s.V.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// IsEmpty reports whether n carries no query content:
// nil, a null scalar, an empty mapping or an empty sequence.
func IsEmpty(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case Mapping:
		return len(v) == 0
	case Sequence:
		return len(v) == 0
	case Scalar:
		return v.V == nil
	}
	return false
}

func valueOf(n Node) any {
	if n == nil {
		return nil
	}
	return n.Value()
}

func marshalNode(n Node) ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n)
}
