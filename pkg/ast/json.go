package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

const elemTypeKey = "elem_type"

// MarshalJSON flattens the element into {"elem_type": ..., <field>: ...}.
func (e *Element) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("null"), nil
	}
	payload := make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		payload[k] = v
	}
	payload[elemTypeKey] = string(e.ElemType)
	return json.Marshal(payload)
}

// DecodeJSON reads a JSON-encoded AST produced by an external parser.
func DecodeJSON(r io.Reader) (*Element, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("ast: empty document")
		}
		return nil, fmt.Errorf("ast: %w", err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("ast: root must be an object, got %T", raw)
	}
	return Decode(obj)
}

// UnmarshalJSON implements json.Unmarshaler on top of Decode.
func (e *Element) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*e = *decoded
	return nil
}

// Decode converts a generic JSON object into an element tree.
func Decode(node map[string]any) (*Element, error) {
	typ, ok := node[elemTypeKey].(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("ast: node is missing %q", elemTypeKey)
	}
	elem := New(Kind(typ), make(map[string]any, len(node)-1))
	for key, raw := range node {
		if key == elemTypeKey {
			continue
		}
		val, err := decodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s.%s: %w", typ, key, err)
		}
		elem.Fields[key] = val
	}
	return elem, nil
}

func decodeValue(raw any) (any, error) {
	switch v := raw.(type) {
	case nil, string, bool:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("number %s is not a 64-bit integer", v.String())
		}
		return n, nil
	case float64:
		if v != float64(int64(v)) {
			return nil, fmt.Errorf("number %v is not an integer", v)
		}
		return int64(v), nil
	case map[string]any:
		return Decode(v)
	case []any:
		out := make([]*Element, 0, len(v))
		for idx, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("sequence entry %d must be a node, got %T", idx, item)
			}
			child, err := Decode(obj)
			if err != nil {
				return nil, err
			}
			out = append(out, child)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value %T", raw)
	}
}
