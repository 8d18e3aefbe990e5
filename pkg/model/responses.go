package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrKeyCommitted is returned when a ResponseMap key is written twice.
var ErrKeyCommitted = errors.New("model: answer already committed")

// ResponseMap holds committed answers keyed by field key, in visitation order.
// It grows by one entry per committed field and never rewrites a key.
type ResponseMap struct {
	keys   []string
	values map[string]AnswerValue
}

// NewResponseMap returns an empty map.
func NewResponseMap() *ResponseMap {
	return &ResponseMap{values: make(map[string]AnswerValue)}
}

// Set commits value under key. Writing an existing key fails with
// ErrKeyCommitted and leaves the map unchanged.
func (m *ResponseMap) Set(key string, value AnswerValue) error {
	if m.values == nil {
		m.values = make(map[string]AnswerValue)
	}
	if _, exists := m.values[key]; exists {
		return fmt.Errorf("%w: %q", ErrKeyCommitted, key)
	}
	m.keys = append(m.keys, key)
	m.values[key] = value
	return nil
}

// Get returns the committed value for key.
func (m *ResponseMap) Get(key string) (AnswerValue, bool) {
	if m == nil {
		return AnswerValue{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Len reports the number of committed answers.
func (m *ResponseMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns keys in insertion order.
func (m *ResponseMap) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Clone returns an independent copy.
func (m *ResponseMap) Clone() *ResponseMap {
	out := NewResponseMap()
	if m == nil {
		return out
	}
	for _, key := range m.keys {
		out.keys = append(out.keys, key)
		out.values[key] = m.values[key]
	}
	return out
}

// Map flattens the answers into plain Go values: nil, string or []string.
func (m *ResponseMap) Map() map[string]any {
	out := make(map[string]any, m.Len())
	if m == nil {
		return out
	}
	for _, key := range m.keys {
		value := m.values[key]
		switch value.Kind() {
		case AnswerString:
			out[key] = value.String()
		case AnswerList:
			out[key] = value.List()
		default:
			out[key] = nil
		}
	}
	return out
}

// MarshalJSON writes an object whose keys follow insertion order.
func (m *ResponseMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if m != nil {
		for i, key := range m.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodedKey, err := json.Marshal(key)
			if err != nil {
				return nil, err
			}
			buf.Write(encodedKey)
			buf.WriteByte(':')
			encodedValue, err := m.values[key].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(encodedValue)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
