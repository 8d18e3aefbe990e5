package model

import (
	"encoding/json"
	"strings"
)

// AnswerKind tags the active variant of an AnswerValue.
type AnswerKind int

const (
	AnswerNull AnswerKind = iota
	AnswerString
	AnswerList
)

func (k AnswerKind) String() string {
	switch k {
	case AnswerString:
		return "string"
	case AnswerList:
		return "list"
	default:
		return "null"
	}
}

// AnswerValue is a tagged union: null, a single string, or a list of strings.
// The zero value is null. Values are immutable; List returns a copy.
type AnswerValue struct {
	kind AnswerKind
	str  string
	list []string
}

// NullAnswer returns the null variant.
func NullAnswer() AnswerValue {
	return AnswerValue{}
}

// StringAnswer returns the string variant.
func StringAnswer(s string) AnswerValue {
	return AnswerValue{kind: AnswerString, str: s}
}

// ListAnswer returns the list variant. A nil slice yields an empty list, not
// null.
func ListAnswer(values []string) AnswerValue {
	return AnswerValue{kind: AnswerList, list: append([]string{}, values...)}
}

// Kind reports the active variant.
func (a AnswerValue) Kind() AnswerKind {
	return a.kind
}

// IsNull reports whether the value is the null variant.
func (a AnswerValue) IsNull() bool {
	return a.kind == AnswerNull
}

// String returns the string payload; lists and null yield "".
func (a AnswerValue) String() string {
	if a.kind == AnswerString {
		return a.str
	}
	return ""
}

// List returns a copy of the list payload; other variants yield nil.
func (a AnswerValue) List() []string {
	if a.kind != AnswerList {
		return nil
	}
	return append([]string{}, a.list...)
}

// IsEmpty applies the emptiness test shared by the live submit check and the
// final validation: null, a whitespace-only string, or an empty list.
func (a AnswerValue) IsEmpty() bool {
	switch a.kind {
	case AnswerString:
		return strings.TrimSpace(a.str) == ""
	case AnswerList:
		return len(a.list) == 0
	default:
		return true
	}
}

// Display renders the value for the transcript; lists are joined with ", ".
// The stored value keeps its shape.
func (a AnswerValue) Display() string {
	switch a.kind {
	case AnswerString:
		return a.str
	case AnswerList:
		return strings.Join(a.list, ", ")
	default:
		return ""
	}
}

// Equal reports whether both values carry the same variant and payload.
func (a AnswerValue) Equal(b AnswerValue) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case AnswerString:
		return a.str == b.str
	case AnswerList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if a.list[i] != b.list[i] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON encodes null, a JSON string, or a JSON array.
func (a AnswerValue) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case AnswerString:
		return json.Marshal(a.str)
	case AnswerList:
		return json.Marshal(append([]string{}, a.list...))
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes null, strings, numbers (kept as their literal text)
// and arrays of scalars.
func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch typed := raw.(type) {
	case nil:
		*a = NullAnswer()
	case []any:
		values := make([]string, 0, len(typed))
		for _, item := range typed {
			values = append(values, scalarString(item))
		}
		*a = ListAnswer(values)
	default:
		*a = StringAnswer(scalarString(typed))
	}
	return nil
}
