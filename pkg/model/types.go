package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Layout is a presentation hint for option-based kinds.
type Layout string

const (
	LayoutHorizontal Layout = "horizontal"
	LayoutVertical   Layout = "vertical"
)

// Alignment is a presentation hint for the whole field.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// UnitPosition frames a slider's live output with its unit.
type UnitPosition string

const (
	UnitBefore UnitPosition = "before"
	UnitAfter  UnitPosition = "after"
)

// Option is one selectable entry of an option-based field.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// UnmarshalJSON accepts the canonical {label, value} object as well as the
// legacy shapes seen in older forms: a bare string, or an object without a
// value. In both legacy cases the label doubles as the value.
func (o *Option) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var label string
		if err := json.Unmarshal(trimmed, &label); err != nil {
			return err
		}
		*o = Option{Label: label, Value: label}
		return nil
	}

	var raw struct {
		Label any `json:"label"`
		Text  any `json:"text"`
		Value any `json:"value"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("model: option: %w", err)
	}
	label := scalarString(raw.Label)
	if label == "" {
		label = scalarString(raw.Text)
	}
	value := scalarString(raw.Value)
	if value == "" {
		value = label
	}
	if label == "" {
		label = value
	}
	*o = Option{Label: label, Value: value}
	return nil
}

// FieldDescriptor is the static definition of one question.
type FieldDescriptor struct {
	ID              string       `json:"id,omitempty"`
	Type            FieldKind    `json:"type"`
	Label           string       `json:"label"`
	Placeholder     string       `json:"placeholder,omitempty"`
	HelpText        string       `json:"helpText,omitempty"`
	RequiredMessage string       `json:"requiredMessage,omitempty"`
	Required        bool         `json:"required,omitempty"`
	Options         []Option     `json:"options,omitempty"`
	Min             *float64     `json:"min,omitempty"`
	Max             *float64     `json:"max,omitempty"`
	Step            *float64     `json:"step,omitempty"`
	DefaultValue    *float64     `json:"defaultValue,omitempty"`
	Multiple        bool         `json:"multiple,omitempty"`
	Layout          Layout       `json:"layout,omitempty"`
	FieldAlignment  Alignment    `json:"fieldAlignment,omitempty"`
	Unit            string       `json:"unit,omitempty"`
	UnitPosition    UnitPosition `json:"unitPosition,omitempty"`
}

// UnmarshalJSON decodes a descriptor while tolerating the loosely typed
// attribute payloads block editors emit: numeric bounds may arrive as strings,
// blank strings mean "unset", and a missing type defaults to text.
func (f *FieldDescriptor) UnmarshalJSON(data []byte) error {
	type plain FieldDescriptor
	var aux struct {
		plain
		Type         *FieldKind `json:"type"`
		Required     looseBool  `json:"required"`
		Multiple     looseBool  `json:"multiple"`
		Min          looseFloat `json:"min"`
		Max          looseFloat `json:"max"`
		Step         looseFloat `json:"step"`
		DefaultValue looseFloat `json:"defaultValue"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	out := FieldDescriptor(aux.plain)
	out.Type = FieldKindText
	if aux.Type != nil {
		out.Type = *aux.Type
	}
	out.Required = bool(aux.Required)
	out.Multiple = bool(aux.Multiple)
	out.Min = aux.Min.ptr
	out.Max = aux.Max.ptr
	out.Step = aux.Step.ptr
	out.DefaultValue = aux.DefaultValue.ptr
	*f = out
	return nil
}

// Key returns the answer-map key for the field at the given ordinal: the id
// when present, otherwise the ordinal itself.
func (f FieldDescriptor) Key(ordinal int) string {
	return FieldKey(f, ordinal)
}

// FieldKey mirrors FieldDescriptor.Key for callers holding a descriptor value.
func FieldKey(f FieldDescriptor, ordinal int) string {
	if id := strings.TrimSpace(f.ID); id != "" {
		return id
	}
	return strconv.Itoa(ordinal)
}

// Shape reports the value shape this field produces, accounting for the
// buttons kind's Multiple flag.
func (f FieldDescriptor) Shape() ValueShape {
	if f.Type == FieldKindButtons && f.Multiple {
		return ShapeList
	}
	return f.Type.Shape()
}

// EmptyAnswer returns the reset form of the draft answer for this field.
func (f FieldDescriptor) EmptyAnswer() AnswerValue {
	switch f.Shape() {
	case ShapeList:
		return ListAnswer(nil)
	case ShapeToggle:
		return NullAnswer()
	default:
		return StringAnswer("")
	}
}

// Bounds returns min and max with the slider defaults (0 and 100) applied.
func (f FieldDescriptor) Bounds() (float64, float64) {
	lo, hi := 0.0, 100.0
	if f.Min != nil {
		lo = *f.Min
	}
	if f.Max != nil {
		hi = *f.Max
	}
	return lo, hi
}

// OptionIndex returns the index of the option carrying value, or -1.
func (f FieldDescriptor) OptionIndex(value string) int {
	for i, opt := range f.Options {
		if opt.Value == value {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the descriptor.
func (f FieldDescriptor) Clone() FieldDescriptor {
	out := f
	if f.Options != nil {
		out.Options = append([]Option(nil), f.Options...)
	}
	out.Min = cloneFloat(f.Min)
	out.Max = cloneFloat(f.Max)
	out.Step = cloneFloat(f.Step)
	out.DefaultValue = cloneFloat(f.DefaultValue)
	return out
}

// FormDescriptor is the top-level object embedded in the page: an ordered
// list of fields plus optional identification.
type FormDescriptor struct {
	FormID string            `json:"formId,omitempty"`
	Title  string            `json:"title,omitempty"`
	Fields []FieldDescriptor `json:"fields"`
}

// Len reports the number of fields.
func (d FormDescriptor) Len() int {
	return len(d.Fields)
}

// Field returns the descriptor at index i.
func (d FormDescriptor) Field(i int) (FieldDescriptor, bool) {
	if i < 0 || i >= len(d.Fields) {
		return FieldDescriptor{}, false
	}
	return d.Fields[i], true
}

// Clone returns a deep copy of the form descriptor.
func (d FormDescriptor) Clone() FormDescriptor {
	out := d
	if d.Fields != nil {
		out.Fields = make([]FieldDescriptor, len(d.Fields))
		for i, field := range d.Fields {
			out.Fields[i] = field.Clone()
		}
	}
	return out
}

// Float returns a pointer to v, for building descriptors in code.
func Float(v float64) *float64 {
	return &v
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	value := *v
	return &value
}

type looseFloat struct {
	ptr *float64
}

func (l *looseFloat) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			// non-numeric strings are treated as unset
			return nil
		}
		l.ptr = &v
		return nil
	}
	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return fmt.Errorf("model: expected number, got %s", trimmed)
	}
	l.ptr = &v
	return nil
}

type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		*b = false
	case trimmed[0] == '"':
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(raw))
		*b = looseBool(err == nil && parsed)
	case trimmed[0] == 't' || trimmed[0] == 'f':
		var v bool
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return err
		}
		*b = looseBool(v)
	default:
		var n float64
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("model: expected boolean, got %s", trimmed)
		}
		*b = n != 0
	}
	return nil
}

func scalarString(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprint(typed)
	}
}
