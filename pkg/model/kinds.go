package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// FieldKind is the closed enumeration of chat field kinds.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindNumber   FieldKind = "number"
	FieldKindTextarea FieldKind = "textarea"
	FieldKindSelect   FieldKind = "select"
	FieldKindDropdown FieldKind = "dropdown"
	FieldKindCheckbox FieldKind = "checkbox"
	FieldKindRadio    FieldKind = "radio"
	FieldKindButtons  FieldKind = "buttons"
	FieldKindSlider   FieldKind = "slider"
)

// ErrUnknownFieldKind is returned when a descriptor names a kind outside the
// closed set.
var ErrUnknownFieldKind = errors.New("model: unknown field kind")

// FieldKinds lists every kind in declaration order.
func FieldKinds() []FieldKind {
	return []FieldKind{
		FieldKindText,
		FieldKindNumber,
		FieldKindTextarea,
		FieldKindSelect,
		FieldKindDropdown,
		FieldKindCheckbox,
		FieldKindRadio,
		FieldKindButtons,
		FieldKindSlider,
	}
}

// ParseFieldKind resolves a raw type tag. Matching is case-insensitive and
// ignores surrounding whitespace.
func ParseFieldKind(raw string) (FieldKind, error) {
	candidate := FieldKind(strings.ToLower(strings.TrimSpace(raw)))
	for _, kind := range FieldKinds() {
		if kind == candidate {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFieldKind, raw)
}

// Valid reports whether k is one of the nine known kinds.
func (k FieldKind) Valid() bool {
	for _, kind := range FieldKinds() {
		if kind == k {
			return true
		}
	}
	return false
}

func (k FieldKind) String() string {
	return string(k)
}

// UnmarshalJSON enforces the closed set when decoding descriptors.
func (k *FieldKind) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("model: field type must be a string: %w", err)
	}
	parsed, err := ParseFieldKind(raw)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ValueShape describes the semantic shape of the value a kind produces.
type ValueShape int

const (
	// ShapeString kinds always produce a string (possibly empty).
	ShapeString ValueShape = iota
	// ShapeList kinds produce a list of option values.
	ShapeList
	// ShapeToggle kinds produce a single option value or null.
	ShapeToggle
)

// FieldKindVisitor receives one call per kind. Implementations must handle
// every kind; the compiler enforces this when the interface grows.
type FieldKindVisitor interface {
	VisitText()
	VisitNumber()
	VisitTextarea()
	VisitSelect()
	VisitDropdown()
	VisitCheckbox()
	VisitRadio()
	VisitButtons()
	VisitSlider()
}

// Visit dispatches to the visitor method matching k. Unknown kinds return
// ErrUnknownFieldKind without calling the visitor.
func (k FieldKind) Visit(v FieldKindVisitor) error {
	switch k {
	case FieldKindText:
		v.VisitText()
	case FieldKindNumber:
		v.VisitNumber()
	case FieldKindTextarea:
		v.VisitTextarea()
	case FieldKindSelect:
		v.VisitSelect()
	case FieldKindDropdown:
		v.VisitDropdown()
	case FieldKindCheckbox:
		v.VisitCheckbox()
	case FieldKindRadio:
		v.VisitRadio()
	case FieldKindButtons:
		v.VisitButtons()
	case FieldKindSlider:
		v.VisitSlider()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFieldKind, string(k))
	}
	return nil
}

// NeedsOptions reports whether descriptors of this kind must carry options.
func (k FieldKind) NeedsOptions() bool {
	switch k {
	case FieldKindSelect, FieldKindDropdown, FieldKindCheckbox, FieldKindRadio, FieldKindButtons:
		return true
	default:
		return false
	}
}

// Shape reports the value shape produced by a field of this kind. Buttons
// depend on the descriptor's Multiple flag, so use FieldDescriptor.Shape when a
// descriptor is at hand.
func (k FieldKind) Shape() ValueShape {
	switch k {
	case FieldKindCheckbox:
		return ShapeList
	case FieldKindButtons:
		return ShapeToggle
	default:
		return ShapeString
	}
}

// IsNumeric reports whether the kind carries min/max/step bounds.
func (k FieldKind) IsNumeric() bool {
	return k == FieldKindNumber || k == FieldKindSlider
}
