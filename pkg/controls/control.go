package controls

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-smartforms/pkg/model"
)

var (
	// ErrOptionIndex is returned when an interaction targets a missing option.
	ErrOptionIndex = errors.New("controls: option index out of range")
	// ErrValueShape is returned when Apply receives a value the control cannot
	// represent.
	ErrValueShape = errors.New("controls: value does not fit control")
)

// OnChange receives the control's full current value after each interaction.
type OnChange func(model.AnswerValue)

// Control is the headless input widget for one field.
type Control interface {
	Field() model.FieldDescriptor
	Value() model.AnswerValue
	// Apply replaces the control state with value, as if the user had
	// produced it through the widget, and emits OnChange.
	Apply(value model.AnswerValue) error
}

// TextInput is implemented by free-text controls (text, textarea, number,
// select, dropdown).
type TextInput interface {
	Control
	SetText(text string)
	Text() string
}

// Choices is implemented by every option-based control.
type Choices interface {
	Control
	Options() []model.Option
	Active(index int) bool
}

// Chooser selects a single option of a select/dropdown control.
type Chooser interface {
	Choices
	Choose(index int) error
}

// Radio checks exactly one option.
type Radio interface {
	Choices
	Check(index int) error
}

// Checkbox toggles options independently.
type Checkbox interface {
	Choices
	Toggle(index int) error
}

// Buttons clicks toggle buttons, exclusive or independent depending on the
// descriptor's Multiple flag.
type Buttons interface {
	Choices
	Click(index int) error
	Multiple() bool
}

// Slider moves a range position.
type Slider interface {
	Control
	SetPosition(position float64)
	Position() float64
	Bounds() (min, max, step float64)
	Output() string
}

type baseControl struct {
	field    model.FieldDescriptor
	onChange OnChange
}

func (b *baseControl) Field() model.FieldDescriptor {
	return b.field
}

func (b *baseControl) emit(value model.AnswerValue) {
	if b.onChange != nil {
		b.onChange(value)
	}
}

func checkIndex(options []model.Option, index int) error {
	if index < 0 || index >= len(options) {
		return fmt.Errorf("%w: %d of %d", ErrOptionIndex, index, len(options))
	}
	return nil
}
