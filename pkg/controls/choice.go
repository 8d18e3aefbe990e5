package controls

import (
	"fmt"

	"github.com/goliatone/go-smartforms/pkg/model"
)

type choiceState struct {
	baseControl
	active []bool
}

func newChoiceState(field model.FieldDescriptor, onChange OnChange) choiceState {
	return choiceState{
		baseControl: baseControl{field: field, onChange: onChange},
		active:      make([]bool, len(field.Options)),
	}
}

func (c *choiceState) Options() []model.Option {
	return append([]model.Option(nil), c.field.Options...)
}

func (c *choiceState) Active(index int) bool {
	if index < 0 || index >= len(c.active) {
		return false
	}
	return c.active[index]
}

// activeValues lists active option values in declaration order.
func (c *choiceState) activeValues() []string {
	out := make([]string, 0, len(c.active))
	for i, on := range c.active {
		if on {
			out = append(out, c.field.Options[i].Value)
		}
	}
	return out
}

func (c *choiceState) clear() {
	for i := range c.active {
		c.active[i] = false
	}
}

// indicesFor maps option values back to indices, preserving declaration order.
func (c *choiceState) indicesFor(values []string) ([]int, error) {
	want := make(map[string]struct{}, len(values))
	for _, v := range values {
		want[v] = struct{}{}
	}
	var out []int
	for i, opt := range c.field.Options {
		if _, ok := want[opt.Value]; ok {
			out = append(out, i)
			delete(want, opt.Value)
		}
	}
	if len(want) > 0 {
		return nil, fmt.Errorf("%w: unknown option value", ErrValueShape)
	}
	return out, nil
}

type radioControl struct {
	choiceState
}

func (c *radioControl) Check(index int) error {
	if err := checkIndex(c.field.Options, index); err != nil {
		return err
	}
	c.clear()
	c.active[index] = true
	c.emit(c.Value())
	return nil
}

func (c *radioControl) Value() model.AnswerValue {
	for i, on := range c.active {
		if on {
			return model.StringAnswer(c.field.Options[i].Value)
		}
	}
	return model.StringAnswer("")
}

// Apply checks the option with the given value. An empty string or null
// unchecks every option.
func (c *radioControl) Apply(value model.AnswerValue) error {
	if value.Kind() == model.AnswerList {
		return fmt.Errorf("%w: radio takes a single value", ErrValueShape)
	}
	if value.String() == "" {
		c.clear()
		c.emit(c.Value())
		return nil
	}
	idx := c.field.OptionIndex(value.String())
	if idx < 0 {
		return fmt.Errorf("%w: unknown option %q", ErrValueShape, value.String())
	}
	return c.Check(idx)
}

type checkboxControl struct {
	choiceState
}

// Toggle flips one box and recomputes the whole value from every box.
func (c *checkboxControl) Toggle(index int) error {
	if err := checkIndex(c.field.Options, index); err != nil {
		return err
	}
	c.active[index] = !c.active[index]
	c.emit(c.Value())
	return nil
}

func (c *checkboxControl) Value() model.AnswerValue {
	return model.ListAnswer(c.activeValues())
}

func (c *checkboxControl) Apply(value model.AnswerValue) error {
	indices, err := c.indicesFor(listOf(value))
	if err != nil {
		return err
	}
	c.clear()
	for _, idx := range indices {
		c.active[idx] = true
	}
	c.emit(c.Value())
	return nil
}

type buttonsControl struct {
	choiceState
}

func (c *buttonsControl) Multiple() bool {
	return c.field.Multiple
}

// Click toggles one button. In single mode the clicked button becomes the only
// active one, and clicking the active button clears the selection.
func (c *buttonsControl) Click(index int) error {
	if err := checkIndex(c.field.Options, index); err != nil {
		return err
	}
	if c.field.Multiple {
		c.active[index] = !c.active[index]
	} else {
		wasActive := c.active[index]
		c.clear()
		c.active[index] = !wasActive
	}
	c.emit(c.Value())
	return nil
}

func (c *buttonsControl) Value() model.AnswerValue {
	values := c.activeValues()
	if c.field.Multiple {
		return model.ListAnswer(values)
	}
	if len(values) == 0 {
		return model.NullAnswer()
	}
	return model.StringAnswer(values[0])
}

func (c *buttonsControl) Apply(value model.AnswerValue) error {
	values := listOf(value)
	if !c.field.Multiple && len(values) > 1 {
		return fmt.Errorf("%w: single-choice buttons take one value", ErrValueShape)
	}
	indices, err := c.indicesFor(values)
	if err != nil {
		return err
	}
	c.clear()
	for _, idx := range indices {
		c.active[idx] = true
	}
	c.emit(c.Value())
	return nil
}

func listOf(value model.AnswerValue) []string {
	switch value.Kind() {
	case model.AnswerList:
		return value.List()
	case model.AnswerString:
		if value.String() == "" {
			return nil
		}
		return []string{value.String()}
	default:
		return nil
	}
}
