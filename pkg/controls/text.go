package controls

import (
	"fmt"

	"github.com/goliatone/go-smartforms/pkg/model"
)

// textControl backs text, textarea and number fields. Numbers stay strings
// until submission.
type textControl struct {
	baseControl
	text string
}

func newTextControl(field model.FieldDescriptor, onChange OnChange) *textControl {
	return &textControl{baseControl: baseControl{field: field, onChange: onChange}}
}

func (c *textControl) SetText(text string) {
	c.text = text
	c.emit(c.Value())
}

func (c *textControl) Text() string {
	return c.text
}

func (c *textControl) Value() model.AnswerValue {
	return model.StringAnswer(c.text)
}

func (c *textControl) Apply(value model.AnswerValue) error {
	if value.Kind() == model.AnswerList {
		return fmt.Errorf("%w: %s takes a single value", ErrValueShape, c.field.Type)
	}
	c.SetText(value.String())
	return nil
}

// selectControl backs select and dropdown fields: the value is the chosen
// option's value string.
type selectControl struct {
	textControl
}

func newSelectControl(field model.FieldDescriptor, onChange OnChange) *selectControl {
	return &selectControl{textControl: *newTextControl(field, onChange)}
}

func (c *selectControl) Options() []model.Option {
	return append([]model.Option(nil), c.field.Options...)
}

func (c *selectControl) Active(index int) bool {
	if index < 0 || index >= len(c.field.Options) {
		return false
	}
	return c.text != "" && c.field.Options[index].Value == c.text
}

func (c *selectControl) Choose(index int) error {
	if err := checkIndex(c.field.Options, index); err != nil {
		return err
	}
	c.SetText(c.field.Options[index].Value)
	return nil
}
