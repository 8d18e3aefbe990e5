package controls

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-smartforms/pkg/model"
)

type sliderControl struct {
	baseControl
	min, max, step float64
	position       float64
}

func newSliderControl(field model.FieldDescriptor, onChange OnChange) *sliderControl {
	lo, hi := field.Bounds()
	step := 1.0
	if field.Step != nil && *field.Step > 0 {
		step = *field.Step
	}
	c := &sliderControl{
		baseControl: baseControl{field: field, onChange: onChange},
		min:         lo,
		max:         hi,
		step:        step,
	}
	c.position = DefaultSliderPosition(field)
	return c
}

// DefaultSliderPosition is the descriptor's defaultValue, or the floored
// midpoint of its bounds.
func DefaultSliderPosition(field model.FieldDescriptor) float64 {
	if field.DefaultValue != nil {
		return *field.DefaultValue
	}
	lo, hi := field.Bounds()
	return math.Floor((lo + hi) / 2)
}

func (c *sliderControl) Bounds() (float64, float64, float64) {
	return c.min, c.max, c.step
}

func (c *sliderControl) Position() float64 {
	return c.position
}

// SetPosition clamps to the bounds and snaps to the step grid anchored at min.
func (c *sliderControl) SetPosition(position float64) {
	if position < c.min {
		position = c.min
	}
	if position > c.max {
		position = c.max
	}
	if c.step > 0 {
		steps := math.Round((position - c.min) / c.step)
		position = c.min + steps*c.step
		if position > c.max {
			position = c.max
		}
	}
	c.position = position
	c.emit(c.Value())
}

func (c *sliderControl) Value() model.AnswerValue {
	return model.StringAnswer(FormatNumber(c.position))
}

// Output is the live projection shown next to the range, framed by the unit.
func (c *sliderControl) Output() string {
	number := FormatNumber(c.position)
	unit := c.field.Unit
	if unit == "" {
		return number
	}
	if c.field.UnitPosition == model.UnitBefore {
		return unit + number
	}
	return number + unit
}

func (c *sliderControl) Apply(value model.AnswerValue) error {
	if value.Kind() != model.AnswerString {
		return fmt.Errorf("%w: slider takes a number", ErrValueShape)
	}
	raw := strings.TrimSpace(value.String())
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(raw, c.field.Unit), c.field.Unit))
	pos, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(pos) || math.IsInf(pos, 0) {
		return fmt.Errorf("%w: %q is not a number", ErrValueShape, value.String())
	}
	c.SetPosition(pos)
	return nil
}

// FormatNumber renders a float without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
