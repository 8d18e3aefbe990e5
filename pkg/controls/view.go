package controls

import (
	"github.com/goliatone/go-smartforms/pkg/model"
)

// OptionView describes one option for presenters.
type OptionView struct {
	Index  int
	Label  string
	Value  string
	Active bool
}

// View is the presenter-neutral projection of a control.
type View struct {
	Kind        model.FieldKind
	Label       string
	Placeholder string
	Required    bool
	Multiple    bool
	Layout      model.Layout
	Alignment   model.Alignment
	Text        string
	Options     []OptionView
	Min         float64
	Max         float64
	Step        float64
	Position    float64
	Output      string
	Value       model.AnswerValue
}

// Describe projects c into a View.
func Describe(c Control) View {
	if c == nil {
		return View{}
	}
	field := c.Field()
	view := View{
		Kind:        field.Type,
		Label:       field.Label,
		Placeholder: field.Placeholder,
		Required:    field.Required,
		Multiple:    field.Multiple,
		Layout:      field.Layout,
		Alignment:   field.FieldAlignment,
		Value:       c.Value(),
	}
	if view.Layout == "" {
		view.Layout = model.LayoutVertical
	}
	if view.Alignment == "" {
		view.Alignment = model.AlignLeft
	}

	if text, ok := c.(TextInput); ok {
		view.Text = text.Text()
	}
	if choices, ok := c.(Choices); ok {
		for i, opt := range choices.Options() {
			view.Options = append(view.Options, OptionView{
				Index:  i,
				Label:  opt.Label,
				Value:  opt.Value,
				Active: choices.Active(i),
			})
		}
	}
	if slider, ok := c.(Slider); ok {
		view.Min, view.Max, view.Step = slider.Bounds()
		view.Position = slider.Position()
		view.Output = slider.Output()
	}
	return view
}
