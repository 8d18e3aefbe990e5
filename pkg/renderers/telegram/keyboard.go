package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/telebot.v3"

	"github.com/goliatone/go-smartforms/pkg/chatflow"
	"github.com/goliatone/go-smartforms/pkg/controls"
)

// CallbackUnique routes every keyboard press to the bot's callback handler.
const CallbackUnique = "sf"

// Callback actions carried in button payloads.
const (
	ActionOption   = "opt"
	ActionDone     = "done"
	ActionDecrease = "dec"
	ActionIncrease = "inc"
)

var errMalformedCallback = errors.New("telegram: malformed callback payload")

// callbackData is the decoded payload of a keyboard press. Index pins the
// press to the field it was rendered for so presses on old keyboards can be
// ignored.
type callbackData struct {
	Index  int
	Action string
	Option int
}

func (d callbackData) encode() []string {
	out := []string{strconv.Itoa(d.Index), d.Action}
	if d.Action == ActionOption {
		out = append(out, strconv.Itoa(d.Option))
	}
	return out
}

func parseCallback(data string) (callbackData, error) {
	parts := strings.Split(strings.TrimSpace(data), "|")
	if len(parts) < 2 {
		return callbackData{}, fmt.Errorf("%w: %q", errMalformedCallback, data)
	}
	index, err := strconv.Atoi(parts[0])
	if err != nil || index < 0 {
		return callbackData{}, fmt.Errorf("%w: %q", errMalformedCallback, data)
	}
	out := callbackData{Index: index, Action: parts[1]}
	switch out.Action {
	case ActionOption:
		if len(parts) != 3 {
			return callbackData{}, fmt.Errorf("%w: %q", errMalformedCallback, data)
		}
		option, err := strconv.Atoi(parts[2])
		if err != nil {
			return callbackData{}, fmt.Errorf("%w: %q", errMalformedCallback, data)
		}
		out.Option = option
	case ActionDone, ActionDecrease, ActionIncrease:
	default:
		return callbackData{}, fmt.Errorf("%w: unknown action %q", errMalformedCallback, out.Action)
	}
	return out, nil
}

// Labels are the button captions used on keyboards.
type Labels struct {
	Done     string
	Skip     string
	Selected string
	Decrease string
	Increase string
}

// DefaultLabels returns the stock captions.
func DefaultLabels() Labels {
	return Labels{
		Done:     "Done",
		Skip:     "Skip",
		Selected: "✓ ",
		Decrease: "−",
		Increase: "+",
	}
}

// buildKeyboard returns the inline keyboard for the current field, or nil
// when the field is answered by typing and cannot be skipped.
func buildKeyboard(snap chatflow.Snapshot, control controls.Control, labels Labels) *telebot.ReplyMarkup {
	if !snap.InputEnabled() || control == nil {
		return nil
	}
	menu := &telebot.ReplyMarkup{}
	var rows []telebot.Row

	switch c := control.(type) {
	case controls.Choices:
		for i, opt := range c.Options() {
			text := opt.Label
			if text == "" {
				text = opt.Value
			}
			if c.Active(i) {
				text = labels.Selected + text
			}
			data := callbackData{Index: snap.Index, Action: ActionOption, Option: i}
			rows = append(rows, menu.Row(menu.Data(text, CallbackUnique, data.encode()...)))
		}
		rows = append(rows, menu.Row(doneButton(menu, snap, labels.Done)))

	case controls.Slider:
		dec := callbackData{Index: snap.Index, Action: ActionDecrease}
		inc := callbackData{Index: snap.Index, Action: ActionIncrease}
		rows = append(rows,
			menu.Row(
				menu.Data(labels.Decrease, CallbackUnique, dec.encode()...),
				menu.Data(labels.Increase, CallbackUnique, inc.encode()...),
			),
			menu.Row(doneButton(menu, snap, fmt.Sprintf("%s (%s)", labels.Done, c.Output()))),
		)

	default:
		if snap.Field.Required {
			return nil
		}
		rows = append(rows, menu.Row(doneButton(menu, snap, labels.Skip)))
	}

	menu.Inline(rows...)
	return menu
}

func doneButton(menu *telebot.ReplyMarkup, snap chatflow.Snapshot, text string) telebot.Btn {
	data := callbackData{Index: snap.Index, Action: ActionDone}
	return menu.Data(text, CallbackUnique, data.encode()...)
}

// applyPress performs the interaction a keyboard press stands for.
func applyPress(control controls.Control, press callbackData) error {
	switch press.Action {
	case ActionOption:
		switch c := control.(type) {
		case controls.Buttons:
			return c.Click(press.Option)
		case controls.Checkbox:
			return c.Toggle(press.Option)
		case controls.Radio:
			return c.Check(press.Option)
		case controls.Chooser:
			return c.Choose(press.Option)
		}
		return fmt.Errorf("%w: field has no options", errMalformedCallback)

	case ActionDecrease, ActionIncrease:
		slider, ok := control.(controls.Slider)
		if !ok {
			return fmt.Errorf("%w: field is not a slider", errMalformedCallback)
		}
		lo, hi, step := slider.Bounds()
		if nudge := (hi - lo) / 10; nudge > step {
			step = nudge
		}
		if press.Action == ActionDecrease {
			step = -step
		}
		slider.SetPosition(slider.Position() + step)
	}
	return nil
}
