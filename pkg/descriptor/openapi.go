package descriptor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-smartforms/pkg/model"
)

// Extension keys read from OpenAPI property schemas.
const (
	ExtensionWidget   = "x-smartforms-widget"
	ExtensionHelpText = "x-smartforms-help"
	ExtensionUnit     = "x-smartforms-unit"
)

// ErrOperationNotFound is returned when operationID is absent.
var ErrOperationNotFound = errors.New("descriptor: operation not found")

// FromOpenAPI derives a descriptor from the request body of an OpenAPI 3
// operation. Required properties come first, each group ordered by name.
func FromOpenAPI(ctx context.Context, data []byte, operationID string) (model.FormDescriptor, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return model.FormDescriptor{}, wrap("openapi", fmt.Errorf("load document: %w", err))
	}

	op := findOperation(doc, operationID)
	if op == nil {
		return model.FormDescriptor{}, wrap("openapi", fmt.Errorf("%w: %q", ErrOperationNotFound, operationID))
	}
	schema := requestSchema(op)
	if schema == nil || len(schema.Properties) == 0 {
		return model.FormDescriptor{}, wrap("openapi", fmt.Errorf("operation %q has no request body properties", operationID))
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if required[names[i]] != required[names[j]] {
			return required[names[i]]
		}
		return names[i] < names[j]
	})

	form := model.FormDescriptor{FormID: operationID, Title: op.Summary}
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		field, ok := fieldFromSchema(name, ref.Value)
		if !ok {
			continue
		}
		field.Required = required[name]
		form.Fields = append(form.Fields, field)
	}
	if err := form.Validate(); err != nil {
		return model.FormDescriptor{}, wrap("openapi", err)
	}
	return form, nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range []string{"application/x-www-form-urlencoded", "application/json", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func fieldFromSchema(name string, schema *openapi3.Schema) (model.FieldDescriptor, bool) {
	field := model.FieldDescriptor{
		ID:       name,
		Label:    labelFor(name, schema),
		HelpText: schema.Description,
	}
	if help, ok := schema.Extensions[ExtensionHelpText].(string); ok && help != "" {
		field.HelpText = help
	}
	widget, _ := schema.Extensions[ExtensionWidget].(string)

	switch {
	case schema.Type.Is(openapi3.TypeString):
		switch {
		case len(schema.Enum) > 0:
			field.Type = model.FieldKindDropdown
			field.Options = enumOptions(schema.Enum)
		case schema.Format == "textarea" || widget == "textarea":
			field.Type = model.FieldKindTextarea
		default:
			field.Type = model.FieldKindText
		}
	case schema.Type.Is(openapi3.TypeInteger), schema.Type.Is(openapi3.TypeNumber):
		field.Type = model.FieldKindNumber
		if widget == string(model.FieldKindSlider) {
			field.Type = model.FieldKindSlider
			field.Unit, _ = schema.Extensions[ExtensionUnit].(string)
		}
		field.Min = copyFloat(schema.Min)
		field.Max = copyFloat(schema.Max)
		if schema.MultipleOf != nil {
			field.Step = copyFloat(schema.MultipleOf)
		}
		if v, ok := schema.Default.(float64); ok {
			field.DefaultValue = model.Float(v)
		}
	case schema.Type.Is(openapi3.TypeBoolean):
		field.Type = model.FieldKindRadio
		field.Options = []model.Option{{Label: "Yes", Value: "yes"}, {Label: "No", Value: "no"}}
	case schema.Type.Is(openapi3.TypeArray):
		if schema.Items == nil || schema.Items.Value == nil || len(schema.Items.Value.Enum) == 0 {
			return model.FieldDescriptor{}, false
		}
		field.Type = model.FieldKindCheckbox
		if widget == string(model.FieldKindButtons) {
			field.Type = model.FieldKindButtons
			field.Multiple = true
		}
		field.Options = enumOptions(schema.Items.Value.Enum)
	default:
		return model.FieldDescriptor{}, false
	}

	if widget != "" && widget != string(field.Type) {
		if kind, err := model.ParseFieldKind(widget); err == nil && kind.NeedsOptions() == field.Type.NeedsOptions() && kind != model.FieldKindSlider {
			field.Type = kind
		}
	}
	return field, true
}

func labelFor(name string, schema *openapi3.Schema) string {
	if schema.Title != "" {
		return schema.Title
	}
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func enumOptions(values []any) []model.Option {
	out := make([]model.Option, 0, len(values))
	for _, v := range values {
		s := fmt.Sprint(v)
		out = append(out, model.Option{Label: s, Value: s})
	}
	return out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
