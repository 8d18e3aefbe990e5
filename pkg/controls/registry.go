package controls

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-smartforms/pkg/model"
)

// ErrNoFactory is returned when no factory is registered for a kind.
var ErrNoFactory = errors.New("controls: no factory for field kind")

// Factory materialises a control for a descriptor.
type Factory func(field model.FieldDescriptor, onChange OnChange) (Control, error)

// Registry maps field kinds to factories. NewRegistry installs the built-ins;
// Register overrides a kind, which lets hosts swap a control implementation
// without touching the step controller.
type Registry struct {
	mu        sync.RWMutex
	factories map[model.FieldKind]Factory
}

// NewRegistry returns a registry with a factory for every kind.
func NewRegistry() *Registry {
	reg := &Registry{factories: make(map[model.FieldKind]Factory)}
	reg.registerBuiltins()
	return reg
}

// Register installs factory for kind, replacing any previous entry.
func (r *Registry) Register(kind model.FieldKind, factory Factory) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", model.ErrUnknownFieldKind, string(kind))
	}
	if factory == nil {
		return fmt.Errorf("controls: factory for %q is nil", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = factory
	return nil
}

// Has reports whether kind has a factory.
func (r *Registry) Has(kind model.FieldKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[kind]
	return ok
}

// Kinds returns the registered kinds sorted by name.
func (r *Registry) Kinds() []model.FieldKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.FieldKind, 0, len(r.factories))
	for kind := range r.factories {
		out = append(out, kind)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Build materialises the control for field and wires onChange.
func (r *Registry) Build(field model.FieldDescriptor, onChange OnChange) (Control, error) {
	r.mu.RLock()
	factory, ok := r.factories[field.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoFactory, string(field.Type))
	}
	return factory(field, onChange)
}

func (r *Registry) registerBuiltins() {
	v := &builtinVisitor{reg: r}
	for _, kind := range model.FieldKinds() {
		v.kind = kind
		if err := kind.Visit(v); err != nil {
			panic(err)
		}
	}
}

// builtinVisitor binds each kind to its default factory.
type builtinVisitor struct {
	reg  *Registry
	kind model.FieldKind
}

func (v *builtinVisitor) set(factory Factory) {
	v.reg.factories[v.kind] = factory
}

func (v *builtinVisitor) VisitText()     { v.set(TextFactory) }
func (v *builtinVisitor) VisitNumber()   { v.set(TextFactory) }
func (v *builtinVisitor) VisitTextarea() { v.set(TextFactory) }
func (v *builtinVisitor) VisitSelect()   { v.set(SelectFactory) }
func (v *builtinVisitor) VisitDropdown() { v.set(SelectFactory) }
func (v *builtinVisitor) VisitCheckbox() { v.set(CheckboxFactory) }
func (v *builtinVisitor) VisitRadio()    { v.set(RadioFactory) }
func (v *builtinVisitor) VisitButtons()  { v.set(ButtonsFactory) }
func (v *builtinVisitor) VisitSlider()   { v.set(SliderFactory) }

// TextFactory builds free-text controls.
func TextFactory(field model.FieldDescriptor, onChange OnChange) (Control, error) {
	return newTextControl(field, onChange), nil
}

// SelectFactory builds select/dropdown controls.
func SelectFactory(field model.FieldDescriptor, onChange OnChange) (Control, error) {
	return newSelectControl(field, onChange), nil
}

// RadioFactory builds radio groups.
func RadioFactory(field model.FieldDescriptor, onChange OnChange) (Control, error) {
	return &radioControl{choiceState: newChoiceState(field, onChange)}, nil
}

// CheckboxFactory builds checkbox groups.
func CheckboxFactory(field model.FieldDescriptor, onChange OnChange) (Control, error) {
	return &checkboxControl{choiceState: newChoiceState(field, onChange)}, nil
}

// ButtonsFactory builds toggle-button groups.
func ButtonsFactory(field model.FieldDescriptor, onChange OnChange) (Control, error) {
	return &buttonsControl{choiceState: newChoiceState(field, onChange)}, nil
}

// SliderFactory builds range controls.
func SliderFactory(field model.FieldDescriptor, onChange OnChange) (Control, error) {
	return newSliderControl(field, onChange), nil
}
