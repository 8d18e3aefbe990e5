// Package controls is the field registry and control factory of the chat
// flow. A Registry maps every model.FieldKind to a Factory that materialises a
// headless Control for a descriptor. Controls hold the interactive state of
// one question (typed text, slider position, checked options) and report the
// full current value, never a delta, to their OnChange callback after every
// interaction. Presentation back-ends read a View of the control and call the
// interaction methods (SetText, Choose, Check, Toggle, Click, SetPosition).
//
// Controls never validate; required-field checks belong to the step
// controller.
package controls
