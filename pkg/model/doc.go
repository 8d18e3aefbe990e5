// Package model defines the typed descriptors the chat flow consumes and the
// answer values it produces. A FormDescriptor is an ordered list of
// FieldDescriptor values, each tagged with one of the nine FieldKind values
// (text, number, textarea, select, dropdown, checkbox, radio, buttons, slider).
// Kinds are a closed set: ParseFieldKind rejects unknown tags and
// FieldKind.Visit dispatches exhaustively through FieldKindVisitor, so adding a
// kind is a compile-time checked change for every visitor in the module.
//
// AnswerValue is a tagged union over null, a single string, and a list of
// strings. Committed answers live in a ResponseMap, which preserves
// visitation order and refuses to overwrite a key once written.
package model
