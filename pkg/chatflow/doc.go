// Package chatflow drives a form descriptor as a conversation: one field at
// a time, validated on advance, with the collected answers posted once after
// the last field.
//
// The Controller is the single owner of the step state. Presenters read it
// through Snapshot and Subscribe; input reaches it through the live Control
// or SetDraft followed by Advance.
package chatflow
