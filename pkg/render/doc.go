// Package render defines presenters: strategies that turn a chat flow
// snapshot and its live control into output for one medium. Presenters are
// looked up by name in a Registry so the hosting application picks the
// back-end without the step logic changing.
package render
