// Package template defines the template engine seam used by markup
// presenters. The gotemplate subpackage provides the pongo2-backed engine.
package template
