// Package descriptor loads form descriptors from files, fs.FS trees, URLs,
// raw bytes and HTML pages that embed the descriptor in an inline JSON
// script element. Descriptors may also be derived from an OpenAPI operation.
package descriptor
