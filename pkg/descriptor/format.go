package descriptor

import (
	"bytes"
	"path"
	"strings"
)

// Format is the encoding of a descriptor document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
)

// DetectFormat picks a format from the location's extension, falling back to
// sniffing the payload.
func DetectFormat(location string, data []byte) Format {
	clean := location
	if idx := strings.IndexAny(clean, "?#"); idx >= 0 {
		clean = clean[:idx]
	}
	switch strings.ToLower(path.Ext(clean)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".html", ".htm", ".php":
		return FormatHTML
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return FormatJSON
	}
	switch trimmed[0] {
	case '{', '[':
		return FormatJSON
	case '<':
		return FormatHTML
	default:
		return FormatYAML
	}
}
