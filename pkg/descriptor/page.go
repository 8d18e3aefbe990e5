package descriptor

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bytedance/sonic"
)

// DefaultScriptSelector matches the inline element a page embeds its
// descriptor in.
const DefaultScriptSelector = `script[type="application/json"]`

// extractEmbedded returns the first script payload that decodes as an object
// with a fields key. Pages often carry other JSON islands, so those are
// skipped.
func extractEmbedded(page []byte, selector string) ([]byte, error) {
	if selector == "" {
		selector = DefaultScriptSelector
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}

	var found []byte
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return true
		}
		var probe map[string]any
		if err := sonic.UnmarshalString(text, &probe); err != nil {
			return true
		}
		if _, ok := probe["fields"]; !ok {
			return true
		}
		found = []byte(text)
		return false
	})
	if found == nil {
		return nil, ErrNoEmbeddedDescriptor
	}
	return found, nil
}
