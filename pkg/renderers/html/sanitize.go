package html

import (
	stdhtml "html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy

	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy
)

// plainText strips every tag from descriptor-supplied text. The result is
// unescaped again because the template engine escapes on output.
func plainText(raw string) string {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(stdhtml.UnescapeString(textPolicy.Sanitize(raw)))
}

// serverMessage keeps the limited markup a submission endpoint may return
// (links, emphasis, paragraphs). Its output is emitted unescaped.
func serverMessage(raw string) string {
	messagePolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		messagePolicy = policy
	})
	return strings.TrimSpace(messagePolicy.Sanitize(raw))
}
