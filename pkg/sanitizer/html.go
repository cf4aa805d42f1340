// Package sanitizer cleans untrusted HTML with bluemonday policies.
package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy   *bluemonday.Policy
	safePolicy     *bluemonday.Policy
	markdownPolicy *bluemonday.Policy
	initOnce       sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		safePolicy = bluemonday.NewPolicy()
		safePolicy.AllowStandardURLs()
		safePolicy.AllowElements(
			"p", "br",
			"strong", "b", "em", "i",
			"ul", "ol", "li",
			"code", "pre", "blockquote",
		)
		safePolicy.AllowAttrs("href").OnElements("a")
		safePolicy.RequireNoFollowOnLinks(true)

		// Output of the markdown renderer: headings, tables and images on top of UGC.
		markdownPolicy = bluemonday.UGCPolicy()
		markdownPolicy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code")
	})
}

// StripHTML removes every tag and returns plain text.
func StripHTML(s string) string {
	initPolicies()
	return strictPolicy.Sanitize(s)
}

// SanitizeHTML keeps basic formatting (paragraphs, emphasis, lists, code, links).
func SanitizeHTML(s string) string {
	initPolicies()
	return safePolicy.Sanitize(s)
}

// SanitizeMarkdownHTML cleans HTML produced from user-supplied markdown.
func SanitizeMarkdownHTML(s string) string {
	initPolicies()
	return markdownPolicy.Sanitize(s)
}
