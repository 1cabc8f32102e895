// Package htmlsanitize cleans rendered HTML before it is returned to a browser.
// It uses bluemonday to strip potentially dangerous HTML while preserving
// the markup produced for requirements previews.
package htmlsanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()

		// Requirement tables
		policy.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td")
		policy.AllowAttrs("colspan", "rowspan").OnElements("th", "td")

		// Layout classes used by the preview stylesheet
		policy.AllowAttrs("class").OnElements("div", "span", "p", "ul", "ol", "li", "table", "tr", "th", "td", "h1", "h2", "h3", "h4")

		policy.AllowElements("u", "s", "sub", "sup", "mark")
	})
	return policy
}

// Sanitize cleans HTML input, removing scripts, event handlers, and other
// dangerous elements and attributes.
func Sanitize(html string) string {
	if html == "" {
		return ""
	}
	return getPolicy().Sanitize(html)
}
