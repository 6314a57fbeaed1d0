// Package sanitize strips markup from user-supplied free text.
package sanitize

import (
	"html"
	"strings"

	"coderr/internal/domain/service"

	"github.com/microcosm-cc/bluemonday"
)

type strictSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer returns a sanitizer that removes every HTML element.
func NewTextSanitizer() service.TextSanitizer {
	return &strictSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize drops tags and trims surrounding whitespace. Entities escaped by the policy are decoded
// again, so plain text such as "R&D" round-trips unchanged.
func (s *strictSanitizer) Sanitize(input string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(input)))
}
