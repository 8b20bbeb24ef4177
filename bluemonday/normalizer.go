// Package bluemonday provides a boothcrawl.ContentNormalizer that reduces
// fetched HTML to its user-visible content before hashing, so that pages
// differing only in scripts, styles, tracking attributes or whitespace hash
// identically.
package bluemonday

import (
	"strings"

	"github.com/fwojciec/boothcrawl"
	"github.com/microcosm-cc/bluemonday"
)

// Ensure Normalizer implements boothcrawl.ContentNormalizer.
var _ boothcrawl.ContentNormalizer = (*Normalizer)(nil)

// Normalizer sanitizes HTML with a user-generated-content policy and
// collapses whitespace.
type Normalizer struct {
	policy *bluemonday.Policy
}

// NewNormalizer creates a new Normalizer.
func NewNormalizer() *Normalizer {
	p := bluemonday.UGCPolicy()
	// Session-specific link targets would otherwise change the hash.
	p.RequireNoFollowOnLinks(false)
	return &Normalizer{policy: p}
}

// Normalize returns the sanitized, whitespace-collapsed form of html.
func (n *Normalizer) Normalize(html string) string {
	return strings.Join(strings.Fields(n.policy.Sanitize(html)), " ")
}
