package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/boothcrawl"
)

const nextLinkSelector = `link[rel~="next"], a[rel~="next"], .pagination a.next, a[aria-label="Next"], a[aria-label="Next page"]`

// NextLinks returns the absolute pagination URLs of a listing page that
// point to the same host as pageURL, in document order and without
// duplicates or self-references.
func NextLinks(html, pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, boothcrawl.Errorf(boothcrawl.EINVALID, "invalid page URL: %v", err)
	}
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	self := stripFragment(base)
	seen := map[string]bool{self: true}
	var links []string

	doc.Find(nextLinkSelector).Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Host != base.Host || (resolved.Scheme != "http" && resolved.Scheme != "https") {
			return
		}
		u := stripFragment(resolved)
		if seen[u] {
			return
		}
		seen[u] = true
		links = append(links, u)
	})

	return links, nil
}

func stripFragment(u *url.URL) string {
	c := *u
	c.Fragment = ""
	return c.String()
}
