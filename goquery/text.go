package goquery

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/boothcrawl"
)

func parseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, boothcrawl.Errorf(boothcrawl.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}

// collapse trims s and folds internal whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// textOf returns the collapsed text of the first element matching selector
// within sel. An empty selector yields an empty string.
func textOf(sel *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return collapse(sel.Find(selector).First().Text())
}

// coordinate parses a latitude or longitude value from an attribute or
// JSON-LD field. Strings and numbers are accepted.
func coordinate(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	return &f
}

// attrCoordinate returns the first parseable coordinate among attrs.
func attrCoordinate(sel *goquery.Selection, attrs ...string) *float64 {
	for _, a := range attrs {
		if v, ok := sel.Attr(a); ok {
			if f := coordinate(v); f != nil {
				return f
			}
		}
	}
	return nil
}
