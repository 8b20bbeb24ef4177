package goquery

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/boothcrawl"
)

var _ boothcrawl.CandidateExtractor = (*SchemaOrgExtractor)(nil)

// venueTypes are the schema.org types that describe a physical venue.
var venueTypes = map[string]bool{
	"Place":                 true,
	"LocalBusiness":         true,
	"EntertainmentBusiness": true,
	"AmusementPark":         true,
	"FoodEstablishment":     true,
	"BarOrPub":              true,
	"Restaurant":            true,
	"CafeOrCoffeeShop":      true,
	"NightClub":             true,
	"Store":                 true,
	"ShoppingCenter":        true,
	"TouristAttraction":     true,
	"Museum":                true,
	"Hotel":                 true,
	"LodgingBusiness":       true,
}

// SchemaOrgExtractor reads venues from schema.org JSON-LD blocks and
// microdata.
type SchemaOrgExtractor struct{}

// NewSchemaOrgExtractor creates a new SchemaOrgExtractor.
func NewSchemaOrgExtractor() *SchemaOrgExtractor {
	return &SchemaOrgExtractor{}
}

// Name returns the extractor's identifier.
func (e *SchemaOrgExtractor) Name() string {
	return string(boothcrawl.ExtractorSchemaOrg)
}

// Extract returns one candidate per venue entity on the page. JSON-LD
// entities come first, followed by microdata items in document order.
func (e *SchemaOrgExtractor) Extract(page *boothcrawl.Page) ([]*boothcrawl.Candidate, error) {
	doc, err := parseDocument(page.HTML)
	if err != nil {
		return nil, err
	}

	var candidates []*boothcrawl.Candidate

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			// Broken blocks are common in the wild; skip them.
			return
		}
		walkJSONLD(data, func(obj map[string]any) {
			if c := jsonLDCandidate(obj); c != nil {
				candidates = append(candidates, c)
			}
		})
	})

	doc.Find("[itemscope][itemtype]").Each(func(_ int, s *goquery.Selection) {
		if !venueTypes[schemaType(s.AttrOr("itemtype", ""))] {
			return
		}
		// Nested venues are reported by their own item.
		if s.ParentsFiltered("[itemscope][itemtype]").FilterFunction(func(_ int, p *goquery.Selection) bool {
			return venueTypes[schemaType(p.AttrOr("itemtype", ""))]
		}).Length() > 0 {
			return
		}
		if c := microdataCandidate(s); c != nil {
			candidates = append(candidates, c)
		}
	})

	return candidates, nil
}

// walkJSONLD calls fn for every object in a decoded JSON-LD value,
// descending into arrays, @graph and itemListElement wrappers.
func walkJSONLD(v any, fn func(map[string]any)) {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			walkJSONLD(item, fn)
		}
	case map[string]any:
		fn(t)
		for _, key := range []string{"@graph", "itemListElement", "item", "location", "containsPlace"} {
			if child, ok := t[key]; ok {
				walkJSONLD(child, fn)
			}
		}
	}
}

func jsonLDCandidate(obj map[string]any) *boothcrawl.Candidate {
	if !hasVenueType(obj["@type"]) {
		return nil
	}
	name := collapse(stringValue(obj["name"]))
	if name == "" {
		return nil
	}

	c := &boothcrawl.Candidate{Name: name, Confidence: 1}

	switch addr := obj["address"].(type) {
	case string:
		c.Address = collapse(addr)
	case map[string]any:
		c.Address = collapse(stringValue(addr["streetAddress"]))
		c.City = collapse(stringValue(addr["addressLocality"]))
		c.Region = collapse(stringValue(addr["addressRegion"]))
		c.Country = collapse(stringValue(addr["addressCountry"]))
	}

	if geo, ok := obj["geo"].(map[string]any); ok {
		c.Latitude = coordinate(geo["latitude"])
		c.Longitude = coordinate(geo["longitude"])
	}

	c.Metadata = metadata(map[string]string{
		"telephone":    stringValue(obj["telephone"]),
		"url":          stringValue(obj["url"]),
		"openingHours": stringValue(obj["openingHours"]),
		"description":  stringValue(obj["description"]),
	})
	return c
}

func microdataCandidate(s *goquery.Selection) *boothcrawl.Candidate {
	name := collapse(itemprop(s, "name"))
	if name == "" {
		return nil
	}

	c := &boothcrawl.Candidate{Name: name, Confidence: 1}

	addr := s.Find(`[itemprop="address"]`).First()
	if addr.Length() > 0 {
		if street := itemprop(addr, "streetAddress"); street != "" {
			c.Address = collapse(street)
			c.City = collapse(itemprop(addr, "addressLocality"))
			c.Region = collapse(itemprop(addr, "addressRegion"))
			c.Country = collapse(itemprop(addr, "addressCountry"))
		} else {
			c.Address = collapse(addr.Text())
		}
	}

	geo := s.Find(`[itemprop="geo"]`).First()
	if geo.Length() > 0 {
		c.Latitude = coordinate(itemprop(geo, "latitude"))
		c.Longitude = coordinate(itemprop(geo, "longitude"))
	}

	c.Metadata = metadata(map[string]string{
		"telephone":    itemprop(s, "telephone"),
		"url":          itemprop(s, "url"),
		"openingHours": itemprop(s, "openingHours"),
	})
	return c
}

// itemprop returns the value of the first descendant with the property,
// preferring content and href attributes over text.
func itemprop(s *goquery.Selection, prop string) string {
	el := s.Find(`[itemprop="` + prop + `"]`).First()
	if el.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"content", "href"} {
		if v, ok := el.Attr(attr); ok {
			return strings.TrimSpace(v)
		}
	}
	return strings.TrimSpace(el.Text())
}

// schemaType returns the final path segment of a schema.org type URL.
func schemaType(itemtype string) string {
	itemtype = strings.TrimRight(strings.TrimSpace(itemtype), "/")
	return itemtype[strings.LastIndex(itemtype, "/")+1:]
}

func hasVenueType(v any) bool {
	switch t := v.(type) {
	case string:
		return venueTypes[schemaType(t)]
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && venueTypes[schemaType(s)] {
				return true
			}
		}
	}
	return false
}

// stringValue flattens a JSON-LD value to text. Objects contribute their
// name, arrays their first element.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		if len(t) > 0 {
			return stringValue(t[0])
		}
	case map[string]any:
		return stringValue(t["name"])
	}
	return ""
}

func metadata(fields map[string]string) map[string]string {
	var m map[string]string
	for k, v := range fields {
		if v = collapse(v); v == "" {
			continue
		}
		if m == nil {
			m = make(map[string]string)
		}
		m[k] = v
	}
	return m
}
