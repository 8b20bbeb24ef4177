package goquery

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/boothcrawl"
	"golang.org/x/net/html"
)

var _ boothcrawl.PatternExtractor = (*PatternExtractor)(nil)

// minDeriveExamples is the number of located examples needed before a
// repeating structure can be told apart from a one-off element.
const minDeriveExamples = 2

// simpleClass matches class names usable verbatim in a CSS selector.
var simpleClass = regexp.MustCompile(`^-?[A-Za-z_][A-Za-z0-9_-]*$`)

// PatternExtractor replays learned CSS selector patterns and derives new
// ones from example candidates.
type PatternExtractor struct{}

// NewPatternExtractor creates a new PatternExtractor.
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{}
}

// Apply returns one candidate per container element that has a name.
func (e *PatternExtractor) Apply(page *boothcrawl.Page, p *boothcrawl.Pattern) ([]*boothcrawl.Candidate, error) {
	if p == nil || p.Container == "" || p.NameSelector == "" {
		return nil, boothcrawl.Errorf(boothcrawl.EINVALID, "pattern requires container and name selectors")
	}
	doc, err := parseDocument(page.HTML)
	if err != nil {
		return nil, err
	}
	return apply(doc, p), nil
}

func apply(doc *goquery.Document, p *boothcrawl.Pattern) []*boothcrawl.Candidate {
	var candidates []*boothcrawl.Candidate
	doc.Find(p.Container).Each(func(_ int, s *goquery.Selection) {
		name := textOf(s, p.NameSelector)
		if name == "" {
			return
		}
		candidates = append(candidates, &boothcrawl.Candidate{
			Name:       name,
			Address:    textOf(s, p.AddressSelector),
			City:       textOf(s, p.CitySelector),
			Confidence: p.Confidence,
		})
	})
	return candidates
}

// located pairs an example candidate with the elements holding its fields.
type located struct {
	example   *boothcrawl.Candidate
	name      *html.Node
	container *html.Node
}

// Derive finds the repeating element that holds each example, the
// relative selectors of its fields, and keeps the result only when
// replaying it reproduces every located example.
func (e *PatternExtractor) Derive(page *boothcrawl.Page, examples []*boothcrawl.Candidate) (*boothcrawl.Pattern, error) {
	doc, err := parseDocument(page.HTML)
	if err != nil {
		return nil, err
	}

	var found []*located
	seen := make(map[*html.Node]bool)
	for _, ex := range examples {
		if ex == nil || collapse(ex.Name) == "" {
			continue
		}
		n := findText(doc, ex.Name)
		if n == nil || seen[n] {
			continue
		}
		seen[n] = true
		found = append(found, &located{example: ex, name: n})
	}
	if len(found) < minDeriveExamples {
		return nil, boothcrawl.Errorf(boothcrawl.ENOTFOUND, "too few examples located on page")
	}

	depth := containerDepth(found)
	if depth == 0 {
		return nil, boothcrawl.Errorf(boothcrawl.ENOTFOUND, "no repeating container found")
	}

	containers := make([]*html.Node, len(found))
	names := make([]*html.Node, len(found))
	for i, l := range found {
		l.container = ancestor(l.name, depth)
		containers[i] = l.container
		names[i] = l.name
	}

	p := &boothcrawl.Pattern{Container: containerSelector(containers)}
	var ok bool
	if p.NameSelector, ok = relativePath(containers, names); !ok {
		return nil, boothcrawl.Errorf(boothcrawl.ENOTFOUND, "name elements differ in structure")
	}
	p.AddressSelector = fieldSelector(found, func(c *boothcrawl.Candidate) string { return c.Address })
	p.CitySelector = fieldSelector(found, func(c *boothcrawl.Candidate) string { return c.City })

	if reproduces(doc, p, found) {
		return p, nil
	}

	// Fall back to names only.
	p.AddressSelector, p.CitySelector = "", ""
	if reproduces(doc, p, found) {
		return p, nil
	}
	return nil, boothcrawl.Errorf(boothcrawl.ENOTFOUND, "derived pattern does not reproduce examples")
}

// reproduces reports whether replaying p yields every located example.
func reproduces(doc *goquery.Document, p *boothcrawl.Pattern, found []*located) bool {
	byName := make(map[string]*boothcrawl.Candidate)
	for _, c := range apply(doc, p) {
		byName[strings.ToLower(c.Name)] = c
	}
	for _, l := range found {
		c, ok := byName[strings.ToLower(collapse(l.example.Name))]
		if !ok {
			return false
		}
		if p.AddressSelector != "" && l.example.Address != "" && !containsFold(c.Address, l.example.Address) {
			return false
		}
		if p.CitySelector != "" && l.example.City != "" && !containsFold(c.City, l.example.City) {
			return false
		}
	}
	return true
}

// findText returns the deepest element of the first element chain whose
// whole text equals text, ignoring case and whitespace.
func findText(doc *goquery.Document, text string) *html.Node {
	target := collapse(text)
	var best *html.Node
	doc.Find("body *").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.EqualFold(collapse(s.Text()), target) {
			return true
		}
		n := s.Nodes[0]
		if best != nil && !isAncestor(best, n) {
			return false
		}
		best = n
		return true
	})
	return best
}

// containerDepth returns how many levels above the name elements the
// per-venue container sits: the highest level at which the ancestors are
// still pairwise distinct and share a tag. Zero means none.
func containerDepth(found []*located) int {
	depth := 0
	for d := 1; ; d++ {
		seen := make(map[*html.Node]bool)
		var tag string
		for i, l := range found {
			a := ancestor(l.name, d)
			if a == nil || a.Type != html.ElementNode || a.Data == "body" || a.Data == "html" {
				return depth
			}
			if seen[a] {
				return depth
			}
			seen[a] = true
			if i == 0 {
				tag = a.Data
			} else if a.Data != tag {
				return depth
			}
		}
		depth = d
	}
}

// containerSelector anchors the container step under its parent's step.
func containerSelector(containers []*html.Node) string {
	step := commonStep(containers)
	parents := make([]*html.Node, 0, len(containers))
	for _, c := range containers {
		if c.Parent == nil || c.Parent.Type != html.ElementNode {
			return step
		}
		parents = append(parents, c.Parent)
	}
	if parent := commonStep(parents); parent != "" {
		return parent + " > " + step
	}
	return step
}

// fieldSelector locates the element holding each example's field inside
// its container and returns the shared relative selector, or "" when the
// field cannot be located consistently.
func fieldSelector(found []*located, field func(*boothcrawl.Candidate) string) string {
	var containers, targets []*html.Node
	for _, l := range found {
		value := collapse(field(l.example))
		if value == "" {
			continue
		}
		n := deepestContaining(l.container, value)
		if n == nil || n == l.container {
			return ""
		}
		containers = append(containers, l.container)
		targets = append(targets, n)
	}
	if len(targets) == 0 {
		return ""
	}
	path, ok := relativePath(containers, targets)
	if !ok {
		return ""
	}
	return path
}

// deepestContaining returns the deepest element under root whose text
// contains value.
func deepestContaining(root *html.Node, value string) *html.Node {
	if !containsFold(nodeText(root), value) {
		return nil
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if n := deepestContaining(c, value); n != nil {
			return n
		}
	}
	return root
}

// relativePath builds a child-combinator selector leading from each
// container to its target. All chains must have the same length and tags.
func relativePath(containers, targets []*html.Node) (string, bool) {
	var chains [][]*html.Node
	for i, t := range targets {
		var chain []*html.Node
		for n := t; n != containers[i]; n = n.Parent {
			if n == nil {
				return "", false
			}
			chain = append([]*html.Node{n}, chain...)
		}
		if len(chain) == 0 {
			return "", false
		}
		if len(chains) > 0 && len(chain) != len(chains[0]) {
			return "", false
		}
		chains = append(chains, chain)
	}

	steps := make([]string, len(chains[0]))
	for level := range steps {
		column := make([]*html.Node, len(chains))
		for i, chain := range chains {
			column[i] = chain[level]
		}
		if steps[level] = commonStep(column); steps[level] == "" {
			return "", false
		}
		steps[level] += nthOfType(column)
	}
	return strings.Join(steps, " > "), true
}

// commonStep returns tag.class selector shared by all nodes, or "" when the
// tags differ.
func commonStep(nodes []*html.Node) string {
	tag := nodes[0].Data
	common := classes(nodes[0])
	for _, n := range nodes[1:] {
		if n.Data != tag {
			return ""
		}
		own := make(map[string]bool)
		for _, c := range classes(n) {
			own[c] = true
		}
		kept := common[:0]
		for _, c := range common {
			if own[c] {
				kept = append(kept, c)
			}
		}
		common = kept
	}
	if len(common) == 0 {
		return tag
	}
	return tag + "." + strings.Join(common, ".")
}

// nthOfType returns an :nth-of-type suffix when every node sits at the same
// position among several same-tag siblings, and "" otherwise.
func nthOfType(nodes []*html.Node) string {
	index, total := position(nodes[0])
	if total < 2 {
		return ""
	}
	for _, n := range nodes[1:] {
		if i, _ := position(n); i != index {
			return ""
		}
	}
	return fmt.Sprintf(":nth-of-type(%d)", index)
}

// position returns n's 1-based index among its same-tag siblings and the
// number of such siblings.
func position(n *html.Node) (index, total int) {
	if n.Parent == nil {
		return 1, 1
	}
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != n.Data {
			continue
		}
		total++
		if c == n {
			index = total
		}
	}
	return index, total
}

func classes(n *html.Node) []string {
	var out []string
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if simpleClass.MatchString(c) {
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}

func ancestor(n *html.Node, depth int) *html.Node {
	for i := 0; i < depth && n != nil; i++ {
		n = n.Parent
	}
	return n
}

func isAncestor(a, n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return collapse(b.String())
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(collapse(s)), strings.ToLower(collapse(sub)))
}
