package http

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/boothcrawl"
)

// DefaultMaxSitemaps bounds how many sitemap documents one discovery reads,
// counting nested sitemap indexes.
const DefaultMaxSitemaps = 50

// Ensure SitemapService implements boothcrawl.SitemapService.
var _ boothcrawl.SitemapService = (*SitemapService)(nil)

// SitemapService discovers listing pages from website sitemaps via HTTP.
type SitemapService struct {
	client      *http.Client
	maxSitemaps int
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client, maxSitemaps: DefaultMaxSitemaps}
}

// DiscoverURLs returns the page URLs listed in the sitemaps of baseURL's
// host, in document order and without duplicates. Only URLs on the same
// host that pass filter are kept. A site without a sitemap yields an empty
// slice.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *boothcrawl.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, boothcrawl.Errorf(boothcrawl.EINVALID, "invalid base URL %q", baseURL)
	}
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}

	queue := s.robotsSitemaps(ctx, root)
	if len(queue) == 0 {
		queue = []string{root.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()}
	}

	urls := []string{}
	visited := make(map[string]bool)
	kept := make(map[string]bool)

	for len(queue) > 0 && len(visited) < s.maxSitemaps {
		next := queue[0]
		queue = queue[1:]
		if visited[next] {
			continue
		}
		visited[next] = true

		doc, err := s.readSitemap(ctx, next)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Missing or malformed sitemaps are skipped.
			continue
		}

		switch doc.Tag {
		case "sitemapindex":
			queue = append(queue, locs(doc, "sitemap")...)
		case "urlset":
			for _, loc := range locs(doc, "url") {
				if kept[loc] || !sameHost(loc, base.Host) || !filter.Match(loc) {
					continue
				}
				kept[loc] = true
				urls = append(urls, loc)
			}
		}
	}

	return urls, nil
}

// robotsSitemaps returns the Sitemap: directives of the host's robots.txt.
func (s *SitemapService) robotsSitemaps(ctx context.Context, root *url.URL) []string {
	resp, err := s.get(ctx, root.ResolveReference(&url.URL{Path: "/robots.txt"}).String())
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "sitemap") {
			continue
		}
		if value = strings.TrimSpace(value); value != "" {
			sitemaps = append(sitemaps, value)
		}
	}
	return sitemaps
}

// readSitemap fetches and parses one sitemap document, returning its root.
func (s *SitemapService) readSitemap(ctx context.Context, sitemapURL string) (*etree.Element, error) {
	resp, err := s.get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("parsing sitemap %s: %w", sitemapURL, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap %s", sitemapURL)
	}
	return root, nil
}

func (s *SitemapService) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", DefaultUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, StatusError(target, resp.StatusCode)
	}
	return resp, nil
}

// locs returns the trimmed <loc> values of root's children named tag.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if v := strings.TrimSpace(loc.Text()); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func sameHost(rawURL, host string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && strings.EqualFold(u.Host, host)
}
