package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/fwojciec/boothcrawl"
	boothhttp "github.com/fwojciec/boothcrawl/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapService_DiscoverURLs(t *testing.T) {
	t.Parallel()

	t.Run("reads sitemaps declared in robots.txt", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt": "User-agent: *\nDisallow: /private/\nSitemap: {{BASE}}/venues.xml\n",
			"/venues.xml": urlset("{{BASE}}/venues/berlin", "{{BASE}}/venues/paris"),
		})

		svc := boothhttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/venues/berlin", srv.URL + "/venues/paris"}, urls)
	})

	t.Run("falls back to /sitemap.xml", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": urlset("{{BASE}}/page1"),
		})

		svc := boothhttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/some/listing", nil)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/page1"}, urls)
	})

	t.Run("resolves nested sitemap indexes once", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": sitemapIndex("{{BASE}}/a.xml", "{{BASE}}/b.xml", "{{BASE}}/a.xml"),
			"/a.xml":       urlset("{{BASE}}/venues/1", "{{BASE}}/venues/2"),
			"/b.xml":       urlset("{{BASE}}/venues/2", "{{BASE}}/venues/3"),
		})

		svc := boothhttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/venues/1", srv.URL + "/venues/2", srv.URL + "/venues/3"}, urls)
	})

	t.Run("applies filter and drops foreign hosts", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/sitemap.xml": urlset("{{BASE}}/venues/1", "{{BASE}}/blog/post", "https://other.example.com/venues/9"),
		})

		filter := &boothcrawl.URLFilter{Include: []*regexp.Regexp{regexp.MustCompile(`/venues/`)}}
		svc := boothhttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, filter)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/venues/1"}, urls)
	})

	t.Run("returns empty slice without a sitemap", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{})

		svc := boothhttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

		require.NoError(t, err)
		assert.NotNil(t, urls)
		assert.Empty(t, urls)
	})

	t.Run("skips malformed sitemaps", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt": "Sitemap: {{BASE}}/broken.xml\nSitemap: {{BASE}}/good.xml\n",
			"/broken.xml": "<urlset><url><loc>",
			"/good.xml":   urlset("{{BASE}}/ok"),
		})

		svc := boothhttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)

		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/ok"}, urls)
	})

	t.Run("returns context error when cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		svc := boothhttp.NewSitemapService(nil)
		_, err := svc.DiscoverURLs(ctx, "https://example.com", nil)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rejects invalid base URL", func(t *testing.T) {
		t.Parallel()

		svc := boothhttp.NewSitemapService(nil)
		_, err := svc.DiscoverURLs(context.Background(), "not a url", nil)
		assert.Equal(t, boothcrawl.EINVALID, boothcrawl.ErrorCode(err))
	})
}

func urlset(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, loc := range locs {
		b.WriteString("<url><loc>" + loc + "</loc></url>")
	}
	b.WriteString("</urlset>")
	return b.String()
}

func sitemapIndex(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, loc := range locs {
		b.WriteString("<sitemap><loc>" + loc + "</loc></sitemap>")
	}
	b.WriteString("</sitemapindex>")
	return b.String()
}

func newTestServer(t *testing.T, content map[string]string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := content[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if r.URL.Path == "/robots.txt" {
			w.Header().Set("Content-Type", "text/plain")
		} else {
			w.Header().Set("Content-Type", "application/xml")
		}
		_, _ = w.Write([]byte(strings.ReplaceAll(body, "{{BASE}}", srv.URL)))
	}))
	t.Cleanup(srv.Close)

	return srv
}
