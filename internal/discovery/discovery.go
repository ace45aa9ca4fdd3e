// Package discovery finds candidate content URLs for an agency site.
// It prefers sitemaps (robots.txt Sitemap lines plus the conventional
// paths), walks sitemap indexes, and falls back to a bounded crawl when
// no sitemap yields URLs.
package discovery

import (
	"context"
	"encoding/xml"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/inhuren/agency-scraper/internal/config"
	"github.com/inhuren/agency-scraper/internal/model"
)

// conventionalSitemapPaths are tried even when robots.txt lists nothing.
var conventionalSitemapPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap-index.xml",
	"/wp-sitemap.xml",
}

// RawFetcher is the subset of the fetcher discovery needs.
type RawFetcher interface {
	FetchRaw(ctx context.Context, rawURL string) ([]byte, error)
}

// Discoverer runs URL discovery for one site at a time.
type Discoverer struct {
	fetcher   RawFetcher
	cfg       config.DiscoveryConfig
	userAgent string
}

// New creates a Discoverer. userAgent is used by the crawl fallback.
func New(fetcher RawFetcher, cfg config.DiscoveryConfig, userAgent string) *Discoverer {
	if cfg.MaxURLs <= 0 {
		cfg.MaxURLs = 500
	}
	if cfg.MaxSitemaps <= 0 {
		cfg.MaxSitemaps = 20
	}
	if cfg.CrawlDepth <= 0 {
		cfg.CrawlDepth = 2
	}
	if cfg.CrawlPerLevel <= 0 {
		cfg.CrawlPerLevel = 30
	}
	return &Discoverer{fetcher: fetcher, cfg: cfg, userAgent: userAgent}
}

// Discover returns the de-duplicated candidate URLs for baseURL along
// with how they were found. Failures on individual sitemaps are
// recorded in the result, not returned as errors; discovery only fails
// outright on a malformed base URL or cancelled context.
func (d *Discoverer) Discover(ctx context.Context, agencyName, baseURL string) (*model.DiscoveryResult, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	result := &model.DiscoveryResult{
		Agency:  agencyName,
		BaseURL: baseURL,
	}

	seen := make(map[string]bool)
	addURL := func(raw, source string) {
		clean, ok := cleanURL(base, raw)
		if !ok || seen[clean] {
			return
		}
		seen[clean] = true
		result.URLs = append(result.URLs, model.DiscoveredURL{URL: clean, Source: source})
	}

	// Seed the sitemap queue from robots.txt, then conventional paths.
	queue := d.robotsSitemaps(ctx, base, result)
	for _, p := range conventionalSitemapPaths {
		queue = append(queue, base.Scheme+"://"+base.Host+p)
	}

	processed := make(map[string]bool)
	for len(queue) > 0 && len(processed) < d.cfg.MaxSitemaps {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		smURL := queue[0]
		queue = queue[1:]
		if processed[smURL] {
			continue
		}
		processed[smURL] = true

		pages, nested, err := d.fetchSitemap(ctx, smURL)
		if err != nil {
			result.Errors = append(result.Errors, smURL+": "+err.Error())
			continue
		}
		if len(pages) > 0 {
			result.SitemapFound = true
			if result.SitemapURL == "" {
				result.SitemapURL = smURL
			}
			for _, p := range pages {
				if len(result.URLs) >= d.cfg.MaxURLs {
					break
				}
				addURL(p, "sitemap")
			}
		}
		queue = append(queue, nested...)
	}

	// Crawl fallback when no sitemap produced anything.
	if !result.SitemapFound {
		zap.L().Info("no sitemap found, crawling site",
			zap.String("agency", agencyName),
			zap.String("base_url", baseURL),
		)
		crawled, err := d.crawl(base)
		if err != nil {
			result.Errors = append(result.Errors, "crawl: "+err.Error())
		}
		for _, c := range crawled {
			if len(result.URLs) >= d.cfg.MaxURLs {
				break
			}
			addURL(c, "crawl")
		}
	}

	result.TotalURLs = len(result.URLs)
	zap.L().Info("discovery complete",
		zap.String("agency", agencyName),
		zap.Bool("sitemap_found", result.SitemapFound),
		zap.Int("total_urls", result.TotalURLs),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// robotsSitemaps extracts Sitemap: lines from the site's robots.txt.
func (d *Discoverer) robotsSitemaps(ctx context.Context, base *url.URL, result *model.DiscoveryResult) []string {
	robotsURL := base.Scheme + "://" + base.Host + "/robots.txt"
	body, err := d.fetcher.FetchRaw(ctx, robotsURL)
	if err != nil {
		result.Errors = append(result.Errors, "robots.txt: "+err.Error())
		return nil
	}

	var sitemaps []string
	for _, line := range strings.Split(string(body), "\n") {
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			sm := strings.TrimSpace(line[len("sitemap:"):])
			if sm != "" {
				sitemaps = append(sitemaps, sm)
			}
		}
	}
	return sitemaps
}

// sitemapDoc covers both urlset and sitemapindex documents. Element
// matching ignores the XML namespace, so namespace-less sitemaps parse
// the same way.
type sitemapDoc struct {
	Sitemaps []sitemapLoc `xml:"sitemap"`
	URLs     []sitemapLoc `xml:"url"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// fetchSitemap returns the page URLs and nested sitemap URLs of one
// sitemap document.
func (d *Discoverer) fetchSitemap(ctx context.Context, smURL string) (pages, nested []string, err error) {
	body, err := d.fetcher.FetchRaw(ctx, smURL)
	if err != nil {
		return nil, nil, err
	}

	var doc sitemapDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, nil, err
	}

	for _, u := range doc.URLs {
		if loc := strings.TrimSpace(u.Loc); loc != "" {
			pages = append(pages, loc)
		}
	}
	for _, s := range doc.Sitemaps {
		if loc := strings.TrimSpace(s.Loc); loc != "" {
			nested = append(nested, loc)
		}
	}
	return pages, nested, nil
}

// cleanURL resolves raw against base, keeps only same-host http(s)
// URLs, and strips query strings and fragments.
func cleanURL(base *url.URL, raw string) (string, bool) {
	u, err := base.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Hostname() != base.Hostname() {
		return "", false
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), true
}
