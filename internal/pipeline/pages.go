package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/inhuren/agency-scraper/internal/model"
	"github.com/inhuren/agency-scraper/internal/registry"
)

// pagesFor builds the scrape list for an agency: the curated registry
// pages plus the employers/contact shortcuts, or discovery triage when
// the registry has no page list. The result is deduped and capped.
func (p *Pipeline) pagesFor(ctx context.Context, agency registry.Agency) []model.DiscoveredURL {
	pages := agency.CategorizedPages()

	if u := agency.EmployersPageURL(); u != "" {
		pages = append(pages, model.DiscoveredURL{
			URL:      u,
			Source:   "registry",
			Category: model.CategoryContact,
		})
	}
	if u := agency.ContactFormURL(); u != "" {
		pages = append(pages, model.DiscoveredURL{
			URL:      u,
			Source:   "registry",
			Category: model.CategoryContact,
		})
	}

	if len(pages) == 0 {
		pages = p.discoverPages(ctx, agency)
	}

	max := p.cfg.Scrape.MaxPagesPerAgency
	if max <= 0 {
		max = 15
	}

	seen := make(map[string]bool, len(pages))
	out := make([]model.DiscoveredURL, 0, len(pages))
	for _, du := range pages {
		if du.URL == "" || seen[du.URL] {
			continue
		}
		seen[du.URL] = true
		out = append(out, du)
		if len(out) == max {
			break
		}
	}
	return out
}

// discoverPages falls back to sitemap/crawl discovery and returns the
// categorizer's recommended scrape list.
func (p *Pipeline) discoverPages(ctx context.Context, agency registry.Agency) []model.DiscoveredURL {
	result, err := p.Discover(ctx, agency)
	if err != nil {
		zap.L().Warn("pipeline: discovery failed",
			zap.String("agency", agency.Key), zap.Error(err))
		return []model.DiscoveredURL{{
			URL:      agency.WebsiteURL,
			Source:   "registry",
			Category: model.CategoryIdentity,
		}}
	}

	out := make([]model.DiscoveredURL, 0, len(result.Recommended))
	for _, u := range result.Recommended {
		cat, excluded := p.cat.Categorize(u)
		if excluded {
			continue
		}
		out = append(out, model.DiscoveredURL{URL: u, Source: "discovery", Category: cat})
	}
	return out
}
