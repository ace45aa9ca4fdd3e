// Package pipeline runs the per-agency scrape: enumerate pages, fetch,
// extract, merge into one profile, finalize, persist. Page-level
// failures are contained; an agency run only fails when no page at all
// could be processed.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inhuren/agency-scraper/internal/accumulate"
	"github.com/inhuren/agency-scraper/internal/categorize"
	"github.com/inhuren/agency-scraper/internal/config"
	"github.com/inhuren/agency-scraper/internal/discovery"
	"github.com/inhuren/agency-scraper/internal/extract"
	"github.com/inhuren/agency-scraper/internal/fetch"
	"github.com/inhuren/agency-scraper/internal/model"
	"github.com/inhuren/agency-scraper/internal/registry"
	"github.com/inhuren/agency-scraper/internal/store"
	"github.com/inhuren/agency-scraper/pkg/anthropic"
	"github.com/inhuren/agency-scraper/pkg/render"
)

// PageFetcher is the subset of the fetcher the pipeline needs.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*model.Page, error)
	FetchRendered(ctx context.Context, rawURL string) (*model.Page, error)
}

// Discoverer runs sitemap/crawl URL discovery for one site.
type Discoverer interface {
	Discover(ctx context.Context, agencyName, baseURL string) (*model.DiscoveryResult, error)
}

// GapFiller is the AI extraction tier: given a page and the fields still
// missing from the profile, it proposes findings for those fields only.
type GapFiller interface {
	Extract(ctx context.Context, agency string, page *model.Page, missing []string) ([]model.Finding, error)
}

// Pipeline orchestrates scrape runs across the agency registry.
type Pipeline struct {
	cfg        *config.Config
	registry   *registry.Registry
	fetcher    PageFetcher
	discoverer Discoverer
	cat        *categorize.Categorizer
	ai         GapFiller
	store      store.Store
}

// New wires a Pipeline from config: fetcher (with the render service
// when configured), discoverer, categorizer, optional AI tier, store.
func New(cfg *config.Config, reg *registry.Registry, st store.Store) *Pipeline {
	var renderer fetch.Renderer
	if cfg.Render.BaseURL != "" {
		renderer = render.NewClient(cfg.Render.BaseURL, cfg.Render.Token,
			render.WithTimeout(time.Duration(cfg.Render.TimeoutSecs)*time.Second),
			render.WithWait(time.Duration(cfg.Render.WaitMs)*time.Millisecond),
		)
	}
	fetcher := fetch.New(cfg.Fetch, renderer)

	var ai GapFiller
	if cfg.Anthropic.Enabled && cfg.Anthropic.Key != "" {
		ai = extract.NewAI(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic)
	}

	return &Pipeline{
		cfg:        cfg,
		registry:   reg,
		fetcher:    fetcher,
		discoverer: discovery.New(fetcher, cfg.Discovery, cfg.Fetch.UserAgent),
		cat:        categorize.New(nil),
		ai:         ai,
		store:      st,
	}
}

// Result summarizes one finished agency run.
type Result struct {
	RunID        string
	AgencyKey    string
	Profile      *model.AgencyProfile
	PagesVisited int
	FieldsFound  int
	OutputPath   string
}

// RunAgency scrapes one agency end to end and persists the profile.
func (p *Pipeline) RunAgency(ctx context.Context, agency registry.Agency) (*Result, error) {
	log := zap.L().With(zap.String("agency", agency.Key))
	log.Info("pipeline: starting run")

	run, err := p.store.CreateRun(ctx, agency.Key)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	setStatus := func(status model.RunStatus) {
		if serr := p.store.UpdateRunStatus(ctx, run.ID, status); serr != nil {
			log.Warn("pipeline: update run status", zap.Error(serr))
		}
	}

	profile := model.NewProfile(uuid.New().String(), agency.Name, agency.WebsiteURL)
	profile.BrandGroup = agency.BrandGroup
	acc := accumulate.New(profile)
	acc.ApplyAll(seedFindings(agency))

	setStatus(model.RunStatusDiscovering)
	pages := p.pagesFor(ctx, agency)
	if len(pages) == 0 {
		reason := "no pages to scrape"
		if ferr := p.store.FailRun(ctx, run.ID, reason); ferr != nil {
			log.Warn("pipeline: fail run", zap.Error(ferr))
		}
		return nil, eris.Errorf("pipeline: %s: %s", agency.Key, reason)
	}

	setStatus(model.RunStatusScraping)
	extractors := extract.Deterministic(agency.Name, agency.WebsiteURL)
	visited := 0
	for _, target := range pages {
		if ctx.Err() != nil {
			break
		}
		if p.scrapePage(ctx, agency, target, extractors, acc) {
			visited++
		}
	}

	if visited == 0 {
		reason := "every page fetch failed"
		if ferr := p.store.FailRun(ctx, run.ID, reason); ferr != nil {
			log.Warn("pipeline: fail run", zap.Error(ferr))
		}
		return nil, eris.Errorf("pipeline: %s: %s", agency.Key, reason)
	}

	setStatus(model.RunStatusFinalizing)
	accumulate.Finalize(profile, run.ID)

	outputPath, err := WriteProfile(p.cfg.Output, agency.Key, profile)
	if err != nil {
		log.Warn("pipeline: write profile file", zap.Error(err))
	}
	if err := p.store.SaveProfile(ctx, agency.Key, profile); err != nil {
		return nil, eris.Wrap(err, "pipeline: save profile")
	}
	if err := p.store.CompleteRun(ctx, run.ID, visited, acc.Accepted()); err != nil {
		return nil, eris.Wrap(err, "pipeline: complete run")
	}

	log.Info("pipeline: run complete",
		zap.Int("pages_visited", visited),
		zap.Int("fields_found", acc.Accepted()),
	)
	return &Result{
		RunID:        run.ID,
		AgencyKey:    agency.Key,
		Profile:      profile,
		PagesVisited: visited,
		FieldsFound:  acc.Accepted(),
		OutputPath:   outputPath,
	}, nil
}

// scrapePage fetches one page, runs the extractor tiers, and merges the
// findings. Returns false when the page could not be fetched at all.
func (p *Pipeline) scrapePage(ctx context.Context, agency registry.Agency, target model.DiscoveredURL, extractors []extract.Extractor, acc *accumulate.Accumulator) bool {
	log := zap.L().With(zap.String("agency", agency.Key), zap.String("url", target.URL))

	page, err := p.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		log.Warn("pipeline: fetch failed, skipping page", zap.Error(err))
		return false
	}
	page.Category = target.Category

	// Every successfully fetched page is evidence, whether or not it
	// yields findings.
	acc.Profile().AddEvidence(page.URL)

	findings := runExtractors(extractors, page)
	if len(findings) == 0 && p.cfg.Scrape.RenderFallback {
		rendered, rerr := p.fetcher.FetchRendered(ctx, target.URL)
		if rerr != nil {
			log.Debug("pipeline: rendered fallback unavailable", zap.Error(rerr))
		} else {
			rendered.Category = target.Category
			page = rendered
			findings = runExtractors(extractors, page)
			log.Info("pipeline: rendered fallback used", zap.Int("findings", len(findings)))
		}
	}
	acc.ApplyAll(findings)

	if p.ai != nil && agency.AIEligible {
		missing := missingFields(acc.Profile())
		if len(missing) > 0 {
			aiFindings, aerr := p.ai.Extract(ctx, agency.Name, page, missing)
			if aerr != nil {
				log.Warn("pipeline: ai tier failed, continuing", zap.Error(aerr))
			} else {
				acc.ApplyAll(aiFindings)
			}
		}
	}
	return true
}

func runExtractors(extractors []extract.Extractor, page *model.Page) []model.Finding {
	var findings []model.Finding
	for _, ex := range extractors {
		findings = append(findings, ex.Extract(page)...)
	}
	return findings
}

// RunAll scrapes every registry agency with a bounded worker pool. Each
// agency gets its own deadline so one slow site cannot stall the batch.
// Per-agency failures are collected, not fatal.
func (p *Pipeline) RunAll(ctx context.Context) ([]*Result, error) {
	concurrency := p.cfg.Scrape.MaxConcurrentAgencies
	if concurrency <= 0 {
		concurrency = 4
	}
	timeout := time.Duration(p.cfg.Scrape.AgencyTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Minute
	}

	agencies := p.registry.All()
	results := make([]*Result, len(agencies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, agency := range agencies {
		g.Go(func() error {
			actx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			res, err := p.RunAgency(actx, agency)
			if err != nil {
				zap.L().Error("pipeline: agency run failed",
					zap.String("agency", agency.Key), zap.Error(err))
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: run all")
	}

	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, eris.New("pipeline: every agency run failed")
	}
	return out, nil
}

// Discover runs URL discovery plus categorizer triage for one agency and
// returns the report without scraping anything.
func (p *Pipeline) Discover(ctx context.Context, agency registry.Agency) (*model.DiscoveryResult, error) {
	result, err := p.discoverer.Discover(ctx, agency.Name, agency.WebsiteURL)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: discover %s", agency.Key)
	}
	p.cat.Apply(result, p.cfg.Discovery.MaxRecommended)
	return result, nil
}
