package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inhuren/agency-scraper/internal/categorize"
	"github.com/inhuren/agency-scraper/internal/config"
	"github.com/inhuren/agency-scraper/internal/fetch"
	"github.com/inhuren/agency-scraper/internal/model"
	"github.com/inhuren/agency-scraper/internal/registry"
	"github.com/inhuren/agency-scraper/internal/store"
)

type fakeFetcher struct {
	static        map[string]string
	rendered      map[string]string
	failing       map[string]bool
	renderedCalls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (*model.Page, error) {
	if f.failing[rawURL] {
		return nil, eris.Errorf("connection refused: %s", rawURL)
	}
	html, ok := f.static[rawURL]
	if !ok {
		return nil, eris.Errorf("not found: %s", rawURL)
	}
	return fetch.BuildPage(rawURL, rawURL, 200, model.FetchModeStatic, html)
}

func (f *fakeFetcher) FetchRendered(_ context.Context, rawURL string) (*model.Page, error) {
	f.renderedCalls = append(f.renderedCalls, rawURL)
	html, ok := f.rendered[rawURL]
	if !ok {
		return nil, eris.Errorf("render service unavailable: %s", rawURL)
	}
	return fetch.BuildPage(rawURL, rawURL, 200, model.FetchModeRendered, html)
}

type fakeGapFiller struct {
	findings    []model.Finding
	lastMissing []string
	calls       int
}

func (g *fakeGapFiller) Extract(_ context.Context, _ string, page *model.Page, missing []string) ([]model.Finding, error) {
	g.calls++
	g.lastMissing = missing
	out := make([]model.Finding, len(g.findings))
	for i, f := range g.findings {
		f.SourceURL = page.URL
		out[i] = f
	}
	return out, nil
}

func testStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "pipeline.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Scrape: config.ScrapeConfig{
			MaxConcurrentAgencies: 2,
			MaxPagesPerAgency:     15,
			RenderFallback:        false,
		},
		Output: config.OutputConfig{Dir: t.TempDir(), Pretty: true},
	}
}

func testPipeline(t *testing.T, cfg *config.Config, f PageFetcher, st store.Store) *Pipeline {
	t.Helper()
	return &Pipeline{
		cfg:     cfg,
		fetcher: f,
		cat:     categorize.New(nil),
		store:   st,
	}
}

func testAgency() registry.Agency {
	return registry.Agency{
		Key:        "voorbeeld",
		Name:       "Voorbeeld Uitzendbureau",
		WebsiteURL: "https://www.voorbeeld.nl",
		AIEligible: true,
		Pages: []registry.Page{
			{URL: "https://www.voorbeeld.nl/privacy", Categories: []string{"legal"}},
			{URL: "https://www.voorbeeld.nl/contact", Categories: []string{"contact"}},
		},
		Seeds: registry.Seeds{
			Membership: []string{"ABU"},
			CAOType:    "ABU",
		},
	}
}

const legalHTML = `<html><body>
<p>Voorbeeld Uitzendbureau B.V. is ingeschreven bij de Kamer van Koophandel. KvK-nummer: 12345678.</p>
</body></html>`

const contactHTML = `<html><body>
<p>Mail ons op info@voorbeeld.nl of bel 020 123 45 67.</p>
</body></html>`

func TestRunAgencyHappyPath(t *testing.T) {
	st := testStore(t)
	cfg := testConfig(t)
	f := &fakeFetcher{static: map[string]string{
		"https://www.voorbeeld.nl/privacy": legalHTML,
		"https://www.voorbeeld.nl/contact": contactHTML,
	}}
	p := testPipeline(t, cfg, f, st)

	res, err := p.RunAgency(context.Background(), testAgency())
	require.NoError(t, err)
	assert.Equal(t, 2, res.PagesVisited)
	assert.Equal(t, "12345678", res.Profile.KvKNumber)
	assert.Equal(t, "info@voorbeeld.nl", res.Profile.ContactEmail)
	assert.Equal(t, model.CAOTypeABU, res.Profile.CAOType)
	assert.Contains(t, res.Profile.Membership, "ABU")
	assert.Equal(t, res.RunID, res.Profile.RunID)

	run, err := st.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, 2, run.PagesVisited)

	saved, err := st.GetProfile(context.Background(), "voorbeeld")
	require.NoError(t, err)
	assert.Equal(t, "12345678", saved.KvKNumber)

	data, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kvk_number": "12345678"`)
}

func TestEvidenceRecordsEveryFetchedPage(t *testing.T) {
	st := testStore(t)
	cfg := testConfig(t)
	f := &fakeFetcher{static: map[string]string{
		"https://www.voorbeeld.nl/privacy": `<html><body><p>Niets bijzonders hier.</p></body></html>`,
		"https://www.voorbeeld.nl/contact": contactHTML,
	}}
	p := testPipeline(t, cfg, f, st)

	res, err := p.RunAgency(context.Background(), testAgency())
	require.NoError(t, err)
	assert.Equal(t, 2, res.PagesVisited)
	// The privacy page yields no findings but was fetched, so it still
	// appears in the evidence list exactly once. The website URL is
	// present as the source of the registry seeds.
	assert.Contains(t, res.Profile.EvidenceURLs, "https://www.voorbeeld.nl/privacy")
	assert.Contains(t, res.Profile.EvidenceURLs, "https://www.voorbeeld.nl/contact")
	assert.Len(t, res.Profile.EvidenceURLs, 3)
}

func TestRunAgencyPageFailureContained(t *testing.T) {
	st := testStore(t)
	cfg := testConfig(t)
	f := &fakeFetcher{
		static:  map[string]string{"https://www.voorbeeld.nl/contact": contactHTML},
		failing: map[string]bool{"https://www.voorbeeld.nl/privacy": true},
	}
	p := testPipeline(t, cfg, f, st)

	res, err := p.RunAgency(context.Background(), testAgency())
	require.NoError(t, err)
	assert.Equal(t, 1, res.PagesVisited)
	assert.Empty(t, res.Profile.KvKNumber)
	assert.Equal(t, "info@voorbeeld.nl", res.Profile.ContactEmail)
}

func TestRunAgencyAllPagesFail(t *testing.T) {
	st := testStore(t)
	cfg := testConfig(t)
	f := &fakeFetcher{failing: map[string]bool{
		"https://www.voorbeeld.nl/privacy": true,
		"https://www.voorbeeld.nl/contact": true,
	}}
	p := testPipeline(t, cfg, f, st)

	_, err := p.RunAgency(context.Background(), testAgency())
	require.Error(t, err)

	runs, err := st.ListRuns(context.Background(), store.RunFilter{AgencyKey: "voorbeeld"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusFailed, runs[0].Status)
}

func TestRunAgencyRenderFallback(t *testing.T) {
	st := testStore(t)
	cfg := testConfig(t)
	cfg.Scrape.RenderFallback = true
	f := &fakeFetcher{
		static: map[string]string{
			"https://www.voorbeeld.nl/privacy": `<html><body><div id="app"></div></body></html>`,
			"https://www.voorbeeld.nl/contact": contactHTML,
		},
		rendered: map[string]string{
			"https://www.voorbeeld.nl/privacy": legalHTML,
		},
	}
	p := testPipeline(t, cfg, f, st)

	res, err := p.RunAgency(context.Background(), testAgency())
	require.NoError(t, err)
	assert.Contains(t, f.renderedCalls, "https://www.voorbeeld.nl/privacy")
	assert.NotContains(t, f.renderedCalls, "https://www.voorbeeld.nl/contact")
	assert.Equal(t, "12345678", res.Profile.KvKNumber)
}

func TestRunAgencyAIGapFill(t *testing.T) {
	st := testStore(t)
	cfg := testConfig(t)
	f := &fakeFetcher{static: map[string]string{
		"https://www.voorbeeld.nl/privacy": legalHTML,
		"https://www.voorbeeld.nl/contact": contactHTML,
	}}
	gap := &fakeGapFiller{findings: []model.Finding{
		{Field: model.FieldHQCity, Value: "Amsterdam", Tier: model.TierAI},
	}}
	p := testPipeline(t, cfg, f, st)
	p.ai = gap

	res, err := p.RunAgency(context.Background(), testAgency())
	require.NoError(t, err)
	assert.Equal(t, 2, gap.calls)
	assert.Equal(t, "Amsterdam", res.Profile.HQCity)
	assert.Contains(t, gap.lastMissing, model.FieldHQProvince)
	assert.NotContains(t, gap.lastMissing, model.FieldHQCity)
	assert.NotContains(t, gap.lastMissing, model.FieldCAOType)
}

func TestRunAgencyAINotEligible(t *testing.T) {
	st := testStore(t)
	cfg := testConfig(t)
	f := &fakeFetcher{static: map[string]string{
		"https://www.voorbeeld.nl/privacy": legalHTML,
		"https://www.voorbeeld.nl/contact": contactHTML,
	}}
	gap := &fakeGapFiller{}
	p := testPipeline(t, cfg, f, st)
	p.ai = gap

	agency := testAgency()
	agency.AIEligible = false
	_, err := p.RunAgency(context.Background(), agency)
	require.NoError(t, err)
	assert.Zero(t, gap.calls)
}

func TestRunAllCollectsPerAgencyFailures(t *testing.T) {
	st := testStore(t)
	cfg := testConfig(t)
	f := &fakeFetcher{
		static: map[string]string{
			"https://www.een.nl/contact": contactHTML,
		},
		failing: map[string]bool{"https://www.twee.nl/contact": true},
	}

	reg, err := registry.Parse([]byte(`
agencies:
  - key: een
    name: Een
    website_url: https://www.een.nl
    pages:
      - url: https://www.een.nl/contact
        categories: [contact]
  - key: twee
    name: Twee
    website_url: https://www.twee.nl
    pages:
      - url: https://www.twee.nl/contact
        categories: [contact]
`))
	require.NoError(t, err)

	p := testPipeline(t, cfg, f, st)
	p.registry = reg

	results, err := p.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "een", results[0].AgencyKey)
}

func TestPagesForDedupAndCap(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scrape.MaxPagesPerAgency = 2
	p := testPipeline(t, cfg, &fakeFetcher{}, nil)

	agency := registry.Agency{
		Key:           "cap",
		Name:          "Cap",
		WebsiteURL:    "https://www.cap.nl",
		EmployersPage: "/werkgevers",
		Pages: []registry.Page{
			{URL: "https://www.cap.nl", Categories: []string{"identity"}},
			{URL: "https://www.cap.nl", Categories: []string{"services"}},
			{URL: "https://www.cap.nl/over-ons", Categories: []string{"identity"}},
		},
	}

	pages := p.pagesFor(context.Background(), agency)
	require.Len(t, pages, 2)
	assert.Equal(t, "https://www.cap.nl", pages[0].URL)
	assert.Equal(t, "https://www.cap.nl/over-ons", pages[1].URL)
}

func TestSeedFindingsAreCanonical(t *testing.T) {
	agency := testAgency()
	agency.Seeds.KvKNumber = "87654321"
	agency.Seeds.HQCity = "Utrecht"
	agency.Seeds.Services = []string{"uitzenden"}

	findings := seedFindings(agency)
	byField := map[string]model.Finding{}
	for _, f := range findings {
		require.True(t, f.Canonical, "seed for %s must be canonical", f.Field)
		assert.Equal(t, model.TierDeterministic, f.Tier)
		byField[f.Field] = f
	}
	assert.Equal(t, "87654321", byField[model.FieldKvKNumber].Value)
	assert.Equal(t, "Utrecht", byField[model.FieldHQCity].Value)
	assert.Equal(t, true, byField[model.FieldService("uitzenden")].Value)
}

func TestWriteDiscoveryReport(t *testing.T) {
	cfg := config.OutputConfig{Dir: t.TempDir(), Pretty: false}
	result := &model.DiscoveryResult{
		Agency:       "voorbeeld",
		BaseURL:      "https://www.voorbeeld.nl",
		SitemapFound: true,
		Recommended:  []string{"https://www.voorbeeld.nl"},
	}

	path, err := WriteDiscoveryReport(cfg, "voorbeeld", result)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sitemap_found":true`)
}
