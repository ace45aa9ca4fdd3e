// Package categorize files discovered URLs under semantic page
// categories and selects the recommended scrape list for a site.
package categorize

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/inhuren/agency-scraper/internal/model"
)

// categoryPatterns maps each category to the path patterns that claim a
// URL for it. A URL is assigned the first matching category in
// model.CategoryPriority order.
var categoryPatterns = map[model.PageCategory][]*regexp.Regexp{
	model.CategoryIdentity: compile(
		`/over(-|/|$)`, `/about`, `/wie-zijn`, `/ons-verhaal`, `/organisatie`,
		`/geschiedenis`, `/missie`,
	),
	// Employer-facing pages carry the contact surface for clients
	// (contact forms, employer phone lines), so they file under contact.
	model.CategoryContact: compile(
		`/contact`, `/werkgevers`, `/voor-werkgevers`,
		`/opdrachtgevers`, `/voor-opdrachtgevers`,
	),
	model.CategoryLocations: compile(
		`/vestigingen`, `/locaties`, `/filialen`, `/kantoren`,
	),
	model.CategoryServices: compile(
		`/diensten`, `/services`, `/uitzenden`, `/detacher`, `/payroll`,
		`/werving`, `/hr-services`, `/inhouse`,
	),
	model.CategorySectors: compile(
		`/sectoren`, `/branches`, `/vakgebieden`, `/expertises`, `/specialisaties`,
	),
	model.CategorySegments: compile(
		`/studenten`, `/young-professionals`, `/professionals`, `/zzp`,
	),
	model.CategoryLegal: compile(
		`/privacy`, `/voorwaarden`, `/certificering`, `/keurmerken`,
		`/kwaliteit`, `/disclaimer`, `/cookie`, `/legal`,
	),
	model.CategoryPricing: compile(
		`/tarieven`, `/tarief`, `/kosten`, `/prijzen`,
	),
	model.CategoryDigital: compile(
		`/portal`, `/mijn-`, `/app$`,
	),
	model.CategoryReviews: compile(
		`/reviews`, `/ervaringen`, `/beoordelingen`, `/klanttevredenheid`,
	),
	model.CategoryNews: compile(
		`/nieuws`, `/blog`, `/pers`, `/actueel`,
	),
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// Categorizer assigns page categories to URLs.
type Categorizer struct {
	excluder *PathMatcher
}

// New creates a Categorizer with the given exclusion patterns (nil for
// defaults).
func New(excludePatterns []string) *Categorizer {
	return &Categorizer{excluder: NewPathMatcher(excludePatterns)}
}

// Categorize returns the category for a single URL. Excluded URLs and
// URLs matching no pattern set come back as CategoryUncategorized, with
// the second return reporting exclusion.
func (c *Categorizer) Categorize(rawURL string) (model.PageCategory, bool) {
	if c.excluder.IsExcluded(rawURL) {
		return model.CategoryUncategorized, true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return model.CategoryUncategorized, true
	}
	p := strings.ToLower(u.Path)
	if p == "" || p == "/" {
		// The homepage carries identity signals (logo, tagline, footer).
		return model.CategoryIdentity, false
	}

	for _, cat := range model.CategoryPriority {
		for _, re := range categoryPatterns[cat] {
			if re.MatchString(p) {
				return cat, false
			}
		}
	}
	return model.CategoryUncategorized, false
}

// Report list caps: a category lists at most 30 URLs and the
// uncategorized bucket at most 50, keeping the report readable for huge
// sitemaps.
const (
	maxPerCategory   = 30
	maxUncategorized = 50
)

// Apply categorizes every discovered URL in place, dropping excluded
// ones, and fills the result's ByCategory, Uncategorized, and
// Recommended fields. Category lists are sorted shortest-URL-first
// (shorter paths are closer to the section root) and capped.
// maxRecommended caps the scrape list.
func (c *Categorizer) Apply(result *model.DiscoveryResult, maxRecommended int) {
	if maxRecommended <= 0 {
		maxRecommended = 15
	}

	kept := result.URLs[:0]
	result.ByCategory = make(map[model.PageCategory][]string)
	for _, du := range result.URLs {
		cat, excluded := c.Categorize(du.URL)
		if excluded {
			continue
		}
		du.Category = cat
		kept = append(kept, du)
		if cat == model.CategoryUncategorized {
			result.Uncategorized = append(result.Uncategorized, du.URL)
		} else {
			result.ByCategory[cat] = append(result.ByCategory[cat], du.URL)
		}
	}
	result.URLs = kept
	result.TotalURLs = len(kept)

	for cat, urls := range result.ByCategory {
		sort.SliceStable(urls, func(i, j int) bool {
			if len(urls[i]) != len(urls[j]) {
				return len(urls[i]) < len(urls[j])
			}
			return urls[i] < urls[j]
		})
		if len(urls) > maxPerCategory {
			urls = urls[:maxPerCategory]
		}
		result.ByCategory[cat] = urls
	}
	if len(result.Uncategorized) > maxUncategorized {
		result.Uncategorized = result.Uncategorized[:maxUncategorized]
	}

	result.Recommended = c.recommend(result, maxRecommended)
}

// recommend builds the scrape list: the homepage first, then up to two
// of the shortest URLs per category in priority order until the cap is
// reached. ByCategory is already sorted shortest-first by Apply.
func (c *Categorizer) recommend(result *model.DiscoveryResult, max int) []string {
	recommended := make([]string, 0, max)
	seen := make(map[string]bool)
	add := func(u string) bool {
		if seen[u] || len(recommended) >= max {
			return false
		}
		seen[u] = true
		recommended = append(recommended, u)
		return true
	}

	if home := homepageOf(result.BaseURL); home != "" {
		add(home)
	}

	const perCategory = 2
	for _, cat := range model.CategoryPriority {
		for i, u := range result.ByCategory[cat] {
			if i >= perCategory || len(recommended) >= max {
				break
			}
			add(u)
		}
	}
	return recommended
}

func homepageOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
