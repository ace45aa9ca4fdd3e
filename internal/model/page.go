package model

import "github.com/PuerkitoBio/goquery"

// PageCategory is the semantic category a URL is filed under. A URL maps
// to at most one category, chosen by a fixed priority order.
type PageCategory string

const (
	CategoryIdentity      PageCategory = "identity"
	CategoryContact       PageCategory = "contact"
	CategoryLocations     PageCategory = "locations"
	CategoryServices      PageCategory = "services"
	CategorySectors       PageCategory = "sectors"
	CategorySegments      PageCategory = "segments"
	CategoryLegal         PageCategory = "legal"
	CategoryPricing       PageCategory = "pricing"
	CategoryDigital       PageCategory = "digital"
	CategoryReviews       PageCategory = "reviews"
	CategoryNews          PageCategory = "news"
	CategoryUncategorized PageCategory = "uncategorized"
)

// CategoryPriority is the fixed matching order for the categorizer.
// Earlier entries win when multiple pattern sets match a URL.
var CategoryPriority = []PageCategory{
	CategoryIdentity,
	CategoryContact,
	CategoryLocations,
	CategoryServices,
	CategorySectors,
	CategorySegments,
	CategoryLegal,
	CategoryPricing,
	CategoryDigital,
	CategoryReviews,
	CategoryNews,
}

// FetchMode selects how a page body is obtained.
type FetchMode string

const (
	FetchModeStatic   FetchMode = "static"
	FetchModeRendered FetchMode = "rendered"
)

// Page is a fetched, parsed page ready for extraction.
type Page struct {
	URL        string
	FinalURL   string
	Title      string
	StatusCode int
	Mode       FetchMode
	Category   PageCategory

	// Text is the plain page text; Markdown is the markdown rendition
	// used as AI-tier input. Doc is the parsed DOM.
	Text     string
	Markdown string
	Doc      *goquery.Document
}

// DiscoveredURL is a candidate content URL with its discovery source.
type DiscoveredURL struct {
	URL      string       `json:"url"`
	Source   string       `json:"source"` // robots, sitemap, crawl
	Category PageCategory `json:"category,omitempty"`
}

// DiscoveryResult is the per-agency output of sitemap/link discovery.
type DiscoveryResult struct {
	Agency        string                    `json:"agency"`
	BaseURL       string                    `json:"base_url"`
	SitemapFound  bool                      `json:"sitemap_found"`
	SitemapURL    string                    `json:"sitemap_url,omitempty"`
	TotalURLs     int                       `json:"total_urls"`
	URLs          []DiscoveredURL           `json:"-"`
	Recommended   []string                  `json:"recommended_scrape_list"`
	ByCategory    map[PageCategory][]string `json:"by_category"`
	Uncategorized []string                  `json:"uncategorized"`
	Errors        []string                  `json:"errors,omitempty"`
}
