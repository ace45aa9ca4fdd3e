package extract

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/inhuren/agency-scraper/internal/model"
)

// reviewPlatforms maps display names to URL fragments that identify
// the platform. Order matters: the generic "reviews" fragment sits on
// Google last so Trustpilot links do not get misfiled.
var reviewPlatforms = []struct {
	name      string
	fragments []string
}{
	{"Trustpilot", []string{"trustpilot.com", "trustpilot.nl"}},
	{"Indeed", []string{"indeed.com", "indeed.nl"}},
	{"Glassdoor", []string{"glassdoor.com", "glassdoor.nl"}},
	{"Google Reviews", []string{"google.com/maps", "google.nl/maps", "g.page"}},
}

// Reviews harvests review-platform links and the aggregate rating from
// JSON-LD. Ratings only count inside 0-5 with a positive review count;
// anything else is a different schema misused by the site.
type Reviews struct{}

func (Reviews) Name() string { return "reviews" }

func (Reviews) Extract(page *model.Page) []model.Finding {
	var out []model.Finding
	out = append(out, reviewLinks(page)...)
	out = append(out, aggregateRating(page)...)
	return out
}

func reviewLinks(page *model.Page) []model.Finding {
	if page.Doc == nil {
		return nil
	}
	var out []model.Finding
	seen := map[string]bool{}
	page.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		low := strings.ToLower(href)
		text := strings.ToLower(strings.TrimSpace(s.Text()))

		for _, platform := range reviewPlatforms {
			if seen[platform.name] {
				continue
			}
			if !containsAny(low, platform.fragments...) {
				continue
			}
			// Require a review signal so a plain maps/profile link
			// does not count.
			if !containsAny(low, "review", "beoordeling") && !containsAny(text, "review", "beoordeling") {
				continue
			}
			seen[platform.name] = true
			out = append(out,
				finding(page, model.FieldReviewSources, platform.name),
				finding(page, model.FieldExternalReviewURLs, href))
			break
		}
	})
	return out
}

func aggregateRating(page *model.Page) []model.Finding {
	for _, obj := range jsonLDObjects(page.Doc) {
		agg, ok := obj["aggregateRating"].(map[string]any)
		if !ok {
			continue
		}
		rating, ok := jsonNumber(agg["ratingValue"])
		if !ok || rating < 0 || rating > 5 {
			continue
		}
		count, ok := jsonNumber(agg["reviewCount"])
		if !ok {
			count, ok = jsonNumber(agg["ratingCount"])
		}
		if !ok || count <= 0 {
			continue
		}
		return []model.Finding{
			finding(page, model.FieldReviewRating, rating),
			finding(page, model.FieldReviewCount, int(count)),
		}
	}
	return nil
}

// jsonNumber accepts both numeric and string-typed values; structured
// data in the wild uses either.
func jsonNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(n, ",", "."), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
