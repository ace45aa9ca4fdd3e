package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/inhuren/agency-scraper/internal/model"
	"github.com/inhuren/agency-scraper/internal/normalize"
)

// Locations finds branch offices by scanning section headings for known
// Dutch city names. Vestigingen pages list one office per heading, so
// headings are a far more precise signal than free text. Each office
// also contributes its province to regions served.
type Locations struct{}

func (Locations) Name() string { return "locations" }

func (Locations) Extract(page *model.Page) []model.Finding {
	if page.Doc == nil {
		return nil
	}
	canonical := page.Category == model.CategoryContact || page.Category == model.CategoryLocations

	var out []model.Finding
	seen := map[string]bool{}
	page.Doc.Find("h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		heading := strings.TrimSpace(s.Text())
		city := headingCity(heading)
		if city == "" || seen[city] {
			return
		}
		seen[city] = true

		province := normalize.ProvinceForCity(city)
		office := model.OfficeLocation{City: city, Province: province}
		f := finding(page, model.FieldOfficeLocations, office)
		f.Canonical = canonical
		out = append(out, f)

		if province != normalize.ProvinceUnknown {
			out = append(out, finding(page, model.FieldRegionsServed, province))
		}
	})
	return out
}

// headingCity returns the canonical city name when a known city appears
// in the heading, e.g. "Vestiging Utrecht" or "Den Haag - Centrum".
func headingCity(heading string) string {
	low := strings.ToLower(heading)
	if low == "" || len(low) > 60 {
		return ""
	}
	for _, word := range strings.FieldsFunc(low, func(r rune) bool {
		return r == '-' || r == '|' || r == ','
	}) {
		candidate := normalize.City(strings.TrimSpace(word))
		if normalize.KnownCity(candidate) {
			return candidate
		}
	}
	// Multi-word cities ("Den Haag") and headings with a prefix word.
	for _, prefix := range []string{"vestiging ", "kantoor ", "locatie ", ""} {
		rest := strings.TrimPrefix(low, prefix)
		candidate := normalize.City(strings.TrimSpace(rest))
		if normalize.KnownCity(candidate) {
			return candidate
		}
	}
	return ""
}
