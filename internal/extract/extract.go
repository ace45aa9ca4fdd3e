// Package extract turns fetched pages into candidate profile findings.
//
// Every extractor is stateless with respect to the run: it looks at one
// page and emits zero or more findings. Findings are hints, not
// decisions; the accumulator owns the merge policy. Deterministic
// extractors run on every page, the AI extractor only on pages flagged
// eligible and only for fields the deterministic tier left empty.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/inhuren/agency-scraper/internal/model"
)

// Extractor produces candidate findings from one fetched page.
type Extractor interface {
	Name() string
	Extract(page *model.Page) []model.Finding
}

// Deterministic returns the full tier-1 extractor set for one agency.
// The identity extractor needs the agency name for legal-name matching
// and the base URL to absolutise logo paths.
func Deterministic(agencyName, baseURL string) []Extractor {
	return []Extractor{
		NewIdentity(agencyName, baseURL),
		NewContact(baseURL),
		Locations{},
		Sectors{},
		Services{},
		Legal{},
		Pricing{},
		Digital{},
		Reviews{},
		Positioning{},
	}
}

func finding(page *model.Page, field string, value any) model.Finding {
	return model.Finding{
		Field:     field,
		Value:     value,
		SourceURL: page.URL,
		Tier:      model.TierDeterministic,
	}
}

func canonicalFinding(page *model.Page, field string, value any) model.Finding {
	f := finding(page, field, value)
	f.Canonical = true
	return f
}

// jsonLDObjects decodes every application/ld+json block on the page
// into loose maps, flattening @graph arrays. Malformed blocks are
// skipped; structured data on marketing sites is rarely pristine.
func jsonLDObjects(doc *goquery.Document) []map[string]any {
	if doc == nil {
		return nil
	}
	var objects []map[string]any
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var node any
		if err := json.Unmarshal([]byte(raw), &node); err != nil {
			return
		}
		objects = append(objects, flattenJSONLD(node)...)
	})
	return objects
}

func flattenJSONLD(node any) []map[string]any {
	switch v := node.(type) {
	case map[string]any:
		out := []map[string]any{v}
		if graph, ok := v["@graph"].([]any); ok {
			for _, g := range graph {
				out = append(out, flattenJSONLD(g)...)
			}
		}
		return out
	case []any:
		var out []map[string]any
		for _, item := range v {
			out = append(out, flattenJSONLD(item)...)
		}
		return out
	default:
		return nil
	}
}

// containsAny reports whether text contains any of the given needles.
// Callers pass text already lower-cased.
func containsAny(text string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
