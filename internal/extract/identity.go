package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/inhuren/agency-scraper/internal/model"
)

var kvkRe = regexp.MustCompile(`(?i)(?:kvk|k\.v\.k\.|kamer van koophandel|handelsregister|chamber of commerce)[\s\-:.]*(?:nummer|nr\.?)?[\s\-:.]*(\d{8})\b`)

// Identity extracts legal name, KvK number and logo URL. The legal-name
// patterns are anchored on the agency's trade name so a partner or
// client mentioned on the same page cannot match.
type Identity struct {
	agencyName string
	baseURL    *url.URL
	legalRes   []*regexp.Regexp
}

func NewIdentity(agencyName, baseURL string) Identity {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}
	quoted := regexp.QuoteMeta(agencyName)
	return Identity{
		agencyName: agencyName,
		baseURL:    base,
		legalRes: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(` + quoted + `\s+(?:Nederland|Netherlands)\s+B\.?V\.?)`),
			regexp.MustCompile(`(?i)(` + quoted + `\s+(?:\w+\s+)?B\.?V\.?)`),
		},
	}
}

func (Identity) Name() string { return "identity" }

func (e Identity) Extract(page *model.Page) []model.Finding {
	var out []model.Finding
	canonical := page.Category == model.CategoryLegal

	if m := kvkRe.FindStringSubmatch(page.Text); m != nil {
		f := finding(page, model.FieldKvKNumber, m[1])
		f.Canonical = canonical
		out = append(out, f)
	}

	for _, re := range e.legalRes {
		if m := re.FindStringSubmatch(page.Text); m != nil {
			f := finding(page, model.FieldLegalName, strings.TrimSpace(m[1]))
			f.Canonical = canonical
			out = append(out, f)
			break
		}
	}

	if logo := e.findLogo(page.Doc); logo != "" {
		out = append(out, finding(page, model.FieldLogoURL, logo))
	}
	return out
}

// findLogo prefers structured data, then header/footer images, then any
// image whose path says "logo". Only PNG and SVG count; banner, hero and
// carousel images are rejected even when their path mentions the brand.
func (e Identity) findLogo(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	for _, obj := range jsonLDObjects(doc) {
		switch logo := obj["logo"].(type) {
		case string:
			if logo != "" {
				return e.absolutise(logo)
			}
		case map[string]any:
			if u, ok := logo["url"].(string); ok && u != "" {
				return e.absolutise(u)
			}
		}
	}

	var found string
	doc.Find("header img, footer img, nav img, .header img, .footer img, .navbar img").
		EachWithBreak(func(_ int, s *goquery.Selection) bool {
			src := imgSrc(s)
			if !isLogoImage(src) {
				return true
			}
			alt, _ := s.Attr("alt")
			if containsAny(strings.ToLower(src), "logo", "brand") || containsAny(strings.ToLower(alt), "logo", "brand") {
				found = src
				return false
			}
			return true
		})
	if found == "" {
		doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			src := imgSrc(s)
			low := strings.ToLower(src)
			if isLogoImage(src) && strings.Contains(low, "logo") &&
				!containsAny(low, "banner", "hero", "slide", "carousel") {
				found = src
				return false
			}
			return true
		})
	}
	if found == "" {
		return ""
	}
	return e.absolutise(found)
}

func (e Identity) absolutise(src string) string {
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	if e.baseURL == nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		zap.L().Debug("extract: unparseable logo src", zap.String("src", src))
		return ""
	}
	return e.baseURL.ResolveReference(ref).String()
}

func imgSrc(s *goquery.Selection) string {
	if src, ok := s.Attr("src"); ok && src != "" {
		return src
	}
	src, _ := s.Attr("data-src")
	return src
}

func isLogoImage(src string) bool {
	low := strings.ToLower(src)
	return strings.HasSuffix(low, ".png") || strings.HasSuffix(low, ".svg") ||
		strings.Contains(low, ".png?") || strings.Contains(low, ".svg?")
}
