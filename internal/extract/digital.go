package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/inhuren/agency-scraper/internal/model"
)

var (
	candidatePortalText = []string{
		"inloggen", "login", "mijn account", "mijn profiel", "mijn dashboard",
		"candidate login", "kandidaat login", "medewerker login", "employee login",
		"mijn werknemersportaal",
	}
	candidatePortalLink = []string{"login", "inloggen", "mijn", "portal", "account"}
	employerMarkers     = []string{"werkgever", "employer", "client", "opdrachtgever"}

	clientPortalText = []string{
		"client portal", "employer portal", "werkgeversportaal", "opdrachtgever portal",
		"mijn werkgevers", "werkgever inloggen", "employer login",
	}
	clientPortalLink = []string{"werkgever", "employer", "client portal", "opdrachtgever"}
)

// Digital flips digital and AI capability flags. Portal detection
// distinguishes candidate logins from employer logins: a nav link
// matching a login keyword counts as a candidate portal only when the
// link carries no employer marker.
type Digital struct{}

func (Digital) Name() string { return "digital" }

func (Digital) Extract(page *model.Page) []model.Finding {
	text := strings.ToLower(page.Text)
	var out []model.Finding

	if containsAny(text, candidatePortalText...) || hasCandidatePortalLink(page.Doc) {
		out = append(out, finding(page, model.FieldDigital("candidate_portal"), true))
	}
	if containsAny(text, clientPortalText...) || hasClientPortalLink(page.Doc) {
		out = append(out, finding(page, model.FieldDigital("client_portal"), true))
	}
	if containsAny(text, "app store", "google play", "download de app", "onze app") {
		out = append(out, finding(page, model.FieldDigital("mobile_app"), true))
	}
	if containsAny(text, "api-koppeling", "api koppeling", "via onze api", "rest api") {
		out = append(out, finding(page, model.FieldDigital("api_available"), true))
	}
	if containsAny(text, "direct contract tekenen", "digitaal ondertekenen", "online contracteren") {
		out = append(out, finding(page, model.FieldDigital("self_service_contracting"), true))
	}

	if containsAny(text, "ai-matching", "ai matching", "slimme matching", "matching-algoritme") {
		out = append(out, finding(page, model.FieldAI("internal_ai_matching"), true))
	}
	if containsAny(text, "voorspellende planning", "predictive planning", "voorspellen van personeelsbehoefte") {
		out = append(out, finding(page, model.FieldAI("predictive_planning"), true))
	}
	if containsAny(text, "chatbot", "chat met ons", "virtuele assistent") {
		field := model.FieldAI("chatbot_for_candidates")
		if containsAny(text, employerMarkers...) {
			field = model.FieldAI("chatbot_for_clients")
		}
		out = append(out, finding(page, field, true))
	}
	return out
}

func hasCandidatePortalLink(doc *goquery.Document) bool {
	return hasPortalLink(doc, candidatePortalLink, employerMarkers)
}

func hasClientPortalLink(doc *goquery.Document) bool {
	return hasPortalLink(doc, clientPortalLink, nil)
}

func hasPortalLink(doc *goquery.Document, include, exclude []string) bool {
	if doc == nil {
		return false
	}
	found := false
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		href = strings.ToLower(href)
		text := strings.ToLower(strings.TrimSpace(s.Text()))

		matches := false
		for _, kw := range include {
			if strings.Contains(href, kw) || strings.Contains(text, kw) {
				matches = true
				break
			}
		}
		if !matches {
			return true
		}
		for _, kw := range exclude {
			if strings.Contains(href, kw) || strings.Contains(text, kw) {
				return true
			}
		}
		found = true
		return false
	})
	return found
}
