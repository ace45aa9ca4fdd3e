package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nyaruka/phonenumbers"

	"github.com/inhuren/agency-scraper/internal/model"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`\+31[\s\-]?\(?0?\)?[\s\-]?\d{1,2}[\s\-]?\d{3}[\s\-]?\d{2}[\s\-]?\d{2}`),
		regexp.MustCompile(`\b0\d{2,3}[\s\-]?\d{3}[\s\-]?\d{2}[\s\-]?\d{2}\b`),
	}

	// Business mailbox prefixes outrank personal addresses.
	preferredMailboxes = []string{"info@", "contact@", "sales@", "werkgevers@", "klantenservice@"}
)

// Contact extracts phone, email and the employer-facing entry links.
// Contact pages are the canonical source for phone and email.
type Contact struct {
	baseURL *url.URL
}

func NewContact(baseURL string) Contact {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}
	return Contact{baseURL: base}
}

func (Contact) Name() string { return "contact" }

func (e Contact) Extract(page *model.Page) []model.Finding {
	var out []model.Finding
	canonical := page.Category == model.CategoryContact

	if email := pickEmail(page.Text); email != "" {
		f := finding(page, model.FieldContactEmail, email)
		f.Canonical = canonical
		out = append(out, f)
	}
	if phone := pickPhone(page.Text); phone != "" {
		f := finding(page, model.FieldContactPhone, phone)
		f.Canonical = canonical
		out = append(out, f)
	}

	if u := e.findLink(page.Doc, "contact"); u != "" {
		out = append(out, finding(page, model.FieldContactFormURL, u))
	}
	if u := e.findLink(page.Doc, "werkgevers", "voor werkgevers", "opdrachtgevers", "personeel nodig"); u != "" {
		out = append(out, finding(page, model.FieldEmployersPageURL, u))
	}
	return out
}

// pickEmail returns the first address carrying a business mailbox
// prefix, so a colleague's personal address in a news item never wins.
func pickEmail(text string) string {
	for _, email := range emailRe.FindAllString(text, 10) {
		low := strings.ToLower(email)
		for _, prefix := range preferredMailboxes {
			if strings.HasPrefix(low, prefix) {
				return low
			}
		}
	}
	return ""
}

// pickPhone returns the first candidate that parses as a valid Dutch
// number, formatted internationally.
func pickPhone(text string) string {
	for _, re := range phoneRes {
		for _, raw := range re.FindAllString(text, 5) {
			num, err := phonenumbers.Parse(raw, "NL")
			if err != nil || !phonenumbers.IsValidNumber(num) {
				continue
			}
			return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
		}
	}
	return ""
}

func (e Contact) findLink(doc *goquery.Document, needles ...string) string {
	if doc == nil {
		return ""
	}
	var found string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		if text == "" {
			return true
		}
		for _, needle := range needles {
			if text == needle || strings.HasPrefix(text, needle+" ") {
				href, _ := s.Attr("href")
				if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
					return true
				}
				found = e.resolve(href)
				return false
			}
		}
		return true
	})
	return found
}

func (e Contact) resolve(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if e.baseURL == nil {
		return href
	}
	return e.baseURL.ResolveReference(ref).String()
}
