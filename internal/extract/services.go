package extract

import (
	"strings"

	"github.com/inhuren/agency-scraper/internal/model"
)

// serviceKeywords maps each service flag to the phrases that switch it
// on. Flags are monotonic across a run; a single mention anywhere on
// the site is enough.
var serviceKeywords = []struct {
	flag     string
	keywords []string
}{
	{"uitzenden", []string{"uitzenden", "uitzendkracht", "uitzendbureau"}},
	{"detacheren", []string{"detacheren", "detachering"}},
	{"payrolling", []string{"payroll"}},
	{"zzp_bemiddeling", []string{"zzp", "freelance", "zelfstandige professionals"}},
	{"inhouse_services", []string{"inhouse services", "in-house services", "inhouse concept"}},
	{"msp", []string{"msp", "managed service provider", "managed services"}},
	{"rpo", []string{"rpo", "recruitment process outsourcing"}},
	{"executive_search", []string{"executive search", "interim management"}},
	{"opleiden_ontwikkelen", []string{"opleiden", "opleidingen", "ontwikkelen van medewerkers", "leren en ontwikkelen"}},
	{"reintegratie_outplacement", []string{"re-integratie", "reintegratie", "outplacement"}},
	{"vacaturebemiddeling_only", []string{"vacaturebank", "vacatureplatform"}},
}

// Services flips service capability flags on keyword sightings.
type Services struct{}

func (Services) Name() string { return "services" }

func (Services) Extract(page *model.Page) []model.Finding {
	text := strings.ToLower(page.Text)
	if text == "" {
		return nil
	}

	var out []model.Finding
	for _, entry := range serviceKeywords {
		for _, kw := range entry.keywords {
			if matchServiceKeyword(text, kw) {
				out = append(out, finding(page, model.FieldService(entry.flag), true))
				break
			}
		}
	}

	// Werving & selectie requires both halves somewhere in the text;
	// "selectie" alone shows up in cookie banners.
	if strings.Contains(text, "werving") && strings.Contains(text, "selectie") {
		out = append(out, finding(page, model.FieldService("werving_selectie"), true))
	}
	return out
}

// matchServiceKeyword uses word-boundary matching for the short
// abbreviations and substring matching for everything else, so "msp"
// does not fire inside an unrelated word.
func matchServiceKeyword(text, kw string) bool {
	if len(kw) <= 4 {
		return containsWord(text, kw)
	}
	return strings.Contains(text, kw)
}
