package extract

import (
	"sort"
	"strings"

	"github.com/inhuren/agency-scraper/internal/model"
	"github.com/inhuren/agency-scraper/internal/normalize"
)

// Sectors detects the canonical sector tags an agency serves by keyword
// scan. Dedicated sector pages contribute core sectors; any other page
// only ever contributes secondary ones, so a privacy page mentioning
// "transport" cannot promote logistics to a core sector.
type Sectors struct{}

func (Sectors) Name() string { return "sectors" }

func (Sectors) Extract(page *model.Page) []model.Finding {
	text := strings.ToLower(page.Text)
	if text == "" {
		return nil
	}

	field := model.FieldSectorsSecondary
	if page.Category == model.CategorySectors || page.Category == model.CategoryServices {
		field = model.FieldSectorsCore
	}

	var matched []string
	for sector, keywords := range normalize.SectorKeywords() {
		for _, kw := range keywords {
			if containsWord(text, kw) {
				matched = append(matched, sector)
				break
			}
		}
	}
	sort.Strings(matched)

	out := make([]model.Finding, 0, len(matched))
	for _, sector := range matched {
		out = append(out, finding(page, field, sector))
	}
	return out
}

// containsWord matches a keyword on word boundaries. Plain substring
// matching declares every Dutch page an IT agency because "it" occurs
// inside "uitzenden".
func containsWord(text, keyword string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], keyword)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(keyword)
		beforeOK := start == 0 || !isWordByte(text[start-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = end
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
