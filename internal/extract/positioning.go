package extract

import (
	"strings"

	"github.com/inhuren/agency-scraper/internal/model"
	"github.com/inhuren/agency-scraper/internal/normalize"
)

var roleLevelKeywords = []struct {
	level    string
	keywords []string
}{
	{"student", []string{"student", "studenten", "bijbaan", "bijbaantje", "stageplek"}},
	{"starter", []string{"starter", "junior", "startende", "starters"}},
	{"medior", []string{"medior", "ervaren professionals", "mid-level"}},
	{"senior", []string{"senior", "specialist", "executive", "interim professional"}},
}

// Positioning detects market-positioning signals: geographic focus,
// role levels, customer segments and volume specialisation. These all
// come from indirect mentions, so the keyword sets stay conservative;
// an empty result beats a wrong guess.
type Positioning struct{}

func (Positioning) Name() string { return "positioning" }

func (Positioning) Extract(page *model.Page) []model.Finding {
	text := strings.ToLower(page.Text)
	if text == "" {
		return nil
	}
	var out []model.Finding

	if focus, ok := normalize.GeoFocus(text); ok {
		out = append(out, finding(page, model.FieldGeoFocus, focus))
	}

	for _, entry := range roleLevelKeywords {
		for _, kw := range entry.keywords {
			if matchServiceKeyword(text, kw) {
				out = append(out, finding(page, model.FieldRoleLevels, entry.level))
				break
			}
		}
	}

	if containsAny(text, "mkb", "midden- en kleinbedrijf", "kleine bedrijven") {
		out = append(out, finding(page, model.FieldCustomerSegments, "mkb"))
	}
	if containsAny(text, "grote organisaties", "multinationals", "corporates", "enterprise") {
		out = append(out, finding(page, model.FieldCustomerSegments, "enterprise"))
	}
	if containsAny(text, "publieke sector", "overheidsinstellingen", "gemeenten") {
		out = append(out, finding(page, model.FieldCustomerSegments, "publieke_sector"))
	}

	switch {
	case containsAny(text, "grootschalige", "grote volumes", "honderden medewerkers", "massa-instroom"):
		out = append(out, finding(page, model.FieldVolumeSpec, model.VolumeMassa))
	case containsAny(text, "flexpool", "flexibele pool", "pool van medewerkers"):
		out = append(out, finding(page, model.FieldVolumeSpec, model.VolumePools))
	case containsAny(text, "last-minute", "ad hoc", "per direct één", "per direct een"):
		out = append(out, finding(page, model.FieldVolumeSpec, model.VolumeAdHoc))
	}
	return out
}
