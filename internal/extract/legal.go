package extract

import (
	"strings"

	"github.com/inhuren/agency-scraper/internal/model"
)

// certTokens maps lower-cased page tokens to canonical certification
// names. Multiple spellings collapse onto one canonical entry.
var certTokens = []struct {
	token string
	name  string
}{
	{"iso 9001", "ISO 9001"},
	{"iso9001", "ISO 9001"},
	{"iso 14001", "ISO 14001"},
	{"iso 27001", "ISO 27001"},
	{"nen-4400", "NEN-4400-1"},
	{"nen 4400", "NEN-4400-1"},
	{"sna-keurmerk", "SNA"},
	{"sna keurmerk", "SNA"},
	{"sna", "SNA"},
	{"snf", "SNF"},
	{"vca", "VCA"},
	{"vcu", "VCU"},
	{"pso-keurmerk", "PSO"},
	{"pso", "PSO"},
	{"kiwa", "Kiwa"},
	{"nba", "NBA"},
	{"psom", "PSOM"},
	{"vcr", "VCR"},
	{"sri", "SRI"},
}

// Legal extracts CAO type, memberships, certifications and the phase
// system. ABU wins over NBBU when a page mentions both; an agency is a
// member of at most one of the two and ABU pages routinely compare
// themselves to NBBU.
type Legal struct{}

func (Legal) Name() string { return "legal" }

func (Legal) Extract(page *model.Page) []model.Finding {
	text := strings.ToLower(page.Text)
	if text == "" {
		return nil
	}
	var out []model.Finding

	abu := containsWord(text, "abu")
	nbbu := containsWord(text, "nbbu")
	switch {
	case abu:
		out = append(out,
			finding(page, model.FieldCAOType, model.CAOTypeABU),
			finding(page, model.FieldMembership, "ABU"))
	case nbbu:
		out = append(out,
			finding(page, model.FieldCAOType, model.CAOTypeNBBU),
			finding(page, model.FieldMembership, "NBBU"))
	case containsAny(text, "eigen cao", "bedrijfs-cao"):
		out = append(out, finding(page, model.FieldCAOType, model.CAOTypeEigenCAO))
	}
	if nbbu && abu {
		out = append(out, finding(page, model.FieldMembership, "NBBU"))
	}
	if containsWord(text, "nrto") {
		out = append(out, finding(page, model.FieldMembership, "NRTO"))
	}

	seen := map[string]bool{}
	for _, ct := range certTokens {
		if seen[ct.name] {
			continue
		}
		if containsCertToken(text, ct.token) {
			seen[ct.name] = true
			out = append(out, finding(page, model.FieldCertifications, ct.name))
		}
	}

	switch {
	case containsAny(text, "3 fasen", "3 phases", "fase a", "fase b", "fase c"):
		out = append(out, finding(page, model.FieldPhaseSystem, "3_fasen"))
	case containsAny(text, "4 fasen", "4 phases", "fase 1", "fase 2", "fase 3", "fase 4"):
		out = append(out, finding(page, model.FieldPhaseSystem, "4_fasen"))
	}

	if strings.Contains(text, "inlenersbeloning") {
		out = append(out, finding(page, model.FieldUsesInlenersbeloning, true))
		if containsAny(text, "vanaf dag één", "vanaf dag een", "vanaf de eerste dag", "vanaf dag 1") {
			out = append(out, finding(page, model.FieldInlenersbeloningFromDay1, true))
		}
	}
	return out
}

// containsCertToken does word-boundary matching for short abbreviations
// like SNA and SRI, plain substring matching for the longer tokens.
func containsCertToken(text, token string) bool {
	if len(token) <= 4 && !strings.ContainsAny(token, " -") {
		return containsWord(text, token)
	}
	return strings.Contains(text, token)
}
