// Package normalize maps raw extracted tokens onto the closed
// vocabularies of the profile schema. Every function is pure and total:
// unrecognized input resolves to an explicit unknown sentinel, never to
// an absent value.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/inhuren/agency-scraper/internal/model"
)

// ProvinceUnknown is the sentinel for cities outside the lookup table.
const ProvinceUnknown = "Onbekend"

// provinces maps lower-cased variants and abbreviations to the twelve
// canonical Dutch province names.
var provinces = map[string]string{
	"drenthe":       "Drenthe",
	"flevoland":     "Flevoland",
	"friesland":     "Friesland",
	"fryslan":       "Friesland",
	"fryslân":       "Friesland",
	"gelderland":    "Gelderland",
	"groningen":     "Groningen",
	"limburg":       "Limburg",
	"noord-brabant": "Noord-Brabant",
	"brabant":       "Noord-Brabant",
	"noord-holland": "Noord-Holland",
	"overijssel":    "Overijssel",
	"utrecht":       "Utrecht",
	"zeeland":       "Zeeland",
	"zuid-holland":  "Zuid-Holland",
	"nh":            "Noord-Holland",
	"zh":            "Zuid-Holland",
	"nb":            "Noord-Brabant",
	"fr":            "Friesland",
	"gld":           "Gelderland",
	"ov":            "Overijssel",
	"lb":            "Limburg",
	"dr":            "Drenthe",
	"fl":            "Flevoland",
	"zl":            "Zeeland",
	"gr":            "Groningen",
	"ut":            "Utrecht",
}

// Province maps a raw province token to its canonical name, or
// ProvinceUnknown when unrecognized.
func Province(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "-")
	if p, ok := provinces[key]; ok {
		return p
	}
	return ProvinceUnknown
}

// cityProvince maps lower-cased Dutch city names to their province.
// Unlisted cities resolve to ProvinceUnknown rather than failing the
// office-location extraction.
var cityProvince = map[string]string{
	"amsterdam":      "Noord-Holland",
	"haarlem":        "Noord-Holland",
	"zaandam":        "Noord-Holland",
	"alkmaar":        "Noord-Holland",
	"hilversum":      "Noord-Holland",
	"amstelveen":     "Noord-Holland",
	"hoofddorp":      "Noord-Holland",
	"rotterdam":      "Zuid-Holland",
	"den haag":       "Zuid-Holland",
	"'s-gravenhage":  "Zuid-Holland",
	"leiden":         "Zuid-Holland",
	"delft":          "Zuid-Holland",
	"dordrecht":      "Zuid-Holland",
	"zoetermeer":     "Zuid-Holland",
	"gouda":          "Zuid-Holland",
	"utrecht":        "Utrecht",
	"amersfoort":     "Utrecht",
	"nieuwegein":     "Utrecht",
	"veenendaal":     "Utrecht",
	"eindhoven":      "Noord-Brabant",
	"tilburg":        "Noord-Brabant",
	"breda":          "Noord-Brabant",
	"den bosch":      "Noord-Brabant",
	"'s-hertogenbosch": "Noord-Brabant",
	"helmond":        "Noord-Brabant",
	"oss":            "Noord-Brabant",
	"roosendaal":     "Noord-Brabant",
	"groningen":      "Groningen",
	"leeuwarden":     "Friesland",
	"drachten":       "Friesland",
	"heerenveen":     "Friesland",
	"sneek":          "Friesland",
	"assen":          "Drenthe",
	"emmen":          "Drenthe",
	"hoogeveen":      "Drenthe",
	"zwolle":         "Overijssel",
	"enschede":       "Overijssel",
	"hengelo":        "Overijssel",
	"deventer":       "Overijssel",
	"almelo":         "Overijssel",
	"nijmegen":       "Gelderland",
	"arnhem":         "Gelderland",
	"apeldoorn":      "Gelderland",
	"ede":            "Gelderland",
	"doetinchem":     "Gelderland",
	"zutphen":        "Gelderland",
	"tiel":           "Gelderland",
	"almere":         "Flevoland",
	"lelystad":       "Flevoland",
	"maastricht":     "Limburg",
	"heerlen":        "Limburg",
	"venlo":          "Limburg",
	"roermond":       "Limburg",
	"sittard":        "Limburg",
	"weert":          "Limburg",
	"middelburg":     "Zeeland",
	"vlissingen":     "Zeeland",
	"goes":           "Zeeland",
	"terneuzen":      "Zeeland",
	"nieuwkoop":      "Zuid-Holland",
	"barneveld":      "Gelderland",
	"waalwijk":       "Noord-Brabant",
}

var dutchTitle = cases.Title(language.Dutch)

// City canonicalizes a raw city token to title case.
func City(raw string) string {
	return dutchTitle.String(strings.ToLower(strings.TrimSpace(raw)))
}

// ProvinceForCity looks up the province for a Dutch city, returning
// ProvinceUnknown for unmapped cities.
func ProvinceForCity(city string) string {
	if p, ok := cityProvince[strings.ToLower(strings.TrimSpace(city))]; ok {
		return p
	}
	return ProvinceUnknown
}

// KnownCity reports whether the city appears in the lookup table.
func KnownCity(city string) bool {
	_, ok := cityProvince[strings.ToLower(strings.TrimSpace(city))]
	return ok
}

// sectorSynonyms maps lower-cased Dutch/English synonyms to canonical
// sector tags. Matching a raw token against this table is the only way
// a sector enters a profile.
var sectorSynonyms = map[string]string{
	"logistiek":       "logistiek",
	"transport":       "logistiek",
	"warehouse":       "logistiek",
	"magazijn":        "logistiek",
	"distributie":     "logistiek",
	"horeca":          "horeca",
	"hospitality":     "horeca",
	"restaurant":      "horeca",
	"hotel":           "horeca",
	"catering":        "horeca",
	"zorg":            "zorg",
	"healthcare":      "zorg",
	"verpleging":      "zorg",
	"ggz":             "zorg",
	"welzijn":         "zorg",
	"techniek":        "techniek",
	"technical":       "techniek",
	"engineering":     "techniek",
	"installatie":     "techniek",
	"werktuigbouw":    "techniek",
	"office":          "office",
	"kantoor":         "office",
	"administratie":   "office",
	"backoffice":      "office",
	"secretarieel":    "office",
	"finance":         "finance",
	"financieel":      "finance",
	"accounting":      "finance",
	"boekhouding":     "finance",
	"marketing":       "marketing",
	"communicatie":    "marketing",
	"sales":           "marketing",
	"retail":          "retail",
	"winkel":          "retail",
	"verkoop":         "retail",
	"industrie":       "industrie",
	"productie":       "productie",
	"manufacturing":   "industrie",
	"bouw":            "bouw",
	"construction":    "bouw",
	"aannemer":        "bouw",
	"infra":           "bouw",
	"it":              "it",
	"ict":             "it",
	"software":        "it",
	"developer":       "it",
	"data":            "it",
	"hr":              "hr",
	"human resources": "hr",
	"recruitment":     "hr",
	"legal":           "legal",
	"juridisch":       "legal",
	"recht":           "legal",
	"onderwijs":       "onderwijs",
	"education":       "onderwijs",
	"leraar":          "onderwijs",
	"docent":          "onderwijs",
	"overheid":        "overheid",
	"government":      "overheid",
	"publieke sector": "overheid",
	"agri":            "agri",
	"agrarisch":       "agri",
	"tuinbouw":        "agri",
}

// Sector maps a raw sector token to its canonical tag. The second
// return is false when the token is not a known sector; callers decide
// whether to keep it under an "other" bucket or drop the candidate.
func Sector(raw string) (string, bool) {
	s, ok := sectorSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	return s, ok
}

// SectorKeywords returns the synonym table keyed by canonical sector,
// for extractors that scan page text for sector mentions.
func SectorKeywords() map[string][]string {
	out := make(map[string][]string)
	for syn, canon := range sectorSynonyms {
		out[canon] = append(out[canon], syn)
	}
	return out
}

// GeoFocus maps a free-text coverage phrase onto the geo-focus enum.
// Phrases are checked from widest to narrowest reach so "internationaal
// actief, landelijke dekking" resolves to international.
func GeoFocus(raw string) (model.GeoFocus, bool) {
	text := strings.ToLower(raw)

	international := []string{"internationaal", "international", "europa", "europe", "wereldwijd", "worldwide", "global"}
	national := []string{"landelijk", "landelijke dekking", "heel nederland", "nationaal", "national", "door heel nederland"}
	regional := []string{"regionaal", "regional", "regio ", "in de regio"}
	local := []string{"lokaal", "lokale", "local", "bij jou in de buurt"}

	for _, kw := range international {
		if strings.Contains(text, kw) {
			return model.GeoFocusInternational, true
		}
	}
	for _, kw := range national {
		if strings.Contains(text, kw) {
			return model.GeoFocusNational, true
		}
	}
	for _, kw := range regional {
		if strings.Contains(text, kw) {
			return model.GeoFocusRegional, true
		}
	}
	for _, kw := range local {
		if strings.Contains(text, kw) {
			return model.GeoFocusLocal, true
		}
	}
	return "", false
}

// CAO maps a raw CAO phrase to the CAO type enum. ABU wins over NBBU
// when both appear, matching the fixed decision order of the extractor.
func CAO(raw string) model.CAOType {
	text := strings.ToLower(raw)
	switch {
	case strings.Contains(text, "abu"):
		return model.CAOTypeABU
	case strings.Contains(text, "nbbu"):
		return model.CAOTypeNBBU
	case strings.Contains(text, "eigen cao"):
		return model.CAOTypeEigenCAO
	default:
		return model.CAOTypeOnbekend
	}
}

// Key produces the canonical dedup key for list entries: lower-cased
// with whitespace collapsed. Two entries with the same key are the same
// entry.
func Key(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}
