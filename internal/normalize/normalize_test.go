package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inhuren/agency-scraper/internal/model"
)

func TestProvince(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "canonical passthrough", raw: "Noord-Holland", want: "Noord-Holland"},
		{name: "abbreviation", raw: "NH", want: "Noord-Holland"},
		{name: "lowercase with space", raw: "zuid holland", want: "Zuid-Holland"},
		{name: "frisian spelling", raw: "Fryslân", want: "Friesland"},
		{name: "short brabant", raw: "brabant", want: "Noord-Brabant"},
		{name: "unknown token", raw: "Vlaanderen", want: ProvinceUnknown},
		{name: "empty", raw: "", want: ProvinceUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Province(tt.raw))
		})
	}
}

func TestProvinceForCity(t *testing.T) {
	tests := []struct {
		city string
		want string
	}{
		{city: "Amsterdam", want: "Noord-Holland"},
		{city: "eindhoven", want: "Noord-Brabant"},
		{city: "DEN HAAG", want: "Zuid-Holland"},
		{city: "'s-Hertogenbosch", want: "Noord-Brabant"},
		{city: "Parijs", want: ProvinceUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.city, func(t *testing.T) {
			assert.Equal(t, tt.want, ProvinceForCity(tt.city))
		})
	}
}

func TestCity(t *testing.T) {
	assert.Equal(t, "Den Haag", City("  den haag "))
	assert.Equal(t, "Amsterdam", City("AMSTERDAM"))
}

func TestSector(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{raw: "Transport", want: "logistiek", ok: true},
		{raw: "healthcare", want: "zorg", ok: true},
		{raw: "ICT", want: "it", ok: true},
		{raw: "hospitality", want: "horeca", ok: true},
		{raw: "ruimtevaart", want: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Sector(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSectorKeywordsCoversCanonicalTags(t *testing.T) {
	kw := SectorKeywords()
	assert.Contains(t, kw, "logistiek")
	assert.Contains(t, kw["logistiek"], "magazijn")
	assert.Contains(t, kw["zorg"], "verpleging")
}

func TestGeoFocus(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.GeoFocus
		ok   bool
	}{
		{name: "national dutch", raw: "landelijke dekking", want: model.GeoFocusNational, ok: true},
		{name: "whole country", raw: "wij werken door heel Nederland", want: model.GeoFocusNational, ok: true},
		{name: "international beats national", raw: "internationaal actief, landelijke dekking", want: model.GeoFocusInternational, ok: true},
		{name: "regional", raw: "sterk in de regio Twente", want: model.GeoFocusRegional, ok: true},
		{name: "local", raw: "lokale vacatures bij jou in de buurt", want: model.GeoFocusLocal, ok: true},
		{name: "no signal", raw: "wij zijn een uitzendbureau", want: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GeoFocus(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCAO(t *testing.T) {
	assert.Equal(t, model.CAOTypeABU, CAO("wij volgen de ABU-cao"))
	assert.Equal(t, model.CAOTypeNBBU, CAO("aangesloten bij NBBU"))
	assert.Equal(t, model.CAOTypeABU, CAO("ABU en NBBU"))
	assert.Equal(t, model.CAOTypeEigenCAO, CAO("wij hanteren een eigen cao"))
	assert.Equal(t, model.CAOTypeOnbekend, CAO("arbeidsvoorwaarden"))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "werving en selectie", Key("  Werving   en  Selectie "))
	assert.Equal(t, Key("Logistiek"), Key("logistiek"))
}
