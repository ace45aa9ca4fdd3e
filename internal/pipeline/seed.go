package pipeline

import (
	"github.com/inhuren/agency-scraper/internal/model"
	"github.com/inhuren/agency-scraper/internal/registry"
)

// seedFindings converts the registry's hand-verified seed facts into
// canonical findings applied before any page is visited. Seeded scalars
// therefore survive anything an extractor proposes later.
func seedFindings(agency registry.Agency) []model.Finding {
	var findings []model.Finding
	seed := func(field string, value any) {
		findings = append(findings, model.Finding{
			Field:     field,
			Value:     value,
			SourceURL: agency.WebsiteURL,
			Tier:      model.TierDeterministic,
			Canonical: true,
		})
	}

	s := agency.Seeds
	if s.KvKNumber != "" {
		seed(model.FieldKvKNumber, s.KvKNumber)
	}
	if s.LegalName != "" {
		seed(model.FieldLegalName, s.LegalName)
	}
	if s.HQCity != "" {
		seed(model.FieldHQCity, s.HQCity)
	}
	if s.HQProvince != "" {
		seed(model.FieldHQProvince, s.HQProvince)
	}
	if s.CAOType != "" {
		seed(model.FieldCAOType, s.CAOType)
	}
	if agency.GeoFocus != "" {
		seed(model.FieldGeoFocus, agency.GeoFocus)
	}
	if u := agency.EmployersPageURL(); u != "" {
		seed(model.FieldEmployersPageURL, u)
	}
	if u := agency.ContactFormURL(); u != "" {
		seed(model.FieldContactFormURL, u)
	}

	for _, m := range s.Membership {
		seed(model.FieldMembership, m)
	}
	for _, svc := range s.Services {
		seed(model.FieldService(svc), true)
	}
	for _, sector := range s.Sectors {
		seed(model.FieldSectorsCore, sector)
	}
	for _, region := range s.Regions {
		seed(model.FieldRegionsServed, region)
	}
	for _, segment := range s.Segments {
		seed(model.FieldCustomerSegments, segment)
	}
	return findings
}
