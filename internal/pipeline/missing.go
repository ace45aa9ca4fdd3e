package pipeline

import "github.com/inhuren/agency-scraper/internal/model"

// missingFields lists the gap-fillable fields still empty on the
// profile. Only these are handed to the AI tier; flags and list fields
// stay deterministic-only because a model cannot reliably prove their
// absence.
func missingFields(p *model.AgencyProfile) []string {
	var missing []string
	add := func(field string, empty bool) {
		if empty {
			missing = append(missing, field)
		}
	}

	add(model.FieldLegalName, p.LegalName == "")
	add(model.FieldKvKNumber, p.KvKNumber == "")
	add(model.FieldHQCity, p.HQCity == "")
	add(model.FieldHQProvince, p.HQProvince == "")
	add(model.FieldContactPhone, p.ContactPhone == "")
	add(model.FieldContactEmail, p.ContactEmail == "")
	add(model.FieldCAOType, p.CAOType == "" || p.CAOType == model.CAOTypeOnbekend)
	add(model.FieldGeoFocus, p.GeoFocus == "")
	add(model.FieldPricingModel, p.PricingModel == "" || p.PricingModel == model.PricingModelUnknown)
	add(model.FieldOmrekenfactorMin, p.OmrekenfactorMin == 0)
	add(model.FieldOmrekenfactorMax, p.OmrekenfactorMax == 0)
	add(model.FieldAvgHourlyRateLow, p.AvgHourlyRateLow == 0)
	add(model.FieldAvgHourlyRateHigh, p.AvgHourlyRateHigh == 0)
	add(model.FieldMinAssignmentWeeks, p.MinAssignmentWeeks == 0)
	add(model.FieldMinHoursPerWeek, p.MinHoursPerWeek == 0)
	add(model.FieldTakeoverFeeModel, p.TakeoverPolicy.FeeModel == "" || p.TakeoverPolicy.FeeModel == model.TakeoverFeeUnknown)

	return missing
}
