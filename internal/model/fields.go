package model

// Field keys used by findings. They mirror the JSON names on
// AgencyProfile; nested flags use a dotted path. The accumulator is the
// only component that interprets them.
const (
	FieldLegalName  = "legal_name"
	FieldLogoURL    = "logo_url"
	FieldKvKNumber  = "kvk_number"
	FieldHQCity     = "hq_city"
	FieldHQProvince = "hq_province"

	FieldContactPhone     = "contact_phone"
	FieldContactEmail     = "contact_email"
	FieldContactFormURL   = "contact_form_url"
	FieldEmployersPageURL = "employers_page_url"

	FieldRegionsServed   = "regions_served"
	FieldOfficeLocations = "office_locations"
	FieldGeoFocus        = "geo_focus_type"

	FieldSectorsCore      = "sectors_core"
	FieldSectorsSecondary = "sectors_secondary"
	FieldRoleLevels       = "role_levels"
	FieldCustomerSegments = "customer_segments"
	FieldFocusSegments    = "focus_segments"
	FieldVolumeSpec       = "volume_specialisation"

	FieldCAOType                  = "cao_type"
	FieldMembership               = "membership"
	FieldCertifications           = "certifications"
	FieldPhaseSystem              = "phase_system"
	FieldUsesInlenersbeloning     = "uses_inlenersbeloning"
	FieldInlenersbeloningFromDay1 = "applies_inlenersbeloning_from_day1"

	FieldPricingModel        = "pricing_model"
	FieldPricingTransparency = "pricing_transparency"
	FieldOmrekenfactorMin    = "omrekenfactor_min"
	FieldOmrekenfactorMax    = "omrekenfactor_max"
	FieldAvgMarkupFactor     = "avg_markup_factor"
	FieldAvgHourlyRateLow    = "avg_hourly_rate_low"
	FieldAvgHourlyRateHigh   = "avg_hourly_rate_high"
	FieldExamplePricingHint  = "example_pricing_hint"
	FieldNoCureNoPay         = "no_cure_no_pay"
	FieldMinAssignmentWeeks  = "min_assignment_duration_weeks"
	FieldMinHoursPerWeek     = "min_hours_per_week"

	FieldTakeoverFreeHours = "takeover_policy.free_takeover_hours"
	FieldTakeoverFreeWeeks = "takeover_policy.free_takeover_weeks"
	FieldTakeoverFeeModel  = "takeover_policy.overname_fee_model"
	FieldTakeoverFeeHint   = "takeover_policy.overname_fee_hint"

	FieldReviewRating       = "review_rating"
	FieldReviewCount        = "review_count"
	FieldReviewSources      = "review_sources"
	FieldExternalReviewURLs = "external_review_urls"
)

// FieldService returns the dotted field key for a service flag, e.g.
// FieldService("msp") == "services.msp".
func FieldService(flag string) string { return "services." + flag }

// FieldDigital returns the dotted field key for a digital capability flag.
func FieldDigital(flag string) string { return "digital_capabilities." + flag }

// FieldAI returns the dotted field key for an AI capability flag.
func FieldAI(flag string) string { return "ai_capabilities." + flag }
