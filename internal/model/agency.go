package model

import "time"

// GeoFocus classifies the geographic reach of an agency.
type GeoFocus string

const (
	GeoFocusLocal         GeoFocus = "local"
	GeoFocusRegional      GeoFocus = "regional"
	GeoFocusNational      GeoFocus = "national"
	GeoFocusInternational GeoFocus = "international"
)

// CAOType is the collective labor agreement an agency operates under.
type CAOType string

const (
	CAOTypeABU      CAOType = "ABU"
	CAOTypeNBBU     CAOType = "NBBU"
	CAOTypeEigenCAO CAOType = "eigen_cao"
	CAOTypeOnbekend CAOType = "onbekend"
)

// PricingModel is how an agency bills clients.
type PricingModel string

const (
	PricingModelOmrekenfactor PricingModel = "omrekenfactor"
	PricingModelFixedMargin   PricingModel = "fixed_margin"
	PricingModelFixedFee      PricingModel = "fixed_fee"
	PricingModelUnknown       PricingModel = "unknown"
)

// PricingTransparency is how openly an agency publishes its rates.
type PricingTransparency string

const (
	PricingTransparencyPublicExamples PricingTransparency = "public_examples"
	PricingTransparencyExplainerOnly  PricingTransparency = "explainer_only"
	PricingTransparencyQuoteOnly      PricingTransparency = "quote_only"
	PricingTransparencyUnknown        PricingTransparency = "unknown"
)

// VolumeSpecialisation buckets the placement volumes an agency targets.
type VolumeSpecialisation string

const (
	VolumeAdHoc   VolumeSpecialisation = "ad_hoc_1_5"
	VolumePools   VolumeSpecialisation = "pools_5_50"
	VolumeMassa   VolumeSpecialisation = "massa_50_plus"
	VolumeUnknown VolumeSpecialisation = "unknown"
)

// TakeoverFeeModel is how an agency charges when a client hires a worker.
type TakeoverFeeModel string

const (
	TakeoverFeeNone       TakeoverFeeModel = "none"
	TakeoverFeeFlat       TakeoverFeeModel = "flat_fee"
	TakeoverFeePercentage TakeoverFeeModel = "percentage_salary"
	TakeoverFeeScaled     TakeoverFeeModel = "scaled"
	TakeoverFeeUnknown    TakeoverFeeModel = "unknown"
)

// OfficeLocation is a single branch office.
type OfficeLocation struct {
	City     string `json:"city"`
	Province string `json:"province,omitempty"`
	Street   string `json:"street,omitempty"`
	Postal   string `json:"postal,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Services is the fixed set of service capability flags. All default to
// false, meaning "not detected"; detection is monotonic across a run.
type Services struct {
	Uitzenden                bool `json:"uitzenden"`
	Detacheren               bool `json:"detacheren"`
	WervingSelectie          bool `json:"werving_selectie"`
	Payrolling               bool `json:"payrolling"`
	ZZPBemiddeling           bool `json:"zzp_bemiddeling"`
	VacaturebemiddelingOnly  bool `json:"vacaturebemiddeling_only"`
	InhouseServices          bool `json:"inhouse_services"`
	MSP                      bool `json:"msp"`
	RPO                      bool `json:"rpo"`
	ExecutiveSearch          bool `json:"executive_search"`
	OpleidenOntwikkelen      bool `json:"opleiden_ontwikkelen"`
	ReintegratieOutplacement bool `json:"reintegratie_outplacement"`
}

// PhaseSystem describes the CAO phase system an agency follows.
type PhaseSystem struct {
	ABUPhases  []string `json:"abu_phases,omitempty"`
	NBBUPhases []string `json:"nbbu_phases,omitempty"`
}

// TakeoverPolicy holds takeover (overname) terms.
type TakeoverPolicy struct {
	FreeTakeoverHours int              `json:"free_takeover_hours,omitempty"`
	FreeTakeoverWeeks int              `json:"free_takeover_weeks,omitempty"`
	FeeModel          TakeoverFeeModel `json:"overname_fee_model"`
	FeeHint           string           `json:"overname_fee_hint,omitempty"`
	ContractReference string           `json:"overname_contract_reference,omitempty"`
}

// DigitalCapabilities is the fixed set of digital capability flags.
type DigitalCapabilities struct {
	ClientPortal             bool `json:"client_portal"`
	CandidatePortal          bool `json:"candidate_portal"`
	MobileApp                bool `json:"mobile_app"`
	APIAvailable             bool `json:"api_available"`
	RealtimeVacancyFeed      bool `json:"realtime_vacancy_feed"`
	RealtimeAvailabilityFeed bool `json:"realtime_availability_feed"`
	SelfServiceContracting   bool `json:"self_service_contracting"`
}

// AICapabilities is the fixed set of AI capability flags.
type AICapabilities struct {
	InternalAIMatching   bool `json:"internal_ai_matching"`
	PredictivePlanning   bool `json:"predictive_planning"`
	ChatbotForCandidates bool `json:"chatbot_for_candidates"`
	ChatbotForClients    bool `json:"chatbot_for_clients"`
	AIScreening          bool `json:"ai_screening"`
}

// AgencyProfile is the accumulator target: one structured record per
// agency per scrape run. All non-identity fields are optional; a profile
// with many empty fields is a valid output.
type AgencyProfile struct {
	ID         string `json:"id"`
	AgencyName string `json:"agency_name"`
	WebsiteURL string `json:"website_url"`

	// Identity.
	LegalName  string `json:"legal_name,omitempty"`
	LogoURL    string `json:"logo_url,omitempty"`
	BrandGroup string `json:"brand_group,omitempty"`
	HQCity     string `json:"hq_city,omitempty"`
	HQProvince string `json:"hq_province,omitempty"`
	KvKNumber  string `json:"kvk_number,omitempty"`

	// Contact.
	ContactPhone     string `json:"contact_phone,omitempty"`
	ContactEmail     string `json:"contact_email,omitempty"`
	ContactFormURL   string `json:"contact_form_url,omitempty"`
	EmployersPageURL string `json:"employers_page_url,omitempty"`

	// Geography.
	RegionsServed   []string         `json:"regions_served,omitempty"`
	OfficeLocations []OfficeLocation `json:"office_locations,omitempty"`
	GeoFocus        GeoFocus         `json:"geo_focus_type,omitempty"`

	// Market positioning.
	SectorsCore      []string `json:"sectors_core,omitempty"`
	SectorsSecondary []string `json:"sectors_secondary,omitempty"`
	RoleLevels       []string `json:"role_levels,omitempty"`
	CompanySizeFit   []string `json:"company_size_fit,omitempty"`
	CustomerSegments []string `json:"customer_segments,omitempty"`
	FocusSegments    []string `json:"focus_segments,omitempty"`

	// Specialisation.
	ShiftTypesSupported  []string             `json:"shift_types_supported,omitempty"`
	VolumeSpecialisation VolumeSpecialisation `json:"volume_specialisation,omitempty"`
	TypicalUseCases      []string             `json:"typical_use_cases,omitempty"`

	// Services.
	Services Services `json:"services"`

	// Legal / compliance.
	CAOType                   CAOType      `json:"cao_type"`
	PhaseSystem               *PhaseSystem `json:"phase_system,omitempty"`
	InlenersbeloningFromDay1  *bool        `json:"applies_inlenersbeloning_from_day1,omitempty"`
	UsesInlenersbeloning      *bool        `json:"uses_inlenersbeloning,omitempty"`
	Certifications            []string     `json:"certifications,omitempty"`
	Membership                []string     `json:"membership,omitempty"`

	// Pricing & commercial conditions.
	PricingModel             PricingModel        `json:"pricing_model"`
	PricingTransparency      PricingTransparency `json:"pricing_transparency,omitempty"`
	OmrekenfactorMin         float64             `json:"omrekenfactor_min,omitempty"`
	OmrekenfactorMax         float64             `json:"omrekenfactor_max,omitempty"`
	ExamplePricingHint       string              `json:"example_pricing_hint,omitempty"`
	NoCureNoPay              *bool               `json:"no_cure_no_pay,omitempty"`
	MinAssignmentWeeks       int                 `json:"min_assignment_duration_weeks,omitempty"`
	MinHoursPerWeek          int                 `json:"min_hours_per_week,omitempty"`
	TakeoverPolicy           TakeoverPolicy      `json:"takeover_policy"`
	AvgHourlyRateLow         float64             `json:"avg_hourly_rate_low,omitempty"`
	AvgHourlyRateHigh        float64             `json:"avg_hourly_rate_high,omitempty"`
	AvgMarkupFactor          float64             `json:"avg_markup_factor,omitempty"`

	// Digital & AI capabilities.
	DigitalCapabilities DigitalCapabilities `json:"digital_capabilities"`
	AICapabilities      AICapabilities      `json:"ai_capabilities"`

	// Reputation.
	ReviewRating         float64  `json:"review_rating,omitempty"`
	ReviewCount          int      `json:"review_count,omitempty"`
	ReviewSources        []string `json:"review_sources,omitempty"`
	ExternalReviewURLs   []string `json:"external_review_urls,omitempty"`
	ReviewThemesPositive []string `json:"review_themes_positive,omitempty"`
	ReviewThemesNegative []string `json:"review_themes_negative,omitempty"`

	// Provenance.
	EvidenceURLs []string  `json:"evidence_urls"`
	CollectedAt  time.Time `json:"collected_at"`
	RunID        string    `json:"run_id,omitempty"`
}

// NewProfile creates an empty profile seeded with agency identity and
// the unknown sentinels for every enum field.
func NewProfile(id, name, websiteURL string) *AgencyProfile {
	return &AgencyProfile{
		ID:                   id,
		AgencyName:           name,
		WebsiteURL:           websiteURL,
		GeoFocus:             "",
		CAOType:              CAOTypeOnbekend,
		PricingModel:         PricingModelUnknown,
		VolumeSpecialisation: VolumeUnknown,
		TakeoverPolicy:       TakeoverPolicy{FeeModel: TakeoverFeeUnknown},
		CollectedAt:          time.Now().UTC(),
	}
}

// AddEvidence appends a URL to the evidence list if not already present.
// Order of first sighting is preserved.
func (p *AgencyProfile) AddEvidence(url string) {
	for _, u := range p.EvidenceURLs {
		if u == url {
			return
		}
	}
	p.EvidenceURLs = append(p.EvidenceURLs, url)
}
