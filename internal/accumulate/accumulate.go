// Package accumulate owns the single merge contract between findings
// and the agency profile. Extractors never touch the profile directly;
// every candidate value passes through Apply so the policy — scalars
// fill gaps, booleans only ever turn on, lists union — holds uniformly.
package accumulate

import (
	"strings"

	"go.uber.org/zap"

	"github.com/inhuren/agency-scraper/internal/model"
	"github.com/inhuren/agency-scraper/internal/normalize"
)

// Accumulator merges findings into one profile. Not safe for concurrent
// use; the pipeline serializes merges per agency.
type Accumulator struct {
	profile *model.AgencyProfile

	// writers remembers which finding set each scalar, for conflict
	// logging and the tier rule.
	writers map[string]model.Finding
	// canonicalDone marks scalars already overridden once by a
	// canonical-source page.
	canonicalDone map[string]bool
	accepted      int
}

func New(profile *model.AgencyProfile) *Accumulator {
	return &Accumulator{
		profile:       profile,
		writers:       map[string]model.Finding{},
		canonicalDone: map[string]bool{},
	}
}

// Profile returns the profile under accumulation.
func (a *Accumulator) Profile() *model.AgencyProfile { return a.profile }

// Accepted returns how many findings changed the profile.
func (a *Accumulator) Accepted() int { return a.accepted }

// Apply merges one finding. Unknown fields and uncoercible values are
// logged and skipped; a bad finding never fails a run.
func (a *Accumulator) Apply(f model.Finding) {
	if a.applyField(f) {
		a.accepted++
		a.profile.AddEvidence(f.SourceURL)
	}
}

// ApplyAll merges findings in order.
func (a *Accumulator) ApplyAll(findings []model.Finding) {
	for _, f := range findings {
		a.Apply(f)
	}
}

func (a *Accumulator) applyField(f model.Finding) bool {
	p := a.profile
	switch f.Field {
	case model.FieldLegalName:
		return a.setString(f, &p.LegalName)
	case model.FieldLogoURL:
		return a.setString(f, &p.LogoURL)
	case model.FieldKvKNumber:
		return a.setString(f, &p.KvKNumber)
	case model.FieldHQCity:
		return a.setString(f, &p.HQCity)
	case model.FieldHQProvince:
		return a.setString(f, &p.HQProvince)
	case model.FieldContactPhone:
		return a.setString(f, &p.ContactPhone)
	case model.FieldContactEmail:
		return a.setString(f, &p.ContactEmail)
	case model.FieldContactFormURL:
		return a.setString(f, &p.ContactFormURL)
	case model.FieldEmployersPageURL:
		return a.setString(f, &p.EmployersPageURL)

	case model.FieldRegionsServed:
		return a.appendList(f, &p.RegionsServed)
	case model.FieldOfficeLocations:
		return a.appendOffice(f)
	case model.FieldGeoFocus:
		return a.setGeoFocus(f)

	case model.FieldSectorsCore:
		return a.appendList(f, &p.SectorsCore)
	case model.FieldSectorsSecondary:
		return a.appendList(f, &p.SectorsSecondary)
	case model.FieldRoleLevels:
		return a.appendList(f, &p.RoleLevels)
	case model.FieldCustomerSegments:
		return a.appendList(f, &p.CustomerSegments)
	case model.FieldFocusSegments:
		return a.appendList(f, &p.FocusSegments)
	case model.FieldVolumeSpec:
		return a.setVolume(f)

	case model.FieldCAOType:
		return a.setCAO(f)
	case model.FieldMembership:
		return a.appendList(f, &p.Membership)
	case model.FieldCertifications:
		return a.appendList(f, &p.Certifications)
	case model.FieldPhaseSystem:
		return a.setPhaseSystem(f)
	case model.FieldUsesInlenersbeloning:
		return a.setBoolPtr(f, &p.UsesInlenersbeloning)
	case model.FieldInlenersbeloningFromDay1:
		return a.setBoolPtr(f, &p.InlenersbeloningFromDay1)

	case model.FieldPricingModel:
		return a.setPricingModel(f)
	case model.FieldPricingTransparency:
		return a.setPricingTransparency(f)
	case model.FieldOmrekenfactorMin:
		return a.setFloat(f, &p.OmrekenfactorMin)
	case model.FieldOmrekenfactorMax:
		return a.setFloat(f, &p.OmrekenfactorMax)
	case model.FieldAvgMarkupFactor:
		return a.setFloat(f, &p.AvgMarkupFactor)
	case model.FieldAvgHourlyRateLow:
		return a.setFloat(f, &p.AvgHourlyRateLow)
	case model.FieldAvgHourlyRateHigh:
		return a.setFloat(f, &p.AvgHourlyRateHigh)
	case model.FieldExamplePricingHint:
		return a.setString(f, &p.ExamplePricingHint)
	case model.FieldNoCureNoPay:
		return a.setBoolPtr(f, &p.NoCureNoPay)
	case model.FieldMinAssignmentWeeks:
		return a.setInt(f, &p.MinAssignmentWeeks)
	case model.FieldMinHoursPerWeek:
		return a.setInt(f, &p.MinHoursPerWeek)

	case model.FieldTakeoverFreeHours:
		return a.setInt(f, &p.TakeoverPolicy.FreeTakeoverHours)
	case model.FieldTakeoverFreeWeeks:
		return a.setInt(f, &p.TakeoverPolicy.FreeTakeoverWeeks)
	case model.FieldTakeoverFeeModel:
		return a.setTakeoverFeeModel(f)
	case model.FieldTakeoverFeeHint:
		return a.setString(f, &p.TakeoverPolicy.FeeHint)

	case model.FieldReviewRating:
		return a.setFloat(f, &p.ReviewRating)
	case model.FieldReviewCount:
		return a.setInt(f, &p.ReviewCount)
	case model.FieldReviewSources:
		return a.appendList(f, &p.ReviewSources)
	case model.FieldExternalReviewURLs:
		return a.appendURLList(f, &p.ExternalReviewURLs)
	}

	if flag := a.boolFlag(f.Field); flag != nil {
		return a.setBool(f, flag)
	}

	zap.L().Debug("accumulate: unknown field", zap.String("field", f.Field))
	return false
}

// boolFlag resolves the dotted capability-flag fields onto their
// struct members.
func (a *Accumulator) boolFlag(field string) *bool {
	s := &a.profile.Services
	d := &a.profile.DigitalCapabilities
	ai := &a.profile.AICapabilities
	switch field {
	case "services.uitzenden":
		return &s.Uitzenden
	case "services.detacheren":
		return &s.Detacheren
	case "services.werving_selectie":
		return &s.WervingSelectie
	case "services.payrolling":
		return &s.Payrolling
	case "services.zzp_bemiddeling":
		return &s.ZZPBemiddeling
	case "services.vacaturebemiddeling_only":
		return &s.VacaturebemiddelingOnly
	case "services.inhouse_services":
		return &s.InhouseServices
	case "services.msp":
		return &s.MSP
	case "services.rpo":
		return &s.RPO
	case "services.executive_search":
		return &s.ExecutiveSearch
	case "services.opleiden_ontwikkelen":
		return &s.OpleidenOntwikkelen
	case "services.reintegratie_outplacement":
		return &s.ReintegratieOutplacement
	case "digital_capabilities.client_portal":
		return &d.ClientPortal
	case "digital_capabilities.candidate_portal":
		return &d.CandidatePortal
	case "digital_capabilities.mobile_app":
		return &d.MobileApp
	case "digital_capabilities.api_available":
		return &d.APIAvailable
	case "digital_capabilities.realtime_vacancy_feed":
		return &d.RealtimeVacancyFeed
	case "digital_capabilities.realtime_availability_feed":
		return &d.RealtimeAvailabilityFeed
	case "digital_capabilities.self_service_contracting":
		return &d.SelfServiceContracting
	case "ai_capabilities.internal_ai_matching":
		return &ai.InternalAIMatching
	case "ai_capabilities.predictive_planning":
		return &ai.PredictivePlanning
	case "ai_capabilities.chatbot_for_candidates":
		return &ai.ChatbotForCandidates
	case "ai_capabilities.chatbot_for_clients":
		return &ai.ChatbotForClients
	case "ai_capabilities.ai_screening":
		return &ai.AIScreening
	}
	return nil
}

// setScalar implements fill-gap plus the canonical override. current
// empty → write. Equal candidate → no-op. Different candidate from a
// canonical page that has not overridden this field yet → replace,
// logged. Anything else → logged conflict, keep current.
func (a *Accumulator) setScalar(f model.Finding, isEmpty func() bool, equal func() bool, write func()) bool {
	if isEmpty() {
		write()
		a.writers[f.Field] = f
		return true
	}
	if equal() {
		return false
	}
	prev := a.writers[f.Field]
	if f.Canonical && !prev.Canonical && !a.canonicalDone[f.Field] {
		zap.L().Info("accumulate: canonical override",
			zap.String("field", f.Field),
			zap.String("previous_source", prev.SourceURL),
			zap.String("source", f.SourceURL))
		write()
		a.writers[f.Field] = f
		a.canonicalDone[f.Field] = true
		return true
	}
	zap.L().Warn("accumulate: conflicting candidate ignored",
		zap.String("field", f.Field),
		zap.Any("kept", prev.Value),
		zap.Any("candidate", f.Value),
		zap.String("source", f.SourceURL))
	return false
}

func (a *Accumulator) setString(f model.Finding, target *string) bool {
	v, ok := asString(f.Value)
	if !ok || v == "" {
		return false
	}
	return a.setScalar(f,
		func() bool { return *target == "" },
		func() bool { return *target == v },
		func() { *target = v })
}

func (a *Accumulator) setFloat(f model.Finding, target *float64) bool {
	v, ok := asFloat(f.Value)
	if !ok || v == 0 {
		return false
	}
	return a.setScalar(f,
		func() bool { return *target == 0 },
		func() bool { return *target == v },
		func() { *target = v })
}

func (a *Accumulator) setInt(f model.Finding, target *int) bool {
	v, ok := asInt(f.Value)
	if !ok || v == 0 {
		return false
	}
	return a.setScalar(f,
		func() bool { return *target == 0 },
		func() bool { return *target == v },
		func() { *target = v })
}

// setBool is the monotonic OR for capability flags.
func (a *Accumulator) setBool(f model.Finding, target *bool) bool {
	v, ok := asBool(f.Value)
	if !ok || !v || *target {
		return false
	}
	*target = true
	return true
}

// setBoolPtr handles tri-state booleans where nil means unknown. A
// true candidate wins over false; false only fills an unknown.
func (a *Accumulator) setBoolPtr(f model.Finding, target **bool) bool {
	v, ok := asBool(f.Value)
	if !ok {
		return false
	}
	if *target == nil {
		*target = &v
		return true
	}
	if v && !**target {
		**target = true
		return true
	}
	return false
}

func (a *Accumulator) appendList(f model.Finding, target *[]string) bool {
	items, ok := asStringSlice(f.Value)
	if !ok {
		return false
	}
	changed := false
	for _, item := range items {
		if item == "" || containsKey(*target, item) {
			continue
		}
		*target = append(*target, item)
		changed = true
	}
	return changed
}

// appendURLList dedupes exactly instead of by normalized key; two URLs
// differing only in case can be distinct resources.
func (a *Accumulator) appendURLList(f model.Finding, target *[]string) bool {
	items, ok := asStringSlice(f.Value)
	if !ok {
		return false
	}
	changed := false
	for _, item := range items {
		if item == "" {
			continue
		}
		dup := false
		for _, existing := range *target {
			if existing == item {
				dup = true
				break
			}
		}
		if !dup {
			*target = append(*target, item)
			changed = true
		}
	}
	return changed
}

func (a *Accumulator) appendOffice(f model.Finding) bool {
	office, ok := asOffice(f.Value)
	if !ok || office.City == "" {
		return false
	}
	key := normalize.Key(office.City)
	for i, existing := range a.profile.OfficeLocations {
		if normalize.Key(existing.City) != key {
			continue
		}
		// Same office seen again: fill missing sub-fields only.
		changed := false
		if existing.Province == "" && office.Province != "" {
			a.profile.OfficeLocations[i].Province = office.Province
			changed = true
		}
		if existing.Street == "" && office.Street != "" {
			a.profile.OfficeLocations[i].Street = office.Street
			changed = true
		}
		if existing.Postal == "" && office.Postal != "" {
			a.profile.OfficeLocations[i].Postal = office.Postal
			changed = true
		}
		if existing.Phone == "" && office.Phone != "" {
			a.profile.OfficeLocations[i].Phone = office.Phone
			changed = true
		}
		return changed
	}
	a.profile.OfficeLocations = append(a.profile.OfficeLocations, office)
	return true
}

func (a *Accumulator) setGeoFocus(f model.Finding) bool {
	v, ok := asString(f.Value)
	if !ok {
		return false
	}
	focus := model.GeoFocus(v)
	switch focus {
	case model.GeoFocusLocal, model.GeoFocusRegional, model.GeoFocusNational, model.GeoFocusInternational:
	default:
		// Free-text phrase from the AI tier.
		var known bool
		if focus, known = normalize.GeoFocus(v); !known {
			return false
		}
	}
	return a.setScalar(f,
		func() bool { return a.profile.GeoFocus == "" },
		func() bool { return a.profile.GeoFocus == focus },
		func() { a.profile.GeoFocus = focus })
}

func (a *Accumulator) setCAO(f model.Finding) bool {
	v, ok := asString(f.Value)
	if !ok {
		return false
	}
	cao := model.CAOType(v)
	switch cao {
	case model.CAOTypeABU, model.CAOTypeNBBU, model.CAOTypeEigenCAO:
	default:
		if cao = normalize.CAO(v); cao == model.CAOTypeOnbekend {
			return false
		}
	}
	return a.setScalar(f,
		func() bool { return a.profile.CAOType == model.CAOTypeOnbekend || a.profile.CAOType == "" },
		func() bool { return a.profile.CAOType == cao },
		func() { a.profile.CAOType = cao })
}

func (a *Accumulator) setVolume(f model.Finding) bool {
	v, ok := asString(f.Value)
	if !ok {
		return false
	}
	vol := model.VolumeSpecialisation(v)
	switch vol {
	case model.VolumeAdHoc, model.VolumePools, model.VolumeMassa:
	default:
		return false
	}
	return a.setScalar(f,
		func() bool {
			return a.profile.VolumeSpecialisation == model.VolumeUnknown || a.profile.VolumeSpecialisation == ""
		},
		func() bool { return a.profile.VolumeSpecialisation == vol },
		func() { a.profile.VolumeSpecialisation = vol })
}

func (a *Accumulator) setPricingModel(f model.Finding) bool {
	v, ok := asString(f.Value)
	if !ok {
		return false
	}
	pm := model.PricingModel(v)
	switch pm {
	case model.PricingModelOmrekenfactor, model.PricingModelFixedMargin, model.PricingModelFixedFee:
	default:
		return false
	}
	return a.setScalar(f,
		func() bool {
			return a.profile.PricingModel == model.PricingModelUnknown || a.profile.PricingModel == ""
		},
		func() bool { return a.profile.PricingModel == pm },
		func() { a.profile.PricingModel = pm })
}

func (a *Accumulator) setPricingTransparency(f model.Finding) bool {
	v, ok := asString(f.Value)
	if !ok {
		return false
	}
	pt := model.PricingTransparency(v)
	switch pt {
	case model.PricingTransparencyPublicExamples, model.PricingTransparencyExplainerOnly, model.PricingTransparencyQuoteOnly:
	default:
		return false
	}
	return a.setScalar(f,
		func() bool {
			return a.profile.PricingTransparency == model.PricingTransparencyUnknown || a.profile.PricingTransparency == ""
		},
		func() bool { return a.profile.PricingTransparency == pt },
		func() { a.profile.PricingTransparency = pt })
}

func (a *Accumulator) setTakeoverFeeModel(f model.Finding) bool {
	v, ok := asString(f.Value)
	if !ok {
		return false
	}
	fm := model.TakeoverFeeModel(v)
	switch fm {
	case model.TakeoverFeeNone, model.TakeoverFeeFlat, model.TakeoverFeePercentage, model.TakeoverFeeScaled:
	default:
		return false
	}
	return a.setScalar(f,
		func() bool {
			return a.profile.TakeoverPolicy.FeeModel == model.TakeoverFeeUnknown || a.profile.TakeoverPolicy.FeeModel == ""
		},
		func() bool { return a.profile.TakeoverPolicy.FeeModel == fm },
		func() { a.profile.TakeoverPolicy.FeeModel = fm })
}

func (a *Accumulator) setPhaseSystem(f model.Finding) bool {
	v, ok := asString(f.Value)
	if !ok || a.profile.PhaseSystem != nil {
		return false
	}
	switch strings.ToLower(v) {
	case "3_fasen", "3 fasen":
		a.profile.PhaseSystem = &model.PhaseSystem{ABUPhases: []string{"A", "B", "C"}}
	case "4_fasen", "4 fasen":
		a.profile.PhaseSystem = &model.PhaseSystem{NBBUPhases: []string{"1", "2", "3", "4"}}
	default:
		return false
	}
	return true
}

func containsKey(list []string, item string) bool {
	key := normalize.Key(item)
	for _, existing := range list {
		if normalize.Key(existing) == key {
			return true
		}
	}
	return false
}
