package accumulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inhuren/agency-scraper/internal/model"
)

func det(field string, value any, source string) model.Finding {
	return model.Finding{Field: field, Value: value, SourceURL: source, Tier: model.TierDeterministic}
}

func canon(field string, value any, source string) model.Finding {
	f := det(field, value, source)
	f.Canonical = true
	return f
}

func newAcc() *Accumulator {
	return New(model.NewProfile("test-id", "Voorbeeld", "https://www.voorbeeld.nl"))
}

func TestScalarFillGapFirstWriterWins(t *testing.T) {
	acc := newAcc()

	acc.Apply(det(model.FieldKvKNumber, "11111111", "https://www.voorbeeld.nl/a"))
	acc.Apply(det(model.FieldKvKNumber, "22222222", "https://www.voorbeeld.nl/b"))

	assert.Equal(t, "11111111", acc.Profile().KvKNumber)
	assert.Equal(t, 1, acc.Accepted())
	assert.Equal(t, []string{"https://www.voorbeeld.nl/a"}, acc.Profile().EvidenceURLs)
}

func TestCanonicalOverridesOnce(t *testing.T) {
	acc := newAcc()

	acc.Apply(det(model.FieldKvKNumber, "11111111", "https://www.voorbeeld.nl/over-ons"))
	acc.Apply(canon(model.FieldKvKNumber, "22222222", "https://www.voorbeeld.nl/privacy"))
	assert.Equal(t, "22222222", acc.Profile().KvKNumber)

	// A second canonical disagreement does not flip the value again.
	acc.Apply(canon(model.FieldKvKNumber, "33333333", "https://www.voorbeeld.nl/voorwaarden"))
	assert.Equal(t, "22222222", acc.Profile().KvKNumber)
}

func TestCanonicalSeedIsNotDisplaced(t *testing.T) {
	acc := newAcc()

	// Registry seeds are applied first and marked canonical.
	acc.Apply(canon(model.FieldKvKNumber, "33333333", "registry"))
	acc.Apply(canon(model.FieldKvKNumber, "44444444", "https://www.voorbeeld.nl/privacy"))

	assert.Equal(t, "33333333", acc.Profile().KvKNumber)
}

func TestBooleanMonotonicOR(t *testing.T) {
	acc := newAcc()

	acc.Apply(det("services.uitzenden", true, "https://www.voorbeeld.nl/diensten"))
	acc.Apply(det("services.uitzenden", false, "https://www.voorbeeld.nl/over-ons"))

	assert.True(t, acc.Profile().Services.Uitzenden)
}

func TestListUnionNormalizedKeyDedup(t *testing.T) {
	acc := newAcc()

	acc.Apply(det(model.FieldCertifications, "SNA", "https://www.voorbeeld.nl/a"))
	acc.Apply(det(model.FieldCertifications, "sna", "https://www.voorbeeld.nl/b"))
	acc.Apply(det(model.FieldCertifications, "NEN-4400-1", "https://www.voorbeeld.nl/b"))

	assert.Equal(t, []string{"SNA", "NEN-4400-1"}, acc.Profile().Certifications)
}

func TestIdempotent(t *testing.T) {
	acc := newAcc()
	findings := []model.Finding{
		det(model.FieldContactEmail, "info@voorbeeld.nl", "https://www.voorbeeld.nl/contact"),
		det("services.payrolling", true, "https://www.voorbeeld.nl/diensten"),
		det(model.FieldSectorsCore, "logistiek", "https://www.voorbeeld.nl/sectoren"),
	}

	acc.ApplyAll(findings)
	first := *acc.Profile()
	firstAccepted := acc.Accepted()

	acc.ApplyAll(findings)
	assert.Equal(t, first.ContactEmail, acc.Profile().ContactEmail)
	assert.Equal(t, first.SectorsCore, acc.Profile().SectorsCore)
	assert.Equal(t, firstAccepted, acc.Accepted())
}

func TestOrderIndependentForNonConflicting(t *testing.T) {
	findings := []model.Finding{
		det(model.FieldContactPhone, "+31 20 123 4567", "https://www.voorbeeld.nl/contact"),
		det("services.uitzenden", true, "https://www.voorbeeld.nl/diensten"),
		det(model.FieldMembership, "ABU", "https://www.voorbeeld.nl/over-ons"),
		det(model.FieldOmrekenfactorMin, 1.8, "https://www.voorbeeld.nl/tarieven"),
	}

	forward := newAcc()
	forward.ApplyAll(findings)

	reversed := newAcc()
	for i := len(findings) - 1; i >= 0; i-- {
		reversed.Apply(findings[i])
	}

	assert.Equal(t, forward.Profile().ContactPhone, reversed.Profile().ContactPhone)
	assert.Equal(t, forward.Profile().Services, reversed.Profile().Services)
	assert.Equal(t, forward.Profile().Membership, reversed.Profile().Membership)
	assert.Equal(t, forward.Profile().OmrekenfactorMin, reversed.Profile().OmrekenfactorMin)
}

func TestOfficeMergeFillsSubFields(t *testing.T) {
	acc := newAcc()

	acc.Apply(det(model.FieldOfficeLocations,
		model.OfficeLocation{City: "Utrecht"}, "https://www.voorbeeld.nl/vestigingen"))
	acc.Apply(det(model.FieldOfficeLocations,
		model.OfficeLocation{City: "utrecht", Province: "Utrecht", Phone: "+31 30 123 4567"},
		"https://www.voorbeeld.nl/contact"))

	require.Len(t, acc.Profile().OfficeLocations, 1)
	office := acc.Profile().OfficeLocations[0]
	assert.Equal(t, "Utrecht", office.City)
	assert.Equal(t, "Utrecht", office.Province)
	assert.Equal(t, "+31 30 123 4567", office.Phone)
}

func TestEnumSentinelsCountAsEmpty(t *testing.T) {
	acc := newAcc()
	require.Equal(t, model.CAOTypeOnbekend, acc.Profile().CAOType)

	acc.Apply(det(model.FieldCAOType, model.CAOTypeNBBU, "https://www.voorbeeld.nl/cao"))
	assert.Equal(t, model.CAOTypeNBBU, acc.Profile().CAOType)

	acc.Apply(det(model.FieldCAOType, model.CAOTypeABU, "https://www.voorbeeld.nl/andere"))
	assert.Equal(t, model.CAOTypeNBBU, acc.Profile().CAOType, "populated enum is not overwritten")

	acc.Apply(det(model.FieldVolumeSpec, model.VolumePools, "https://www.voorbeeld.nl/flexpool"))
	assert.Equal(t, model.VolumePools, acc.Profile().VolumeSpecialisation)
}

func TestAITierFillsGapsOnly(t *testing.T) {
	acc := newAcc()

	acc.Apply(det(model.FieldContactEmail, "info@voorbeeld.nl", "https://www.voorbeeld.nl/contact"))
	acc.Apply(model.Finding{
		Field: model.FieldContactEmail, Value: "sales@voorbeeld.nl",
		SourceURL: "https://www.voorbeeld.nl/over-ons", Tier: model.TierAI,
	})
	assert.Equal(t, "info@voorbeeld.nl", acc.Profile().ContactEmail)

	acc.Apply(model.Finding{
		Field: model.FieldHQCity, Value: "Amsterdam",
		SourceURL: "https://www.voorbeeld.nl/over-ons", Tier: model.TierAI,
	})
	assert.Equal(t, "Amsterdam", acc.Profile().HQCity)
}

func TestAITierLooseJSONValues(t *testing.T) {
	acc := newAcc()

	acc.Apply(model.Finding{Field: model.FieldReviewCount, Value: float64(128), Tier: model.TierAI, SourceURL: "u"})
	acc.Apply(model.Finding{Field: model.FieldRoleLevels, Value: []any{"student", "starter"}, Tier: model.TierAI, SourceURL: "u"})
	acc.Apply(model.Finding{Field: "digital_capabilities.mobile_app", Value: true, Tier: model.TierAI, SourceURL: "u"})
	acc.Apply(model.Finding{
		Field: model.FieldOfficeLocations,
		Value: map[string]any{"city": "Breda", "province": "Noord-Brabant"},
		Tier:  model.TierAI, SourceURL: "u",
	})

	p := acc.Profile()
	assert.Equal(t, 128, p.ReviewCount)
	assert.Equal(t, []string{"student", "starter"}, p.RoleLevels)
	assert.True(t, p.DigitalCapabilities.MobileApp)
	require.Len(t, p.OfficeLocations, 1)
	assert.Equal(t, "Breda", p.OfficeLocations[0].City)
}

func TestUnknownFieldIgnored(t *testing.T) {
	acc := newAcc()
	acc.Apply(det("no_such_field", "x", "https://www.voorbeeld.nl"))
	assert.Equal(t, 0, acc.Accepted())
	assert.Empty(t, acc.Profile().EvidenceURLs)
}

func TestTriStateBooleans(t *testing.T) {
	acc := newAcc()
	require.Nil(t, acc.Profile().NoCureNoPay)

	acc.Apply(det(model.FieldNoCureNoPay, false, "https://www.voorbeeld.nl/a"))
	require.NotNil(t, acc.Profile().NoCureNoPay)
	assert.False(t, *acc.Profile().NoCureNoPay)

	// True evidence later upgrades an explicit false.
	acc.Apply(det(model.FieldNoCureNoPay, true, "https://www.voorbeeld.nl/b"))
	assert.True(t, *acc.Profile().NoCureNoPay)
}

func TestPhaseSystem(t *testing.T) {
	acc := newAcc()
	acc.Apply(det(model.FieldPhaseSystem, "3_fasen", "https://www.voorbeeld.nl/cao"))

	require.NotNil(t, acc.Profile().PhaseSystem)
	assert.Equal(t, []string{"A", "B", "C"}, acc.Profile().PhaseSystem.ABUPhases)

	acc.Apply(det(model.FieldPhaseSystem, "4_fasen", "https://www.voorbeeld.nl/andere"))
	assert.Empty(t, acc.Profile().PhaseSystem.NBBUPhases, "phase system is fill-gap")
}

func TestFinalize(t *testing.T) {
	acc := newAcc()
	acc.ApplyAll([]model.Finding{
		det(model.FieldSectorsCore, "logistiek", "u"),
		det(model.FieldSectorsSecondary, "Logistiek", "u"),
		det(model.FieldSectorsSecondary, "zorg", "u"),
		det(model.FieldRegionsServed, "NH", "u"),
		det(model.FieldRegionsServed, "noord-holland", "u"),
		det(model.FieldHQCity, "Eindhoven", "u"),
	})

	p := acc.Profile()
	Finalize(p, "run-1")

	assert.Equal(t, []string{"zorg"}, p.SectorsSecondary, "core sector removed from secondary")
	assert.Equal(t, []string{"Noord-Holland"}, p.RegionsServed, "abbreviation canonicalized and deduped")
	assert.Equal(t, "Noord-Brabant", p.HQProvince, "province derived from HQ city")
	assert.Equal(t, "run-1", p.RunID)
	assert.False(t, p.CollectedAt.IsZero())
}
