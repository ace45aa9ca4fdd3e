package accumulate

import (
	"sort"
	"time"

	"github.com/inhuren/agency-scraper/internal/model"
	"github.com/inhuren/agency-scraper/internal/normalize"
)

// Finalize closes a profile after the last merge: provinces get their
// canonical names, a sector cannot be both core and secondary, list
// fields are sorted so two runs over the same pages produce identical
// output, and the run stamp is set. Evidence keeps first-sighting order.
func Finalize(p *model.AgencyProfile, runID string) {
	for i, region := range p.RegionsServed {
		p.RegionsServed[i] = normalize.Province(region)
	}
	p.RegionsServed = dedupeByKey(p.RegionsServed)

	core := map[string]bool{}
	for _, s := range p.SectorsCore {
		core[normalize.Key(s)] = true
	}
	secondary := p.SectorsSecondary[:0]
	for _, s := range p.SectorsSecondary {
		if !core[normalize.Key(s)] {
			secondary = append(secondary, s)
		}
	}
	p.SectorsSecondary = secondary
	if len(p.SectorsSecondary) == 0 {
		p.SectorsSecondary = nil
	}

	if p.HQProvince == "" && p.HQCity != "" {
		if prov := normalize.ProvinceForCity(p.HQCity); prov != normalize.ProvinceUnknown {
			p.HQProvince = prov
		}
	}

	sort.Strings(p.RegionsServed)
	sort.Strings(p.SectorsCore)
	sort.Strings(p.SectorsSecondary)
	sort.Strings(p.RoleLevels)
	sort.Strings(p.CustomerSegments)
	sort.Strings(p.FocusSegments)
	sort.Strings(p.Certifications)
	sort.Strings(p.Membership)
	sort.Strings(p.ReviewSources)
	sort.Slice(p.OfficeLocations, func(i, j int) bool {
		return p.OfficeLocations[i].City < p.OfficeLocations[j].City
	})

	p.RunID = runID
	p.CollectedAt = time.Now().UTC()
}

func dedupeByKey(list []string) []string {
	seen := map[string]bool{}
	out := list[:0]
	for _, item := range list {
		key := normalize.Key(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
