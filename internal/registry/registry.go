// Package registry holds the curated list of staffing agencies to
// profile: base URLs, per-agency page lists with category tags, and
// seed facts applied before any page is visited.
package registry

import (
	_ "embed"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/inhuren/agency-scraper/internal/model"
)

//go:embed agencies.yaml
var embedded []byte

// Page is a curated page with the extraction categories it serves.
type Page struct {
	URL        string   `yaml:"url"`
	Categories []string `yaml:"categories"`
}

// Seeds are hand-verified facts applied to a profile before scraping.
// Seeded values are canonical: extractors never overwrite them.
type Seeds struct {
	KvKNumber  string   `yaml:"kvk_number"`
	LegalName  string   `yaml:"legal_name"`
	HQCity     string   `yaml:"hq_city"`
	HQProvince string   `yaml:"hq_province"`
	Membership []string `yaml:"membership"`
	CAOType    string   `yaml:"cao_type"`
	Services   []string `yaml:"services"`
	Sectors    []string `yaml:"sectors"`
	Regions    []string `yaml:"regions"`
	Segments   []string `yaml:"segments"`
}

// Agency is one registry entry.
type Agency struct {
	Key           string `yaml:"key"`
	Name          string `yaml:"name"`
	WebsiteURL    string `yaml:"website_url"`
	BrandGroup    string `yaml:"brand_group"`
	GeoFocus      string `yaml:"geo_focus"`
	EmployersPage string `yaml:"employers_page"`
	ContactForm   string `yaml:"contact_form"`
	AIEligible    bool   `yaml:"ai_eligible"`
	Pages         []Page `yaml:"pages"`
	Seeds         Seeds  `yaml:"seeds"`
}

// Host returns the hostname of the agency's website.
func (a Agency) Host() string {
	u, err := url.Parse(a.WebsiteURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// EmployersPageURL resolves the employers page path against the site base.
func (a Agency) EmployersPageURL() string {
	return joinPath(a.WebsiteURL, a.EmployersPage)
}

// ContactFormURL resolves the contact form path against the site base.
func (a Agency) ContactFormURL() string {
	return joinPath(a.WebsiteURL, a.ContactForm)
}

func joinPath(base, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http") {
		return path
	}
	return strings.TrimRight(base, "/") + path
}

// CategorizedPages maps the curated page list into typed discovered URLs.
func (a Agency) CategorizedPages() []model.DiscoveredURL {
	out := make([]model.DiscoveredURL, 0, len(a.Pages))
	for _, p := range a.Pages {
		cat := model.CategoryUncategorized
		if len(p.Categories) > 0 {
			cat = model.PageCategory(p.Categories[0])
		}
		out = append(out, model.DiscoveredURL{
			URL:      p.URL,
			Source:   "registry",
			Category: cat,
		})
	}
	return out
}

// Registry is the loaded agency list, keyed for lookup but preserving
// file order for iteration.
type Registry struct {
	agencies []Agency
	byKey    map[string]Agency
}

type registryFile struct {
	Agencies []Agency `yaml:"agencies"`
}

// Load parses the embedded agency registry.
func Load() (*Registry, error) {
	return Parse(embedded)
}

// Parse builds a registry from raw YAML, validating keys and URLs.
func Parse(raw []byte) (*Registry, error) {
	var f registryFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, eris.Wrap(err, "registry: parse yaml")
	}
	if len(f.Agencies) == 0 {
		return nil, eris.New("registry: no agencies defined")
	}

	byKey := make(map[string]Agency, len(f.Agencies))
	for _, a := range f.Agencies {
		if a.Key == "" || a.Name == "" {
			return nil, eris.Errorf("registry: agency missing key or name: %+v", a)
		}
		if _, dup := byKey[a.Key]; dup {
			return nil, eris.Errorf("registry: duplicate agency key %q", a.Key)
		}
		if _, err := url.ParseRequestURI(a.WebsiteURL); err != nil {
			return nil, eris.Wrapf(err, "registry: agency %q website url", a.Key)
		}
		byKey[a.Key] = a
	}

	return &Registry{agencies: f.Agencies, byKey: byKey}, nil
}

// All returns agencies in registry order.
func (r *Registry) All() []Agency {
	return r.agencies
}

// Get looks up an agency by key.
func (r *Registry) Get(key string) (Agency, bool) {
	a, ok := r.byKey[key]
	return a, ok
}

// Keys returns all agency keys in registry order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.agencies))
	for i, a := range r.agencies {
		keys[i] = a.Key
	}
	return keys
}
