package categorize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inhuren/agency-scraper/internal/model"
)

func TestCategorize(t *testing.T) {
	c := New(nil)

	tests := []struct {
		url      string
		want     model.PageCategory
		excluded bool
	}{
		{url: "https://www.example.nl/", want: model.CategoryIdentity},
		{url: "https://www.example.nl/over-ons", want: model.CategoryIdentity},
		{url: "https://www.example.nl/contact", want: model.CategoryContact},
		{url: "https://www.example.nl/vestigingen/amsterdam", want: model.CategoryLocations},
		{url: "https://www.example.nl/werkgevers", want: model.CategoryContact},
		{url: "https://www.example.nl/voor-werkgevers", want: model.CategoryContact},
		{url: "https://www.example.nl/opdrachtgevers", want: model.CategoryContact},
		{url: "https://www.example.nl/werkgevers/uitzenden", want: model.CategoryContact},
		{url: "https://www.example.nl/diensten/uitzenden", want: model.CategoryServices},
		{url: "https://www.example.nl/branches/logistiek", want: model.CategorySectors},
		{url: "https://www.example.nl/privacy", want: model.CategoryLegal},
		{url: "https://www.example.nl/tarieven", want: model.CategoryPricing},
		{url: "https://www.example.nl/mijn-omgeving", want: model.CategoryDigital},
		{url: "https://www.example.nl/ervaringen", want: model.CategoryReviews},
		{url: "https://www.example.nl/nieuws/artikel", want: model.CategoryNews},
		{url: "https://www.example.nl/willekeurig", want: model.CategoryUncategorized},
		{url: "https://www.example.nl/vacature/heftruckchauffeur-ede", want: model.CategoryUncategorized, excluded: true},
		{url: "https://www.example.nl/login", want: model.CategoryUncategorized, excluded: true},
		{url: "https://www.example.nl/inloggen", want: model.CategoryUncategorized, excluded: true},
		{url: "https://www.example.nl/nieuws/page/2", want: model.CategoryUncategorized, excluded: true},
		{url: "https://www.example.nl/nieuws?page=3", want: model.CategoryUncategorized, excluded: true},
		{url: "https://www.example.nl/blog/tag/uitzendwerk", want: model.CategoryUncategorized, excluded: true},
		{url: "https://www.example.nl/category/nieuws", want: model.CategoryUncategorized, excluded: true},
		{url: "https://www.example.nl/author/jan", want: model.CategoryUncategorized, excluded: true},
		{url: "https://www.example.nl/en/about", want: model.CategoryUncategorized, excluded: true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, excluded := c.Categorize(tt.url)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.excluded, excluded)
		})
	}
}

func TestCategoryPriorityOrder(t *testing.T) {
	c := New(nil)
	// Matches both identity (/over) and contact (/contact); identity is
	// earlier in the priority order.
	got, _ := c.Categorize("https://www.example.nl/over-ons/contact")
	assert.Equal(t, model.CategoryIdentity, got)
}

func TestApply(t *testing.T) {
	c := New(nil)
	result := &model.DiscoveryResult{
		BaseURL: "https://www.example.nl",
		URLs: []model.DiscoveredURL{
			{URL: "https://www.example.nl/over-ons", Source: "sitemap"},
			{URL: "https://www.example.nl/contact", Source: "sitemap"},
			{URL: "https://www.example.nl/vacature/x", Source: "sitemap"},
			{URL: "https://www.example.nl/iets-anders", Source: "sitemap"},
		},
	}

	c.Apply(result, 15)

	assert.Equal(t, 3, result.TotalURLs, "excluded URL is dropped")
	assert.Equal(t, []string{"https://www.example.nl/over-ons"}, result.ByCategory[model.CategoryIdentity])
	assert.Equal(t, []string{"https://www.example.nl/contact"}, result.ByCategory[model.CategoryContact])
	assert.Equal(t, []string{"https://www.example.nl/iets-anders"}, result.Uncategorized)

	require.NotEmpty(t, result.Recommended)
	assert.Equal(t, "https://www.example.nl", result.Recommended[0], "homepage first")
}

func TestRecommendCapsAndSpreads(t *testing.T) {
	c := New(nil)
	result := &model.DiscoveryResult{
		BaseURL: "https://www.example.nl",
		URLs: []model.DiscoveredURL{
			{URL: "https://www.example.nl/over-ons"},
			{URL: "https://www.example.nl/over-geschiedenis"},
			{URL: "https://www.example.nl/organisatie"},
			{URL: "https://www.example.nl/contact"},
			{URL: "https://www.example.nl/vestigingen"},
			{URL: "https://www.example.nl/diensten"},
			{URL: "https://www.example.nl/branches"},
			{URL: "https://www.example.nl/privacy"},
			{URL: "https://www.example.nl/tarieven"},
		},
	}

	c.Apply(result, 5)

	assert.Len(t, result.Recommended, 5)
	// At most two per category: the longest identity page never makes it.
	assert.NotContains(t, result.Recommended, "https://www.example.nl/over-geschiedenis")
	// The homepage plus earlier categories win over later ones.
	assert.Contains(t, result.Recommended, "https://www.example.nl/contact")
}

func TestApplyCapsReportLists(t *testing.T) {
	c := New(nil)
	result := &model.DiscoveryResult{BaseURL: "https://www.example.nl"}
	for i := 0; i < 40; i++ {
		result.URLs = append(result.URLs, model.DiscoveredURL{
			URL: fmt.Sprintf("https://www.example.nl/nieuws/artikel-%02d", i),
		})
	}
	for i := 0; i < 60; i++ {
		result.URLs = append(result.URLs, model.DiscoveredURL{
			URL: fmt.Sprintf("https://www.example.nl/overig-%02d", i),
		})
	}

	c.Apply(result, 15)

	assert.Len(t, result.ByCategory[model.CategoryNews], 30)
	assert.Len(t, result.Uncategorized, 50)
}

func TestRecommendPrefersShortestURLs(t *testing.T) {
	c := New(nil)
	result := &model.DiscoveryResult{
		BaseURL: "https://www.example.nl",
		URLs: []model.DiscoveredURL{
			{URL: "https://www.example.nl/diensten/uitzenden/flexwerk/meer"},
			{URL: "https://www.example.nl/diensten/uitzenden"},
			{URL: "https://www.example.nl/diensten"},
		},
	}

	c.Apply(result, 15)

	require.Equal(t, []string{
		"https://www.example.nl/diensten",
		"https://www.example.nl/diensten/uitzenden",
		"https://www.example.nl/diensten/uitzenden/flexwerk/meer",
	}, result.ByCategory[model.CategoryServices])
	// Homepage first, then the two shortest services URLs.
	assert.Equal(t, []string{
		"https://www.example.nl",
		"https://www.example.nl/diensten",
		"https://www.example.nl/diensten/uitzenden",
	}, result.Recommended)
}

func TestPathMatcher(t *testing.T) {
	m := NewPathMatcher(nil)
	assert.True(t, m.IsExcluded("https://www.example.nl/vacature/chauffeur/123"))
	assert.True(t, m.IsExcluded("https://www.example.nl/zoeken/resultaten"))
	assert.False(t, m.IsExcluded("https://www.example.nl/vacatures/werkgevers"))
	assert.False(t, m.IsExcluded("https://www.example.nl/werkgevers"))
	assert.True(t, m.IsExcluded("://bad url"))

	custom := NewPathMatcher([]string{"/intern/*"})
	assert.True(t, custom.IsExcluded("https://www.example.nl/intern/a/b"))
	assert.False(t, custom.IsExcluded("https://www.example.nl/vacature/x"))
}
