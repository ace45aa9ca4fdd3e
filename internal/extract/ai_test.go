package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inhuren/agency-scraper/internal/config"
	"github.com/inhuren/agency-scraper/internal/model"
	"github.com/inhuren/agency-scraper/pkg/anthropic"
)

type stubAnthropicClient struct {
	reply   string
	lastReq anthropic.MessageRequest
}

func (s *stubAnthropicClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	s.lastReq = req
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: s.reply}},
	}, nil
}

func aiTestConfig() config.AnthropicConfig {
	return config.AnthropicConfig{Model: "claude-haiku-4-5-20251001", MaxTokens: 1024}
}

func TestAIExtractorFillsRequestedFields(t *testing.T) {
	stub := &stubAnthropicClient{reply: "```json\n" + `{
		"hq_city": "Amsterdam",
		"geo_focus_type": "national",
		"website_url": "https://injected.example"
	}` + "\n```"}

	ai := NewAI(stub, aiTestConfig())
	page := &model.Page{URL: "https://www.voorbeeld.nl/over-ons", Markdown: "# Over ons\nHoofdkantoor in Amsterdam."}

	findings, err := ai.Extract(context.Background(), "voorbeeld", page, []string{"hq_city", "geo_focus_type"})
	require.NoError(t, err)
	require.Len(t, findings, 2, "unrequested fields must be dropped")

	for _, f := range findings {
		assert.Equal(t, model.TierAI, f.Tier)
		assert.Equal(t, page.URL, f.SourceURL)
		assert.NotEqual(t, "website_url", f.Field)
	}

	assert.Contains(t, stub.lastReq.Messages[0].Content, "hq_city")
	assert.Contains(t, stub.lastReq.Messages[0].Content, "Hoofdkantoor in Amsterdam")
}

func TestAIExtractorRepairsBrokenJSON(t *testing.T) {
	// Trailing comma and unquoted key, the usual model output damage.
	stub := &stubAnthropicClient{reply: `{"hq_city": "Utrecht", contact_email: "info@voorbeeld.nl",}`}

	ai := NewAI(stub, aiTestConfig())
	page := &model.Page{URL: "https://www.voorbeeld.nl/contact", Text: "contact"}

	findings, err := ai.Extract(context.Background(), "voorbeeld", page, []string{"hq_city", "contact_email"})
	require.NoError(t, err)
	assert.Len(t, findings, 2)
}

func TestAIExtractorNoMissingFields(t *testing.T) {
	stub := &stubAnthropicClient{reply: "{}"}
	ai := NewAI(stub, aiTestConfig())

	findings, err := ai.Extract(context.Background(), "voorbeeld", &model.Page{URL: "https://www.voorbeeld.nl"}, nil)
	require.NoError(t, err)
	assert.Nil(t, findings)
	assert.Empty(t, stub.lastReq.Model, "no request should be made")
}

func TestAIExtractorGarbageResponse(t *testing.T) {
	stub := &stubAnthropicClient{reply: "Sorry, I cannot help with that."}
	ai := NewAI(stub, aiTestConfig())

	_, err := ai.Extract(context.Background(), "voorbeeld", &model.Page{URL: "https://www.voorbeeld.nl"}, []string{"hq_city"})
	assert.Error(t, err)
}
