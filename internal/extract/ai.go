package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/inhuren/agency-scraper/internal/config"
	"github.com/inhuren/agency-scraper/internal/model"
	"github.com/inhuren/agency-scraper/pkg/anthropic"
)

const aiSystemPrompt = `You are a data extraction assistant for Dutch staffing agency websites.
You receive the markdown content of one page and a list of field names.
Return a single JSON object containing ONLY the requested fields for which
the page provides clear evidence. Omit fields the page says nothing about.
Never guess. String values stay in the page's own wording; booleans are
true only on explicit evidence; lists contain short lowercase tags.
Respond with the JSON object and nothing else.`

// maxAIInputRunes caps how much page content goes into one request.
const maxAIInputRunes = 24000

// AIExtractor fills fields the deterministic tier left empty by asking
// a model to read the page. Its findings are tier 2: the accumulator
// never lets them displace a deterministic value.
type AIExtractor struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func NewAI(client anthropic.Client, cfg config.AnthropicConfig) *AIExtractor {
	return &AIExtractor{client: client, model: cfg.Model, maxTokens: int64(cfg.MaxTokens)}
}

// Extract asks for exactly the missing fields. A response that fails to
// parse even after repair yields an error, not partial findings.
func (a *AIExtractor) Extract(ctx context.Context, agency string, page *model.Page, missing []string) ([]model.Finding, error) {
	if len(missing) == 0 {
		return nil, nil
	}
	content := page.Markdown
	if content == "" {
		content = page.Text
	}
	if runes := []rune(content); len(runes) > maxAIInputRunes {
		content = string(runes[:maxAIInputRunes])
	}

	prompt := fmt.Sprintf("Fields to extract:\n%s\n\nPage URL: %s\n\nPage content:\n%s",
		strings.Join(missing, "\n"), page.URL, content)

	temp := 0.0
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		System:      aiSystemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrap(err, "extract: ai request")
	}
	resp.Usage.LogCost(a.model, agency)

	fields, err := parseAIResponse(resp.Text())
	if err != nil {
		return nil, eris.Wrapf(err, "extract: ai response for %s", page.URL)
	}

	allowed := make(map[string]bool, len(missing))
	for _, f := range missing {
		allowed[f] = true
	}

	var out []model.Finding
	for field, value := range fields {
		if !allowed[field] {
			zap.L().Debug("extract: ai returned unrequested field",
				zap.String("field", field), zap.String("url", page.URL))
			continue
		}
		if value == nil {
			continue
		}
		out = append(out, model.Finding{
			Field:     field,
			Value:     value,
			SourceURL: page.URL,
			Tier:      model.TierAI,
		})
	}
	return out, nil
}

// parseAIResponse tolerates fenced code blocks and slightly broken JSON.
func parseAIResponse(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err == nil {
		return fields, nil
	}
	repaired, err := jsonrepair.JSONRepair(text)
	if err != nil {
		return nil, eris.Wrap(err, "repair json")
	}
	if err := json.Unmarshal([]byte(repaired), &fields); err != nil {
		return nil, eris.Wrap(err, "unmarshal repaired json")
	}
	return fields, nil
}
