// Package render provides a client for a browserless/Chrome rendering
// service, used for sites whose content only exists after JavaScript
// execution.
package render

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
)

// Client renders a URL in a headless browser and returns the final HTML.
type Client interface {
	Render(ctx context.Context, targetURL string) (string, error)
}

// Option configures the render client.
type Option func(*restClient)

// WithTimeout sets the per-render timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *restClient) {
		c.http.SetTimeout(d)
	}
}

// WithWait sets how long the browser waits after load before the DOM is
// captured, for pages that hydrate asynchronously.
func WithWait(d time.Duration) Option {
	return func(c *restClient) {
		c.waitMs = int(d.Milliseconds())
	}
}

type restClient struct {
	http   *resty.Client
	token  string
	waitMs int
}

// NewClient creates a render client against a browserless-compatible
// service at baseURL. token may be empty for unauthenticated instances.
func NewClient(baseURL, token string, opts ...Option) Client {
	c := &restClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(60 * time.Second),
		token:  token,
		waitMs: 2500,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type contentRequest struct {
	URL         string       `json:"url"`
	GotoOptions *gotoOptions `json:"gotoOptions,omitempty"`
	WaitForMs   int          `json:"waitFor,omitempty"`
}

type gotoOptions struct {
	WaitUntil string `json:"waitUntil,omitempty"`
}

func (c *restClient) Render(ctx context.Context, targetURL string) (string, error) {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(contentRequest{
			URL:         targetURL,
			GotoOptions: &gotoOptions{WaitUntil: "networkidle2"},
			WaitForMs:   c.waitMs,
		})
	if c.token != "" {
		req.SetQueryParam("token", c.token)
	}

	resp, err := req.Post("/content")
	if err != nil {
		return "", eris.Wrapf(err, "render: request for %s", targetURL)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", eris.Errorf("render: unexpected status %d for %s: %s",
			resp.StatusCode(), targetURL, resp.String())
	}

	html := resp.String()
	if html == "" {
		return "", eris.Errorf("render: empty document for %s", targetURL)
	}
	return html, nil
}
