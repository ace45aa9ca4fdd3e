// Package fetch retrieves agency pages politely: per-host rate
// limiting, retry with backoff on transient failures, a host breaker
// for dead sites, and a body size cap. Fetched pages come back parsed
// (DOM, plain text, markdown) ready for extraction.
package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/inhuren/agency-scraper/internal/config"
	"github.com/inhuren/agency-scraper/internal/model"
	"github.com/inhuren/agency-scraper/internal/resilience"
)

// Renderer obtains fully-rendered HTML for JavaScript-heavy pages.
type Renderer interface {
	Render(ctx context.Context, rawURL string) (string, error)
}

// Fetcher retrieves and parses pages over plain HTTP.
type Fetcher struct {
	client   *http.Client
	cfg      config.FetchConfig
	retry    resilience.RetryConfig
	breaker  *resilience.HostBreaker
	renderer Renderer

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Fetcher from config. renderer may be nil, in which case
// FetchRendered returns an error.
func New(cfg config.FetchConfig, renderer Renderer) *Fetcher {
	if cfg.TimeoutSecs <= 0 {
		cfg.TimeoutSecs = 10
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 5 * 1024 * 1024
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 1.0
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "AgencyProfileBot/1.0"
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: 4,
		MaxConnsPerHost:     8,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   time.Duration(cfg.TimeoutSecs) * time.Second,
			Transport: transport,
		},
		cfg:   cfg,
		retry: resilience.FromConfig(cfg.MaxAttempts, cfg.InitialBackoffMs, cfg.MaxBackoffMs, 0, -1),
		breaker: resilience.NewHostBreaker(resilience.BreakerConfig{
			FailureThreshold: cfg.BreakerThreshold,
			ResetTimeout:     time.Duration(cfg.BreakerResetSecs) * time.Second,
		}),
		renderer: renderer,
		limiters: make(map[string]*rate.Limiter),
	}
}

// limiterFor returns the host's rate limiter, creating one on first use.
func (f *Fetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(f.cfg.RequestsPerSec), 1)
		f.limiters[host] = lim
	}
	return lim
}

// Fetch retrieves rawURL statically and returns the parsed page.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{Kind: KindRequest, URL: rawURL, Err: err}
	}
	host := u.Hostname()

	if err := f.breaker.Allow(host); err != nil {
		return nil, &Error{Kind: KindSuspended, URL: rawURL, Err: err}
	}

	retry := f.retry
	retry.OnRetry = resilience.RetryLogger(host, "fetch")

	page, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*model.Page, error) {
		if err := f.limiterFor(host).Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetch: rate limiter wait")
		}
		return f.fetchOnce(ctx, rawURL)
	})
	f.breaker.Record(host, err)
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindRequest, URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "nl-NL,nl;q=0.9,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		// Transport errors are classified by resilience.IsTransient.
		return nil, eris.Wrapf(err, "fetch: %s", rawURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		te := &resilience.TransientError{
			Err:        eris.Errorf("fetch: http %d from %s", resp.StatusCode, rawURL),
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
		return nil, te
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Kind: KindHTTPStatus, URL: rawURL, StatusCode: resp.StatusCode}
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "" && !strings.Contains(ct, "html") && !strings.Contains(ct, "xml") {
		return nil, &Error{Kind: KindNotHTML, URL: rawURL, Err: eris.Errorf("content type %q", ct)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes+1))
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: read body of %s", rawURL)
	}
	if int64(len(body)) > f.cfg.MaxBodyBytes {
		return nil, &Error{Kind: KindTooLarge, URL: rawURL}
	}

	page, err := BuildPage(rawURL, resp.Request.URL.String(), resp.StatusCode, model.FetchModeStatic, string(body))
	if err != nil {
		return nil, err
	}

	zap.L().Debug("fetched page",
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
	)
	return page, nil
}

// FetchRaw retrieves rawURL with the same politeness rules but without
// HTML parsing or content-type checks. Used for robots.txt and sitemaps.
func (f *Fetcher) FetchRaw(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{Kind: KindRequest, URL: rawURL, Err: err}
	}
	host := u.Hostname()

	if err := f.breaker.Allow(host); err != nil {
		return nil, &Error{Kind: KindSuspended, URL: rawURL, Err: err}
	}

	body, err := resilience.DoVal(ctx, f.retry, func(ctx context.Context) ([]byte, error) {
		if err := f.limiterFor(host).Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetch: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, &Error{Kind: KindRequest, URL: rawURL, Err: err}
		}
		req.Header.Set("User-Agent", f.cfg.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, eris.Wrapf(err, "fetch: %s", rawURL)
		}
		defer resp.Body.Close() //nolint:errcheck

		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, &resilience.TransientError{
				Err:        eris.Errorf("fetch: http %d from %s", resp.StatusCode, rawURL),
				StatusCode: resp.StatusCode,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &Error{Kind: KindHTTPStatus, URL: rawURL, StatusCode: resp.StatusCode}
		}

		b, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes+1))
		if err != nil {
			return nil, eris.Wrapf(err, "fetch: read body of %s", rawURL)
		}
		if int64(len(b)) > f.cfg.MaxBodyBytes {
			return nil, &Error{Kind: KindTooLarge, URL: rawURL}
		}
		return b, nil
	})
	f.breaker.Record(host, err)
	return body, err
}

// FetchRendered retrieves rawURL through the rendering service.
func (f *Fetcher) FetchRendered(ctx context.Context, rawURL string) (*model.Page, error) {
	if f.renderer == nil {
		return nil, eris.New("fetch: no renderer configured")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{Kind: KindRequest, URL: rawURL, Err: err}
	}
	host := u.Hostname()
	if err := f.breaker.Allow(host); err != nil {
		return nil, &Error{Kind: KindSuspended, URL: rawURL, Err: err}
	}

	html, err := f.renderer.Render(ctx, rawURL)
	f.breaker.Record(host, err)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: render %s", rawURL)
	}
	return BuildPage(rawURL, rawURL, http.StatusOK, model.FetchModeRendered, html)
}

// BuildPage parses raw HTML into a Page with DOM, plain text, and
// markdown renditions.
func BuildPage(rawURL, finalURL string, status int, mode model.FetchMode, html string) (*model.Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{Kind: KindParse, URL: rawURL, Err: err}
	}

	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		// Markdown is only the AI-tier input; a conversion failure
		// should not lose the page.
		zap.L().Warn("markdown conversion failed", zap.String("url", rawURL), zap.Error(err))
		md = ""
	}

	textDoc := doc.Clone()
	textDoc.Find("script, style, noscript, svg").Remove()
	text := strings.Join(strings.Fields(textDoc.Text()), " ")

	return &model.Page{
		URL:        rawURL,
		FinalURL:   finalURL,
		Title:      strings.TrimSpace(doc.Find("title").First().Text()),
		StatusCode: status,
		Mode:       mode,
		Text:       text,
		Markdown:   md,
		Doc:        doc,
	}, nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
