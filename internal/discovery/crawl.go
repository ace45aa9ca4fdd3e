package discovery

import (
	"net/url"
	"sync"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// crawl walks the site breadth-first from its homepage, bounded by
// depth and a per-level page cap. It is the fallback for sites without
// a usable sitemap.
func (d *Discoverer) crawl(base *url.URL) ([]string, error) {
	c := colly.NewCollector(
		colly.AllowedDomains(base.Hostname()),
		colly.MaxDepth(d.cfg.CrawlDepth),
		colly.UserAgent(d.userAgent),
	)
	if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 2}); err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		found    []string
		perLevel = make(map[int]int)
	)

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" {
			return
		}
		depth := e.Request.Depth

		mu.Lock()
		if perLevel[depth] >= d.cfg.CrawlPerLevel {
			mu.Unlock()
			return
		}
		perLevel[depth]++
		found = append(found, link)
		mu.Unlock()

		_ = e.Request.Visit(link)
	})

	c.OnError(func(r *colly.Response, err error) {
		zap.L().Debug("crawl error",
			zap.String("url", r.Request.URL.String()),
			zap.Error(err),
		)
	})

	if err := c.Visit(base.String()); err != nil {
		return found, err
	}
	c.Wait()
	return found, nil
}
