package categorize

import (
	"net/url"
	"path"
	"strings"
)

// defaultExcludePatterns drop URLs that never carry profile facts:
// individual vacancy pages, search results, pagination, login and
// registration pages, blog archives, and non-Dutch language trees.
var defaultExcludePatterns = []string{
	"/vacature/*",
	"/vacatures/detail/*",
	"/zoeken/*",
	"/search/*",
	"/page/*",
	"/tag/*",
	"/tags/*",
	"/category/*",
	"/categorie/*",
	"/author/*",
	"/auteur/*",
	"/login*",
	"/inloggen*",
	"/register*",
	"/registreren*",
	"/aanmelden*",
	"/wp-login*",
	"/en/*",
	"/de/*",
	"/pl/*",
	"/werken-bij/*",
	"/sollicite*",
}

// PathMatcher filters URLs based on glob-style path patterns.
// Uses path.Match from stdlib for proper glob matching, plus a segmented
// match so "/vacature/*" matches multi-level paths like "/vacature/a/b".
type PathMatcher struct {
	patterns []string
}

// NewPathMatcher creates a PathMatcher from glob patterns. Falls back to
// the default exclusion set if none are provided.
func NewPathMatcher(patterns []string) *PathMatcher {
	if len(patterns) == 0 {
		patterns = defaultExcludePatterns
	}
	return &PathMatcher{patterns: patterns}
}

// Patterns returns the configured patterns.
func (m *PathMatcher) Patterns() []string {
	return m.patterns
}

// IsExcluded checks whether a URL matches any exclude pattern.
// Paginated URLs ("?page=N") are always excluded.
func (m *PathMatcher) IsExcluded(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	if u.Query().Has("page") {
		return true
	}
	return m.isPathExcluded(u.Path)
}

// isPathExcluded tries every pattern at every path segment boundary, so
// "/page/*" also drops "/nieuws/page/2" and "/tag/*" drops "/blog/tag/x".
func (m *PathMatcher) isPathExcluded(urlPath string) bool {
	urlPath = strings.ToLower(urlPath)
	for _, pattern := range m.patterns {
		pattern = strings.ToLower(pattern)
		for i := 0; i < len(urlPath); i++ {
			if urlPath[i] != '/' {
				continue
			}
			if matchSegmented(pattern, urlPath[i:]) {
				return true
			}
		}
	}
	return false
}

// matchSegmented performs glob matching where a pattern like
// "/vacature/*" matches both "/vacature/x" and "/vacature/a/b/c", and a
// pattern like "/login*" also matches nested paths under "/login".
func matchSegmented(pattern, urlPath string) bool {
	if ok, _ := path.Match(pattern, urlPath); ok {
		return true
	}

	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if urlPath == prefix || strings.HasPrefix(urlPath, prefix+"/") {
			return true
		}
	} else if strings.HasSuffix(pattern, "*") {
		if strings.HasPrefix(urlPath, strings.TrimSuffix(pattern, "*")) {
			return true
		}
	}

	return false
}
