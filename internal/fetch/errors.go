package fetch

import "fmt"

// ErrorKind classifies fetch failures so callers can decide between
// skipping a page, retrying later, or suspending a host.
type ErrorKind string

const (
	// KindRequest covers transport-level failures (DNS, TLS, timeouts).
	KindRequest ErrorKind = "request"
	// KindHTTPStatus covers non-retryable HTTP statuses (404, 410, 403).
	KindHTTPStatus ErrorKind = "http_status"
	// KindNotHTML is returned when the response is not an HTML document.
	KindNotHTML ErrorKind = "not_html"
	// KindTooLarge is returned when the body exceeds the size cap.
	KindTooLarge ErrorKind = "too_large"
	// KindSuspended is returned when the host breaker rejects the fetch.
	KindSuspended ErrorKind = "suspended"
	// KindParse covers failures parsing the returned document.
	KindParse ErrorKind = "parse"
)

// Error is a classified fetch failure for a single URL.
type Error struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: %s (status %d)", e.URL, e.Kind, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}
