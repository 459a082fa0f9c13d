package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a collection or resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures and 5xx responses.
	ErrNetwork = errors.New("network error")

	// ErrRequest is returned for 4xx responses other than 404.
	ErrRequest = errors.New("request rejected")
)

// NewHTTPClient creates an HTTP client with a standard timeout for service requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// URLEncode percent-encodes a string for use in URL queries.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }

// JoinURL appends path-escaped segments to base. Empty segments are skipped.
func JoinURL(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, s := range segments {
		if s == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// WithQuery appends the non-empty values of q to rawURL in sorted key order.
func WithQuery(rawURL string, q url.Values) string {
	for k, vs := range q {
		if len(vs) == 0 || (len(vs) == 1 && vs[0] == "") {
			q.Del(k)
		}
	}
	if len(q) == 0 {
		return rawURL
	}
	return rawURL + "?" + q.Encode()
}
