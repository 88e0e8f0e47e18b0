package rss

import (
	"net/http"
	"strings"

	"github.com/lysyi3m/news-rss/app/content"
)

// Request is the request-scoped state shared by resolution, aggregation and
// serialization. It must not be reused across HTTP requests.
type Request struct {
	Path     string
	HasQuery bool
	base     string // scheme://host[/prefix] that relative URLs are resolved against
	capture  *content.CaptureCache
}

func (s *Service) NewRequest(r *http.Request) *Request {
	return &Request{
		Path:     r.URL.Path,
		HasQuery: r.URL.RawQuery != "" || r.URL.ForceQuery,
		base:     s.requestBase(r),
		capture:  content.NewCaptureCache(s.store),
	}
}

func (s *Service) requestBase(r *http.Request) string {
	if s.options.BaseURL != "" {
		return strings.TrimRight(s.options.BaseURL, "/")
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// AbsoluteURL resolves an already component-encoded servlet path against the
// request and restricts the result to the RFC 3986 ASCII repertoire.
func (r *Request) AbsoluteURL(encoded string) string {
	return asciiSafe(r.base + encoded)
}
