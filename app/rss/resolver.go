package rss

import (
	"context"
	"path"
	"strings"

	"github.com/lysyi3m/news-rss/app/content"
)

// Resolve maps a feed request to the page it syndicates. It never fails
// loudly: anything that does not address a servable page is simply not found.
func (s *Service) Resolve(ctx context.Context, req *Request) (content.PageRef, bool) {
	if req.HasQuery {
		return content.PageRef{}, false
	}

	requestPath := req.Path
	if !strings.HasSuffix(requestPath, FeedSuffix) || path.Clean(requestPath) != requestPath {
		return content.PageRef{}, false
	}
	basePath := strings.TrimSuffix(requestPath, FeedSuffix)

	// The last extension is the default when no candidate exists.
	var pagePath string
	for _, extension := range content.SourceExtensions {
		pagePath = basePath + extension
		if !content.IsProtected(pagePath) && req.capture.Exists(ctx, pagePath) {
			break
		}
	}
	if content.IsProtected(pagePath) {
		return content.PageRef{}, false
	}

	book := s.books.GetBook(pagePath)
	if book == nil {
		return content.PageRef{}, false
	}

	return content.PageRef{
		Book: book,
		Path: strings.TrimPrefix(pagePath, book.PathPrefix),
	}, true
}
