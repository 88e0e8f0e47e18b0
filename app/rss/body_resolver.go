package rss

import (
	"context"
	"fmt"

	"github.com/lysyi3m/news-rss/app/content"
)

// ResolveBody body-captures the item's source page and returns the item's
// rendered body, which may be empty.
func (s *Service) ResolveBody(ctx context.Context, req *Request, item *content.News) (string, error) {
	page, err := req.capture.CaptureBody(ctx, item.Page)
	if err != nil {
		return "", fmt.Errorf("failed to recapture %s: %w", item.Page.String(), err)
	}

	element, ok := page.ElementsByID[item.ID]
	if !ok {
		return "", fmt.Errorf("%w: news %s not found when recapturing %s", ErrCaptureMismatch, item.ID, item.Page.String())
	}

	news, ok := element.(*content.News)
	if !ok {
		return "", fmt.Errorf("%w: element %s of %s is %s, not news", ErrCaptureMismatch, item.ID, item.Page.String(), element.Kind())
	}

	return news.Body(), nil
}
