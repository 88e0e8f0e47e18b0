package rss

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/lysyi3m/news-rss/app/content"
)

// Aggregate collects the news of page and its descendants from meta captures,
// newest first, keeping encounter order for equal dates, truncated to maxItems.
func (s *Service) Aggregate(ctx context.Context, req *Request, page *content.Page, maxItems int) ([]*content.News, error) {
	var all []*content.News
	visited := map[string]bool{page.Ref.String(): true}

	var walk func(p *content.Page) error
	walk = func(p *content.Page) error {
		all = append(all, p.News()...)

		for _, child := range p.Children {
			key := child.String()
			if visited[key] {
				continue
			}
			visited[key] = true

			childPage, err := req.capture.CaptureMeta(ctx, child)
			if err != nil {
				if errors.Is(err, content.ErrPageNotFound) {
					slog.Warn("Skipping missing child page", "page", p.Ref.String(), "child", key)
					continue
				}
				return fmt.Errorf("failed to capture child page %s: %w", key, err)
			}

			if err := walk(childPage); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(page); err != nil {
		return nil, err
	}

	slices.SortStableFunc(all, func(a, b *content.News) int {
		return b.PubDate.Compare(a.PubDate)
	})

	if len(all) > maxItems {
		all = all[:maxItems]
	}

	slog.Debug("News aggregated", "page", page.Ref.String(), "items", len(all), "max_items", maxItems)

	return all, nil
}
