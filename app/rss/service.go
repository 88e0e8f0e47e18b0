package rss

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lysyi3m/news-rss/app/content"
)

const (
	FeedSuffix  = ".rss"
	ContentType = "application/rss+xml"
	Docs        = "https://cyber.harvard.edu/rss/rss.html"
)

type Options struct {
	// DefaultView is the site's default view; other views are requested with ?view=.
	DefaultView string
	Generator   string
	// BaseURL replaces the request's scheme and host in absolute URLs when set.
	BaseURL  string
	Location *time.Location
}

type Service struct {
	books   content.BookRegistry
	store   content.Store
	view    *ViewAdapter
	options Options
}

func NewService(books content.BookRegistry, store content.Store, view *ViewAdapter, options Options) *Service {
	options.DefaultView = cmp.Or(options.DefaultView, content.DefaultViewName)
	options.Generator = cmp.Or(options.Generator, "news-rss")
	if options.Location == nil {
		options.Location = time.UTC
	}

	return &Service{
		books:   books,
		store:   store,
		view:    view,
		options: options,
	}
}

// Feed is the aggregated, truncated news of one request.
type Feed struct {
	Request *Request
	Page    *content.Page
	Channel ChannelConfig
	Items   []*content.News
}

// Prepare resolves the request and aggregates the page's news without writing anything.
func (s *Service) Prepare(ctx context.Context, req *Request) (*Feed, error) {
	ref, ok := s.Resolve(ctx, req)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, req.Path)
	}

	page, err := req.capture.CaptureMeta(ctx, ref)
	if err != nil {
		if errors.Is(err, content.ErrPageNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
		}
		return nil, fmt.Errorf("failed to capture page: %w", err)
	}

	channel, err := ParseChannelConfig(ref.Book)
	if err != nil {
		return nil, err
	}

	items, err := s.Aggregate(ctx, req, page, channel.MaxItems)
	if err != nil {
		return nil, err
	}

	return &Feed{
		Request: req,
		Page:    page,
		Channel: channel,
		Items:   items,
	}, nil
}

func (s *Service) formatDate(t time.Time) string {
	return t.In(s.options.Location).Format(time.RFC1123Z)
}

// FeedPath returns the feed address of a page.
func FeedPath(ref content.PageRef) string {
	return content.StripSourceExtension(ref.ServletPath()) + FeedSuffix
}
