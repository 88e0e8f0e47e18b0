package rss

import (
	"context"

	"github.com/lysyi3m/news-rss/app/content"
)

// ViewAdapter binds the feed to the named view it interoperates with.
type ViewAdapter struct {
	view content.View
	name string
}

func NewViewAdapter(name string, view content.View) *ViewAdapter {
	return &ViewAdapter{view: view, name: name}
}

func (a *ViewAdapter) Name() string {
	return a.name
}

func (a *ViewAdapter) Title(ctx context.Context, page *content.Page) string {
	return a.view.Title(ctx, page)
}

func (a *ViewAdapter) Description(page *content.Page) string {
	return a.view.Description(page)
}

// Copyright returns the display form of the page copyright, empty when there is none.
func (a *ViewAdapter) Copyright(ctx context.Context, page *content.Page) string {
	return a.view.Copyright(ctx, page).String()
}
