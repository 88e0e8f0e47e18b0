package content

import "context"

const titleSeparator = " - "

// NewsView presents the news of a page and its descendants.
type NewsView struct{}

func NewNewsView() *NewsView {
	return &NewsView{}
}

func (v *NewsView) Title(ctx context.Context, page *Page) string {
	title := "News" + titleSeparator + page.Title
	if book := page.Ref.Book; book != nil && book.Title != "" && book.Title != page.Title {
		title += titleSeparator + book.Title
	}
	return title
}

func (v *NewsView) Description(page *Page) string {
	if page.Description != "" {
		return page.Description
	}
	return "News for " + page.Title
}

// Copyright prefers the page's own copyright over the book default.
func (v *NewsView) Copyright(ctx context.Context, page *Page) Copyright {
	if !page.Copyright.IsEmpty() {
		return page.Copyright
	}
	if page.Ref.Book != nil {
		return page.Ref.Book.Copyright
	}
	return Copyright{}
}
