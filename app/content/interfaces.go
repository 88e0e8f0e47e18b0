package content

import (
	"context"
	"errors"
)

var ErrPageNotFound = errors.New("page not found")

type BookRegistry interface {
	// GetBook returns the book owning servletPath by longest prefix, nil if none.
	GetBook(servletPath string) *Book
	GetBookByName(name string) *Book
}

// Store is a capture engine. Meta captures carry everything but element bodies.
type Store interface {
	Exists(ctx context.Context, servletPath string) bool
	CaptureMeta(ctx context.Context, ref PageRef) (*Page, error)
	CaptureBody(ctx context.Context, ref PageRef) (*Page, error)
}

// View supplies page-level text for a named presentation of pages.
type View interface {
	Title(ctx context.Context, page *Page) string
	Description(page *Page) string
	Copyright(ctx context.Context, page *Page) Copyright
}

var _ BookRegistry = (*BookCache)(nil)
var _ Store = (*FSStore)(nil)
var _ Store = (*CaptureCache)(nil)
var _ View = (*NewsView)(nil)
