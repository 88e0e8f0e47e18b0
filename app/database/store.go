package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lysyi3m/news-rss/app/content"
)

var _ content.Store = (*Store)(nil)

// Store serves captures from the SQLite index kept current by the sync tasks.
type Store struct {
	books content.BookRegistry
	pages PageRepository
}

func NewStore(books content.BookRegistry, pages PageRepository) *Store {
	return &Store{books: books, pages: pages}
}

func (s *Store) Exists(ctx context.Context, servletPath string) bool {
	book := s.books.GetBook(servletPath)
	if book == nil {
		return false
	}

	exists, err := s.pages.PageExists(ctx, book.Name, strings.TrimPrefix(servletPath, book.PathPrefix))
	if err != nil {
		slog.Warn("Failed to check page existence", "path", servletPath, "error", err)
		return false
	}
	return exists
}

func (s *Store) CaptureMeta(ctx context.Context, ref content.PageRef) (*content.Page, error) {
	return s.capture(ctx, ref, false)
}

func (s *Store) CaptureBody(ctx context.Context, ref content.PageRef) (*content.Page, error) {
	return s.capture(ctx, ref, true)
}

func (s *Store) capture(ctx context.Context, ref content.PageRef, withBodies bool) (*content.Page, error) {
	record, children, elements, err := s.pages.GetPage(ctx, ref.BookName(), ref.Path, withBodies)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s", content.ErrPageNotFound, ref.String())
	}

	page := &content.Page{
		Ref:         ref,
		Title:       record.Title,
		Description: record.Description,
		Copyright: content.Copyright{
			RightsHolder:    record.RightsHolder,
			DateCopyrighted: record.DateCopyrighted,
		},
	}

	for _, child := range children {
		book := ref.Book
		if child.Book != ref.BookName() {
			book = s.books.GetBookByName(child.Book)
		}
		if book == nil {
			slog.Warn("Skipping child in unknown book", "page", ref.String(), "book", child.Book, "child", child.Path)
			continue
		}
		page.Children = append(page.Children, content.PageRef{Book: book, Path: child.Path})
	}

	for _, element := range elements {
		if element.Kind != content.NewsKind {
			page.AddElement(&content.Section{ID: element.ID, Tag: element.Kind, Content: element.Body})
			continue
		}
		if element.PubDate == nil {
			return nil, fmt.Errorf("news %s on %s has no publish date", element.ID, ref.String())
		}
		page.AddElement(&content.News{
			ID:          element.ID,
			Title:       element.Title,
			Description: element.Description,
			Content:     element.Body,
			PubDate:     *element.PubDate,
			Book:        element.TargetBook,
			TargetPage:  element.TargetPage,
			View:        element.View,
			Element:     element.Anchor,
			Page:        ref,
		})
	}

	return page, nil
}
