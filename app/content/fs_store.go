package content

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// FSStore captures pages straight from the book content directories.
type FSStore struct {
	books  BookRegistry
	parser *PageParser
}

func NewFSStore(books BookRegistry) *FSStore {
	return &FSStore{
		books:  books,
		parser: NewPageParser(books),
	}
}

func (s *FSStore) Exists(ctx context.Context, servletPath string) bool {
	book := s.books.GetBook(servletPath)
	if book == nil {
		return false
	}

	ref := PageRef{Book: book, Path: strings.TrimPrefix(servletPath, book.PathPrefix)}
	info, err := os.Stat(s.FilePath(ref))
	return err == nil && info.Mode().IsRegular()
}

func (s *FSStore) CaptureMeta(ctx context.Context, ref PageRef) (*Page, error) {
	page, _, err := s.capture(ctx, ref, false)
	return page, err
}

func (s *FSStore) CaptureBody(ctx context.Context, ref PageRef) (*Page, error) {
	page, _, err := s.capture(ctx, ref, true)
	return page, err
}

// CaptureFile body-captures a page and reports the source file's modification time.
func (s *FSStore) CaptureFile(ctx context.Context, ref PageRef) (*Page, time.Time, error) {
	return s.capture(ctx, ref, true)
}

// FilePath maps a page to its source file.
func (s *FSStore) FilePath(ref PageRef) string {
	if ref.Book == nil {
		return ""
	}
	rel := strings.TrimPrefix(path.Clean("/"+ref.Path), "/")
	return filepath.Join(ref.Book.ContentDir, filepath.FromSlash(rel))
}

func (s *FSStore) capture(ctx context.Context, ref PageRef, withBodies bool) (*Page, time.Time, error) {
	select {
	case <-ctx.Done():
		return nil, time.Time{}, ctx.Err()
	default:
	}

	if ref.Book == nil {
		return nil, time.Time{}, fmt.Errorf("%w: %s has no book", ErrPageNotFound, ref.Path)
	}

	file := s.FilePath(ref)
	info, err := os.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, time.Time{}, fmt.Errorf("%w: %s", ErrPageNotFound, ref.String())
		}
		return nil, time.Time{}, fmt.Errorf("failed to stat page source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, time.Time{}, fmt.Errorf("%w: %s is not a file", ErrPageNotFound, ref.String())
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read page source: %w", err)
	}

	page, err := s.parser.Run(data, ref, withBodies)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to capture %s: %w", ref.String(), err)
	}

	return page, info.ModTime(), nil
}
