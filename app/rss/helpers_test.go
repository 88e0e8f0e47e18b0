package rss

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/news-rss/app/content"
)

type memoryBooks struct {
	books []*content.Book
}

func (m *memoryBooks) GetBook(servletPath string) *content.Book {
	var owner *content.Book
	for _, book := range m.books {
		if book.PathPrefix != "" && !strings.HasPrefix(servletPath, book.PathPrefix+"/") {
			continue
		}
		if owner == nil || len(book.PathPrefix) > len(owner.PathPrefix) {
			owner = book
		}
	}
	return owner
}

func (m *memoryBooks) GetBookByName(name string) *content.Book {
	for _, book := range m.books {
		if book.Name == name {
			return book
		}
	}
	return nil
}

// memoryStore serves fully populated pages; meta captures get the bodies stripped.
type memoryStore struct {
	books      *memoryBooks
	pages      map[string]*content.Page
	bodyPages  map[string]*content.Page // overrides for body captures
	metaCalls  int
	bodyCalls  int
	existCalls []string
}

func newMemoryStore(books *memoryBooks) *memoryStore {
	return &memoryStore{
		books:     books,
		pages:     make(map[string]*content.Page),
		bodyPages: make(map[string]*content.Page),
	}
}

func (m *memoryStore) Exists(ctx context.Context, servletPath string) bool {
	m.existCalls = append(m.existCalls, servletPath)
	book := m.books.GetBook(servletPath)
	if book == nil {
		return false
	}
	_, ok := m.pages[book.Name+":"+strings.TrimPrefix(servletPath, book.PathPrefix)]
	return ok
}

func (m *memoryStore) CaptureMeta(ctx context.Context, ref content.PageRef) (*content.Page, error) {
	m.metaCalls++
	page, ok := m.pages[ref.String()]
	if !ok {
		return nil, content.ErrPageNotFound
	}

	meta := *page
	meta.Elements = nil
	meta.ElementsByID = nil
	for _, element := range page.Elements {
		switch e := element.(type) {
		case *content.News:
			news := *e
			news.Content = ""
			meta.AddElement(&news)
		case *content.Section:
			section := *e
			section.Content = ""
			meta.AddElement(&section)
		}
	}
	return &meta, nil
}

func (m *memoryStore) CaptureBody(ctx context.Context, ref content.PageRef) (*content.Page, error) {
	m.bodyCalls++
	if page, ok := m.bodyPages[ref.String()]; ok {
		return page, nil
	}
	page, ok := m.pages[ref.String()]
	if !ok {
		return nil, content.ErrPageNotFound
	}
	return page, nil
}

func (m *memoryStore) addPage(book *content.Book, pagePath, title string, children ...string) *content.Page {
	page := &content.Page{
		Ref:   content.PageRef{Book: book, Path: pagePath},
		Title: title,
	}
	for _, child := range children {
		page.Children = append(page.Children, content.PageRef{Book: book, Path: child})
	}
	m.pages[page.Ref.String()] = page
	return page
}

func addNews(page *content.Page, id, title, description, body, pubDate string) *content.News {
	date, err := time.Parse(time.RFC3339, pubDate)
	if err != nil {
		panic(err)
	}
	news := &content.News{
		ID:          id,
		Title:       title,
		Description: description,
		Content:     body,
		PubDate:     date,
		Page:        page.Ref,
	}
	page.AddElement(news)
	return news
}

type fixture struct {
	book    *content.Book
	books   *memoryBooks
	store   *memoryStore
	service *Service
}

func newFixture(params map[string]string) *fixture {
	book := &content.Book{
		Name:       "docs",
		Title:      "Documentation",
		PathPrefix: "/docs",
		Params:     params,
	}
	books := &memoryBooks{books: []*content.Book{book}}
	store := newMemoryStore(books)
	service := NewService(books, store, NewViewAdapter(content.NewsViewName, content.NewNewsView()), Options{
		Generator: "news-rss test",
	})
	return &fixture{book: book, books: books, store: store, service: service}
}

func (f *fixture) request(target string) *Request {
	return f.service.NewRequest(httptest.NewRequest("GET", target, nil))
}

// render prepares and writes the feed at target, failing the test on any error.
func (f *fixture) render(t *testing.T, target string) string {
	t.Helper()

	req := f.request(target)
	feed, err := f.service.Prepare(context.Background(), req)
	if err != nil {
		t.Fatalf("Failed to prepare feed: %v", err)
	}

	var buf bytes.Buffer
	if err := f.service.Write(context.Background(), &buf, feed); err != nil {
		t.Fatalf("Failed to write feed: %v", err)
	}
	return buf.String()
}
