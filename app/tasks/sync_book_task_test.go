package tasks

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/news-rss/app/content"
	"github.com/lysyi3m/news-rss/app/database"
)

// MockPageRepository keeps indexed pages in memory
type MockPageRepository struct {
	mu       sync.Mutex
	pages    map[string]*content.Page
	modTimes map[string]map[string]time.Time
	upserts  int
}

var _ database.PageRepository = (*MockPageRepository)(nil)

func NewMockPageRepository() *MockPageRepository {
	return &MockPageRepository{
		pages:    make(map[string]*content.Page),
		modTimes: make(map[string]map[string]time.Time),
	}
}

func (m *MockPageRepository) GetPage(ctx context.Context, book, path string, withBodies bool) (*database.PageRecord, []database.ChildRecord, []database.ElementRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	page, ok := m.pages[book+":"+path]
	if !ok {
		return nil, nil, nil, nil
	}
	return &database.PageRecord{Book: book, Path: path, Title: page.Title}, nil, nil, nil
}

func (m *MockPageRepository) GetPageModTimes(ctx context.Context, book string) (map[string]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	modTimes := make(map[string]time.Time)
	for path, modTime := range m.modTimes[book] {
		modTimes[path] = modTime
	}
	return modTimes, nil
}

func (m *MockPageRepository) GetPageCount(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pages), nil
}

func (m *MockPageRepository) PageExists(ctx context.Context, book, path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pages[book+":"+path]
	return ok, nil
}

func (m *MockPageRepository) UpsertPage(ctx context.Context, page *content.Page, modTime time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	book := page.Ref.BookName()
	if m.modTimes[book] == nil {
		m.modTimes[book] = make(map[string]time.Time)
	}
	m.pages[page.Ref.String()] = page
	m.modTimes[book][page.Ref.Path] = modTime
	m.upserts++
	return nil
}

func (m *MockPageRepository) DeletePage(ctx context.Context, book, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.pages, book+":"+path)
	delete(m.modTimes[book], path)
	return nil
}

func setupBook(t *testing.T, files map[string]string) (*content.BookCache, *content.FSStore, string) {
	t.Helper()

	dir := t.TempDir()
	bookFile := filepath.Join(dir, "docs.yml")
	if err := os.WriteFile(bookFile, []byte("title: Docs\npath_prefix: /docs\ncontent_dir: content\n"), 0644); err != nil {
		t.Fatal(err)
	}

	contentDir := filepath.Join(dir, "content")
	for name, data := range files {
		writeFile(t, filepath.Join(contentDir, filepath.FromSlash(name)), data)
	}
	if err := os.MkdirAll(contentDir, 0755); err != nil {
		t.Fatal(err)
	}

	books := content.NewBookCache(dir)
	if err := books.Run(); err != nil {
		t.Fatalf("Failed to load books: %v", err)
	}
	return books, content.NewFSStore(books), contentDir
}

func writeFile(t *testing.T, file, data string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestSyncBookTask(t *testing.T) {
	books, store, contentDir := setupBook(t, map[string]string{
		"index.html":       "<html><head><title>Index</title></head><body></body></html>",
		"guide/page.xhtml": "<html><head><title>Guide</title></head><body></body></html>",
		"plain":            "<html><head><title>Plain</title></head><body></body></html>",
		"header.inc.html":  "<p>fragment</p>",
		"notes.txt":        "not a page",
		".hidden/x.html":   "<html></html>",
	})
	repo := NewMockPageRepository()
	book := books.GetBookByName("docs")
	ctx := context.Background()

	result, err := NewSyncBookTask(book, store, repo).Sync(ctx)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.Updated != 3 || result.Unchanged != 0 || result.Deleted != 0 {
		t.Errorf("Unexpected first sync result: %+v", result)
	}
	for _, path := range []string{"/index.html", "/guide/page.xhtml", "/plain"} {
		if exists, _ := repo.PageExists(ctx, "docs", path); !exists {
			t.Errorf("Expected %s to be indexed", path)
		}
	}

	result, err = NewSyncBookTask(book, store, repo).Sync(ctx)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.Updated != 0 || result.Unchanged != 3 {
		t.Errorf("Expected unchanged pages to be skipped, got %+v", result)
	}

	changed := filepath.Join(contentDir, "index.html")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(changed, future, future); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(contentDir, "plain")); err != nil {
		t.Fatal(err)
	}

	result, err = NewSyncBookTask(book, store, repo).Sync(ctx)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.Updated != 1 || result.Unchanged != 1 || result.Deleted != 1 {
		t.Errorf("Unexpected sync result after changes: %+v", result)
	}
	if exists, _ := repo.PageExists(ctx, "docs", "/plain"); exists {
		t.Error("Expected removed page to be dropped from the index")
	}
}

func TestSyncBookTaskKeepsPagesThatFailToCapture(t *testing.T) {
	books, store, contentDir := setupBook(t, map[string]string{
		"index.html": "<html><head><title>Index</title></head><body></body></html>",
	})
	repo := NewMockPageRepository()
	book := books.GetBookByName("docs")
	ctx := context.Background()

	if _, err := NewSyncBookTask(book, store, repo).Sync(ctx); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	file := filepath.Join(contentDir, "index.html")
	writeFile(t, file, `<html><body><news id="bad" title="No date"></news></body></html>`)
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(file, future, future); err != nil {
		t.Fatal(err)
	}

	result, err := NewSyncBookTask(book, store, repo).Sync(ctx)
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	if result.Failed != 1 || result.Deleted != 0 {
		t.Errorf("Unexpected result: %+v", result)
	}
	if exists, _ := repo.PageExists(ctx, "docs", "/index.html"); !exists {
		t.Error("Expected previous index entry to be kept")
	}
}

func TestSyncBookTaskCanceled(t *testing.T) {
	books, store, _ := setupBook(t, map[string]string{
		"index.html": "<html><head><title>Index</title></head><body></body></html>",
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := NewSyncBookTask(books.GetBookByName("docs"), store, NewMockPageRepository())
	if err := task.Execute(ctx); err == nil {
		t.Error("Expected canceled sync to fail")
	}
}

func TestSyncBookTaskIdentity(t *testing.T) {
	books, store, _ := setupBook(t, nil)

	task := NewSyncBookTask(books.GetBookByName("docs"), store, NewMockPageRepository())
	if task.GetBookName() != "docs" {
		t.Errorf("Expected book name 'docs', got '%s'", task.GetBookName())
	}
	if task.GetType() != TaskTypeSyncBook {
		t.Errorf("Expected type %s, got %s", TaskTypeSyncBook, task.GetType())
	}
}

func TestTaskRetryDelay(t *testing.T) {
	task := NewTask(TaskTypeSyncBook, "docs")

	expected := []time.Duration{0, time.Second, 2 * time.Second, 4 * time.Second}
	for i, delay := range expected {
		if got := task.RetryDelay(); got != delay {
			t.Errorf("Retry %d: expected delay %v, got %v", i, delay, got)
		}
		task.IncrementRetryCount()
	}

	task.RetryCount = 10
	if got := task.RetryDelay(); got != 30*time.Second {
		t.Errorf("Expected delay capped at 30s, got %v", got)
	}

	task.RetryCount = DefaultMaxRetries
	if task.CanRetry() {
		t.Error("Expected no retries left")
	}
}
