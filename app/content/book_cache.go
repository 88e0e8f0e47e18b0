package content

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type BookCache struct {
	booksDir string
	cache    map[string]*Book
	mu       sync.RWMutex
}

func NewBookCache(booksDir string) *BookCache {
	return &BookCache{
		booksDir: booksDir,
		cache:    make(map[string]*Book),
	}
}

func (bc *BookCache) Run() error {
	if _, err := os.Stat(bc.booksDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(bc.booksDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		fileName := filepath.Base(file)
		bookName := strings.TrimSuffix(fileName, ".yml")

		book, err := bc.LoadBook(bookName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Book loaded", "book", bookName, "path_prefix", book.PathPrefix, "content_dir", book.ContentDir)
	}

	return nil
}

func (bc *BookCache) LoadBook(bookName string) (*Book, error) {
	bookFile := bc.getBookFilePath(bookName)
	book, err := bc.parseBook(bookFile)
	if err != nil {
		return nil, err
	}

	book.Name = bookName

	if err := bc.validateBook(book); err != nil {
		return nil, fmt.Errorf("invalid book %s: %w", bookFile, err)
	}

	bc.mu.Lock()
	defer bc.mu.Unlock()

	for name, other := range bc.cache {
		if name != book.Name && other.PathPrefix == book.PathPrefix {
			return nil, fmt.Errorf("invalid book %s: path prefix '%s' already used by book '%s'", bookFile, book.PathPrefix, name)
		}
	}
	bc.cache[book.Name] = book

	return book, nil
}

// GetBook finds the book with the longest path prefix owning servletPath.
func (bc *BookCache) GetBook(servletPath string) *Book {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	var found *Book
	for _, book := range bc.cache {
		if !ownsPath(book.PathPrefix, servletPath) {
			continue
		}
		if found == nil || len(book.PathPrefix) > len(found.PathPrefix) {
			found = book
		}
	}
	return found
}

func (bc *BookCache) GetBookByName(name string) *Book {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.cache[name]
}

// GetBooks returns the books ordered by name.
func (bc *BookCache) GetBooks() []*Book {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	books := make([]*Book, 0, len(bc.cache))
	for _, book := range bc.cache {
		books = append(books, book)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Name < books[j].Name })
	return books
}

func (bc *BookCache) GetBookCount() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return len(bc.cache)
}

func (bc *BookCache) parseBook(bookFile string) (*Book, error) {
	data, err := os.ReadFile(bookFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var book Book
	if err := yaml.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if book.ContentDir != "" && !filepath.IsAbs(book.ContentDir) {
		book.ContentDir = filepath.Join(filepath.Dir(bookFile), book.ContentDir)
	}
	if book.Params == nil {
		book.Params = make(map[string]string)
	}

	return &book, nil
}

func (bc *BookCache) validateBook(book *Book) error {
	if book == nil {
		return fmt.Errorf("book is nil")
	}

	if book.ContentDir == "" {
		return fmt.Errorf("content dir is required")
	}

	if book.PathPrefix != "" {
		if !strings.HasPrefix(book.PathPrefix, "/") {
			return fmt.Errorf("path prefix must start with '/': %s", book.PathPrefix)
		}
		if strings.HasSuffix(book.PathPrefix, "/") {
			return fmt.Errorf("path prefix must not end with '/': %s", book.PathPrefix)
		}
	}

	return nil
}

func (bc *BookCache) getBookFilePath(bookName string) string {
	return filepath.Join(bc.booksDir, bookName+".yml")
}

func ownsPath(prefix, servletPath string) bool {
	if prefix == "" {
		return strings.HasPrefix(servletPath, "/")
	}
	return strings.HasPrefix(servletPath, prefix+"/")
}
