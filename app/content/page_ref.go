package content

import (
	"fmt"
	"path"
	"strings"
)

// ResolveRef resolves a page reference written on the page at from. An empty
// book means from's book; a relative page path is taken from from's directory.
func ResolveRef(books BookRegistry, from PageRef, bookName, pagePath string) (PageRef, error) {
	book := from.Book
	if bookName != "" && bookName != from.BookName() {
		book = books.GetBookByName(bookName)
		if book == nil {
			return PageRef{}, fmt.Errorf("book not found: %s", bookName)
		}
		if pagePath == "" {
			return PageRef{}, fmt.Errorf("page path required for reference into book %s", bookName)
		}
		if !strings.HasPrefix(pagePath, "/") {
			pagePath = "/" + pagePath
		}
	}

	switch {
	case pagePath == "":
		pagePath = from.Path
	case !strings.HasPrefix(pagePath, "/"):
		pagePath = path.Join(path.Dir(from.Path), pagePath)
	}

	cleaned := path.Clean(pagePath)
	if !strings.HasPrefix(cleaned, "/") {
		return PageRef{}, fmt.Errorf("invalid page path: %s", pagePath)
	}

	return PageRef{Book: book, Path: cleaned}, nil
}
