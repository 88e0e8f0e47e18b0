package content

import (
	"strings"
	"time"
)

const (
	DefaultViewName = "content"
	NewsViewName    = "news"
)

// Book is a configured content subtree with its own path prefix and parameters.
type Book struct {
	Name       string            // Derived from filename (without .yml extension)
	Title      string            `yaml:"title"`
	PathPrefix string            `yaml:"path_prefix"`
	ContentDir string            `yaml:"content_dir"`
	Copyright  Copyright         `yaml:"copyright"`
	Params     map[string]string `yaml:"params"`
}

// Param returns a book parameter, empty values are treated as absent.
func (b *Book) Param(name string) (string, bool) {
	value, ok := b.Params[name]
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// PageRef identifies a page by book and in-book path.
type PageRef struct {
	Book *Book
	Path string // Always starts with "/"
}

func (r PageRef) BookName() string {
	if r.Book == nil {
		return ""
	}
	return r.Book.Name
}

func (r PageRef) ServletPath() string {
	if r.Book == nil {
		return r.Path
	}
	return r.Book.PathPrefix + r.Path
}

func (r PageRef) Equal(other PageRef) bool {
	return r.BookName() == other.BookName() && r.Path == other.Path
}

func (r PageRef) String() string {
	return r.BookName() + ":" + r.Path
}

type Copyright struct {
	RightsHolder    string `yaml:"rights_holder"`
	DateCopyrighted string `yaml:"date_copyrighted"`
}

func (c Copyright) IsEmpty() bool {
	return c.RightsHolder == "" && c.DateCopyrighted == ""
}

func (c Copyright) String() string {
	if c.IsEmpty() {
		return ""
	}
	parts := []string{"Copyright ©"}
	if c.DateCopyrighted != "" {
		parts = append(parts, c.DateCopyrighted)
	}
	if c.RightsHolder != "" {
		parts = append(parts, c.RightsHolder)
	}
	return strings.Join(parts, " ")
}

// Page is a captured content page. Bodies are only present after a body capture.
type Page struct {
	Ref          PageRef
	Title        string
	Description  string
	Copyright    Copyright
	Children     []PageRef
	Elements     []Element
	ElementsByID map[string]Element
}

// News returns the page's own news elements in document order.
func (p *Page) News() []*News {
	var news []*News
	for _, element := range p.Elements {
		if n, ok := element.(*News); ok {
			news = append(news, n)
		}
	}
	return news
}

// AddElement appends an element and indexes it by id.
func (p *Page) AddElement(element Element) {
	if p.ElementsByID == nil {
		p.ElementsByID = make(map[string]Element)
	}
	p.Elements = append(p.Elements, element)
	p.ElementsByID[element.ElementID()] = element
}

type Element interface {
	ElementID() string
	Kind() string
	Body() string
}

// Section is any identified element that is not news.
type Section struct {
	ID      string
	Tag     string
	Content string
}

func (s *Section) ElementID() string { return s.ID }
func (s *Section) Kind() string      { return s.Tag }
func (s *Section) Body() string      { return s.Content }

const NewsKind = "news"

type News struct {
	ID          string
	Title       string
	Description string
	Content     string // Rendered body, empty after a meta capture
	PubDate     time.Time
	Book        string // Target book name, empty for the source book
	TargetPage  string // Target page path, empty for the source page
	View        string
	Element     string // Target element anchor
	Page        PageRef
}

func (n *News) ElementID() string { return n.ID }
func (n *News) Kind() string      { return NewsKind }
func (n *News) Body() string      { return n.Content }

// ViewName returns the item's view, defaulting to the content view.
func (n *News) ViewName() string {
	if n.View == "" {
		return DefaultViewName
	}
	return n.View
}
