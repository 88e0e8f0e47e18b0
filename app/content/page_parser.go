package content

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"
)

// PageParser turns an HTML page source into a Page.
//
// Pages declare their children with <link rel="child" href="..."> in document
// order and embed news as <news id="..." title="..." pubdate="...">body</news>.
// Any other body element carrying an id is indexed as a Section.
type PageParser struct {
	books BookRegistry
}

func NewPageParser(books BookRegistry) *PageParser {
	return &PageParser{books: books}
}

func (p *PageParser) Run(data []byte, ref PageRef, withBodies bool) (*Page, error) {
	reader, err := charset.NewReader(bytes.NewReader(data), "text/html")
	if err != nil {
		return nil, fmt.Errorf("failed to detect charset: %w", err)
	}

	source, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode page source: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(expandSelfClosing(source)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := &Page{
		Ref:          ref,
		Title:        normalizeText(doc.Find("title").First().Text()),
		Description:  normalizeText(p.metaContent(doc, "description")),
		ElementsByID: make(map[string]Element),
		Copyright: Copyright{
			RightsHolder:    normalizeText(p.metaContent(doc, "dcterms.rightsHolder")),
			DateCopyrighted: normalizeText(p.metaContent(doc, "dcterms.dateCopyrighted")),
		},
	}

	if page.Description == "" {
		page.Description = p.excerpt(data, ref)
	}

	doc.Find(`link[rel="child"]`).Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		child, err := ResolveRef(p.books, ref, s.AttrOr("data-book", ""), href)
		if err != nil {
			slog.Warn("Skipping child link", "page", ref.String(), "href", href, "error", err)
			return
		}
		page.Children = append(page.Children, child)
	})

	var parseErr error
	newsCount := 0
	doc.Find("body *").EachWithBreak(func(i int, s *goquery.Selection) bool {
		tag := goquery.NodeName(s)
		id, hasID := s.Attr("id")
		if tag != NewsKind && !hasID {
			return true
		}

		var body string
		if withBodies {
			html, err := s.Html()
			if err != nil {
				parseErr = fmt.Errorf("failed to render element body: %w", err)
				return false
			}
			body = strings.TrimSpace(html)
		}

		var element Element
		if tag == NewsKind {
			newsCount++
			if !hasID || id == "" {
				id = "news-" + strconv.Itoa(newsCount)
			}
			news, err := p.parseNews(s, id, ref)
			if err != nil {
				parseErr = err
				return false
			}
			news.Content = body
			element = news
		} else {
			element = &Section{ID: id, Tag: tag, Content: body}
		}

		if _, exists := page.ElementsByID[id]; exists {
			parseErr = fmt.Errorf("duplicate element id: %s", id)
			return false
		}
		page.AddElement(element)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return page, nil
}

func (p *PageParser) parseNews(s *goquery.Selection, id string, ref PageRef) (*News, error) {
	pubDateAttr := strings.TrimSpace(s.AttrOr("pubdate", ""))
	if pubDateAttr == "" {
		return nil, fmt.Errorf("news %s: pubdate is required", id)
	}
	pubDate, err := time.Parse(time.RFC3339, pubDateAttr)
	if err != nil {
		return nil, fmt.Errorf("news %s: invalid pubdate: %w", id, err)
	}

	return &News{
		ID:          id,
		Title:       normalizeText(s.AttrOr("title", "")),
		Description: normalizeText(s.AttrOr("description", "")),
		PubDate:     pubDate,
		Book:        s.AttrOr("book", ""),
		TargetPage:  s.AttrOr("page", ""),
		View:        s.AttrOr("view", ""),
		Element:     s.AttrOr("element", ""),
		Page:        ref,
	}, nil
}

func (p *PageParser) metaContent(doc *goquery.Document, name string) string {
	return doc.Find(`meta[name="`+name+`"]`).First().AttrOr("content", "")
}

// excerpt falls back to a readability summary for pages without a description.
func (p *PageParser) excerpt(data []byte, ref PageRef) string {
	pageURL := &url.URL{Scheme: "http", Host: "localhost", Path: ref.ServletPath()}
	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		slog.Debug("No excerpt extracted", "page", ref.String(), "error", err)
		return ""
	}
	return normalizeText(article.Excerpt)
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true, "img": true,
	"input": true, "link": true, "meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// expandSelfClosing rewrites XHTML-style <tag .../> into <tag ...></tag> for
// non-void elements, since the HTML parser ignores the trailing slash.
func expandSelfClosing(source []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(source))

	z := html.NewTokenizer(bytes.NewReader(source))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}

		raw := z.Raw()
		if tt != html.SelfClosingTagToken {
			out.Write(raw)
			continue
		}

		name, _ := z.TagName()
		tag := string(name)
		if voidElements[tag] {
			out.Write(raw)
			continue
		}

		start := bytes.TrimRight(bytes.TrimSuffix(raw, []byte("/>")), " \t\r\n")
		out.Write(start)
		out.WriteString("></" + tag + ">")
	}
	return out.Bytes()
}

func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
