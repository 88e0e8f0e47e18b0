package rss

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/lysyi3m/news-rss/app/content"
)

// feedWriter keeps the first write error and turns every later write into a no-op.
type feedWriter struct {
	w   io.Writer
	err error
}

func (fw *feedWriter) raw(s string) {
	if fw.err != nil {
		return
	}
	_, fw.err = io.WriteString(fw.w, s)
}

func (fw *feedWriter) text(s string) {
	if fw.err != nil {
		return
	}
	fw.err = xml.EscapeText(fw.w, []byte(s))
}

// attr writes name="value" with a leading space.
func (fw *feedWriter) attr(name, value string) {
	fw.raw(" " + name + `="`)
	fw.text(value)
	fw.raw(`"`)
}

func (fw *feedWriter) indent(depth int) {
	fw.raw(strings.Repeat("  ", depth))
}

func (fw *feedWriter) element(depth int, name, value string) {
	fw.indent(depth)
	fw.raw("<" + name + ">")
	fw.text(value)
	fw.raw("</" + name + ">\n")
}

func (fw *feedWriter) optionalElement(depth int, name, value string) {
	if value != "" {
		fw.element(depth, name, value)
	}
}

// Write streams the RSS document for feed. Items are written one at a time;
// body captures happen just before the item that needs them.
func (s *Service) Write(ctx context.Context, w io.Writer, feed *Feed) error {
	fw := &feedWriter{w: w}
	req := feed.Request
	page := feed.Page

	channelTitle := s.view.Title(ctx, page)
	channelLink := encodePath(page.Ref.ServletPath())
	if s.view.Name() != s.options.DefaultView {
		channelLink += "?view=" + encodeQueryValue(s.view.Name())
	}
	channelLink = req.AbsoluteURL(channelLink)

	fw.raw(xml.Header)
	fw.raw(`<rss version="2.0">` + "\n")
	fw.indent(1)
	fw.raw("<channel>\n")

	fw.element(2, "title", channelTitle)
	fw.element(2, "link", channelLink)
	fw.element(2, "description", s.view.Description(page))
	fw.optionalElement(2, "copyright", s.view.Copyright(ctx, page))
	fw.optionalElement(2, "managingEditor", feed.Channel.ManagingEditor)
	fw.optionalElement(2, "webMaster", feed.Channel.WebMaster)
	if len(feed.Items) > 0 {
		fw.element(2, "lastBuildDate", s.formatDate(feed.Items[0].PubDate))
	}
	fw.element(2, "generator", s.options.Generator)
	fw.element(2, "docs", Docs)
	fw.optionalElement(2, "ttl", feed.Channel.TTL)
	if image := feed.Channel.Image; image != nil {
		fw.indent(2)
		fw.raw("<image>\n")
		fw.element(3, "url", s.imageURL(req, page.Ref.Book, image.URL))
		fw.element(3, "title", channelTitle)
		fw.element(3, "link", channelLink)
		fw.optionalElement(3, "width", image.Width)
		fw.optionalElement(3, "height", image.Height)
		fw.optionalElement(3, "description", image.Description)
		fw.indent(2)
		fw.raw("</image>\n")
	}
	fw.optionalElement(2, "rating", feed.Channel.Rating)

	if fw.err != nil {
		return fmt.Errorf("failed to write channel: %w", fw.err)
	}

	for _, item := range feed.Items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.writeItem(ctx, fw, req, page, item); err != nil {
			return err
		}
		if fw.err != nil {
			return fmt.Errorf("failed to write item %s: %w", item.ID, fw.err)
		}
	}

	fw.indent(1)
	fw.raw("</channel>\n")
	fw.raw("</rss>\n")

	if fw.err != nil {
		return fmt.Errorf("failed to finish feed: %w", fw.err)
	}
	return nil
}

func (s *Service) writeItem(ctx context.Context, fw *feedWriter, req *Request, page *content.Page, item *content.News) error {
	target, err := content.ResolveRef(s.books, item.Page, item.Book, item.TargetPage)
	if err != nil {
		return fmt.Errorf("failed to resolve target of news %s on %s: %w", item.ID, item.Page.String(), err)
	}

	link := encodePath(target.ServletPath())
	if view := item.ViewName(); view != s.options.DefaultView {
		link += "?view=" + encodeQueryValue(view)
	}
	if item.Element != "" {
		link += "#" + encodeFragment(item.Element)
	}

	var body string
	if item.Description == "" {
		body, err = s.ResolveBody(ctx, req, item)
		if err != nil {
			return err
		}
	}

	fw.indent(2)
	fw.raw("<item>\n")
	fw.element(3, "title", item.Title)
	fw.element(3, "link", req.AbsoluteURL(link))
	if item.Description != "" || body != "" {
		fw.indent(3)
		fw.raw("<description>")
		if item.Description != "" {
			fw.text("<p><em>")
			fw.text(item.Description)
			fw.text("</em></p>")
		}
		if body != "" {
			fw.text("<div>")
			fw.text(body)
			fw.text("</div>")
		}
		fw.raw("</description>\n")
	}
	fw.element(3, "guid", req.AbsoluteURL(encodePath(item.Page.ServletPath())+"#"+encodeFragment(item.ID)))
	fw.element(3, "pubDate", s.formatDate(item.PubDate))

	if !item.Page.Equal(page.Ref) {
		source, err := req.capture.CaptureMeta(ctx, item.Page)
		if err != nil {
			return fmt.Errorf("failed to capture source page %s: %w", item.Page.String(), err)
		}
		fw.indent(3)
		fw.raw("<source")
		fw.attr("url", req.AbsoluteURL(encodePath(FeedPath(item.Page))))
		fw.raw(">")
		fw.text(s.view.Title(ctx, source))
		fw.raw("</source>\n")
	}

	fw.indent(2)
	fw.raw("</item>\n")

	slog.Debug("Item written", "id", item.ID, "source", item.Page.String(), "body", body != "")

	return nil
}

// imageURL resolves a configured image url. Absolute urls are kept, anything
// else is taken relative to the book's path prefix.
func (s *Service) imageURL(req *Request, book *content.Book, configured string) string {
	if isAbsoluteURL(configured) {
		return asciiSafe(configured)
	}

	imagePath, suffix := configured, ""
	if u, err := url.Parse(configured); err == nil {
		imagePath = u.Path
		if u.RawQuery != "" {
			suffix += "?" + u.RawQuery
		}
		if u.Fragment != "" {
			suffix += "#" + encodeFragment(u.Fragment)
		}
	}
	if !strings.HasPrefix(imagePath, "/") {
		imagePath = "/" + imagePath
	}
	return req.AbsoluteURL(encodePath(book.PathPrefix+imagePath) + suffix)
}
