package api

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/lysyi3m/news-rss/app/content"
	"github.com/lysyi3m/news-rss/app/database"
	"github.com/lysyi3m/news-rss/app/rss"
	"github.com/lysyi3m/news-rss/app/tasks"
)

type FeedServiceInterface interface {
	NewRequest(r *http.Request) *rss.Request
	LastModified(ctx context.Context, req *rss.Request) (time.Time, bool)
	Prepare(ctx context.Context, req *rss.Request) (*rss.Feed, error)
	Write(ctx context.Context, w io.Writer, feed *rss.Feed) error
}

var _ FeedServiceInterface = (*rss.Service)(nil)

type BookListerInterface interface {
	GetBooks() []*content.Book
	GetBookByName(name string) *content.Book
	GetBookCount() int
}

var _ BookListerInterface = (*content.BookCache)(nil)

type Handler struct {
	feeds     FeedServiceInterface
	books     BookListerInterface
	pageRepo  database.PageRepository      // nil when pages are served from disk
	scheduler tasks.TaskSchedulerInterface // nil when pages are served from disk
	version   string
}
