package database

import (
	"context"
	"time"

	"github.com/lysyi3m/news-rss/app/content"
)

type PageRepository interface {
	GetPage(ctx context.Context, book, path string, withBodies bool) (*PageRecord, []ChildRecord, []ElementRecord, error)
	GetPageModTimes(ctx context.Context, book string) (map[string]time.Time, error)
	GetPageCount(ctx context.Context) (int, error)
	PageExists(ctx context.Context, book, path string) (bool, error)

	UpsertPage(ctx context.Context, page *content.Page, modTime time.Time) error
	DeletePage(ctx context.Context, book, path string) error
}
