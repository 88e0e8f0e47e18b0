package tasks

import (
	"context"
	"time"

	"github.com/lysyi3m/news-rss/app/content"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the admin API to keep the capture index current.
// Example usage:
//
//	scheduler := NewScheduler(books, fsStore, pageRepo, interval, workerCount)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewSyncBookTask(book, fsStore, pageRepo))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	SyncBook(bookName string) error
}

type BookSource interface {
	GetBooks() []*content.Book
	GetBookByName(name string) *content.Book
}

// PageCapturer body-captures a page from its source file.
type PageCapturer interface {
	CaptureFile(ctx context.Context, ref content.PageRef) (*content.Page, time.Time, error)
}
