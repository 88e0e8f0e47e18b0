package tasks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lysyi3m/news-rss/app/content"
	"github.com/lysyi3m/news-rss/app/database"
)

// SyncBookTask brings the capture index of one book in line with its content directory.
type SyncBookTask struct {
	Task
	Book     *content.Book
	capturer PageCapturer
	pageRepo database.PageRepository
}

type SyncResult struct {
	Updated   int
	Unchanged int
	Deleted   int
	Failed    int
}

func NewSyncBookTask(book *content.Book, capturer PageCapturer, pageRepo database.PageRepository) *SyncBookTask {
	return &SyncBookTask{
		Task:     NewTask(TaskTypeSyncBook, book.Name),
		Book:     book,
		capturer: capturer,
		pageRepo: pageRepo,
	}
}

func (t *SyncBookTask) Execute(ctx context.Context) error {
	result, err := t.Sync(ctx)
	if err != nil {
		slog.Error("Task failed", "type", "SyncBook", "book", t.BookName, "error", err)
		return err
	}

	slog.Info("Task completed",
		"type", "SyncBook",
		"book", t.BookName,
		"updated", result.Updated,
		"unchanged", result.Unchanged,
		"deleted", result.Deleted,
		"failed", result.Failed,
		"duration", t.GetDuration())

	return nil
}

// Sync re-captures pages whose source changed and drops pages whose source vanished.
// Pages that fail to capture keep their previous index entry.
func (t *SyncBookTask) Sync(ctx context.Context) (SyncResult, error) {
	var result SyncResult

	modTimes, err := t.pageRepo.GetPageModTimes(ctx, t.Book.Name)
	if err != nil {
		return result, fmt.Errorf("failed to load indexed pages: %w", err)
	}

	seen := make(map[string]bool)

	err = filepath.WalkDir(t.Book.ContentDir, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if file != t.Book.ContentDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isIndexable(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(t.Book.ContentDir, file)
		if err != nil {
			return err
		}
		pagePath := "/" + filepath.ToSlash(rel)
		seen[pagePath] = true

		info, err := d.Info()
		if err != nil {
			return err
		}
		if known, ok := modTimes[pagePath]; ok && known.Equal(info.ModTime()) {
			result.Unchanged++
			return nil
		}

		ref := content.PageRef{Book: t.Book, Path: pagePath}
		page, modTime, err := t.capturer.CaptureFile(ctx, ref)
		if err != nil {
			if errors.Is(err, content.ErrPageNotFound) {
				delete(seen, pagePath)
				return nil
			}
			slog.Warn("Failed to capture page, keeping previous index entry", "book", t.Book.Name, "page", pagePath, "error", err)
			result.Failed++
			return nil
		}

		if err := t.pageRepo.UpsertPage(ctx, page, modTime); err != nil {
			return err
		}
		result.Updated++

		slog.Debug("Page indexed", "book", t.Book.Name, "page", pagePath, "news", len(page.News()))
		return nil
	})
	if err != nil && !(errors.Is(err, fs.ErrNotExist) && isMissingRoot(t.Book.ContentDir)) {
		return result, fmt.Errorf("failed to walk %s: %w", t.Book.ContentDir, err)
	}

	for pagePath := range modTimes {
		if seen[pagePath] {
			continue
		}
		if err := t.pageRepo.DeletePage(ctx, t.Book.Name, pagePath); err != nil {
			return result, err
		}
		result.Deleted++
	}

	return result, nil
}

// isIndexable reports whether a file can be the source of a page: a known
// source extension, or no extension at all.
func isIndexable(name string) bool {
	if content.IsProtected(name) || strings.HasPrefix(name, ".") {
		return false
	}
	return content.IsSourceFile(name) || filepath.Ext(name) == ""
}

func isMissingRoot(dir string) bool {
	_, err := os.Stat(dir)
	return errors.Is(err, fs.ErrNotExist)
}
