package api

import (
	"bufio"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/news-rss/app/database"
	"github.com/lysyi3m/news-rss/app/rss"
	"github.com/lysyi3m/news-rss/app/tasks"
)

func NewHandler(feeds FeedServiceInterface, books BookListerInterface,
	pageRepo database.PageRepository, scheduler tasks.TaskSchedulerInterface, version string) *Handler {
	return &Handler{
		feeds:     feeds,
		books:     books,
		pageRepo:  pageRepo,
		scheduler: scheduler,
		version:   version,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	if !strings.HasSuffix(c.Request.URL.Path, rss.FeedSuffix) {
		c.Status(http.StatusNotFound)
		return
	}

	method := c.Request.Method
	if method != http.MethodGet && method != http.MethodHead {
		c.Header("Allow", "GET, HEAD")
		c.Status(http.StatusMethodNotAllowed)
		return
	}

	ctx := c.Request.Context()
	req := h.feeds.NewRequest(c.Request)

	if lastModified, ok := h.feeds.LastModified(ctx, req); ok {
		lastModified = lastModified.UTC().Truncate(time.Second)
		c.Header("Last-Modified", lastModified.Format(http.TimeFormat))

		if since, err := http.ParseTime(c.GetHeader("If-Modified-Since")); err == nil && !lastModified.After(since) {
			c.Status(http.StatusNotModified)
			return
		}
	}

	feed, err := h.feeds.Prepare(ctx, req)
	if err != nil {
		if errors.Is(err, rss.ErrNotFound) {
			slog.Debug("Feed not found", "path", req.Path, "error", err)
			c.Status(http.StatusNotFound)
			return
		}
		slog.Error("Feed preparation failed", "path", req.Path, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", rss.ContentType+"; charset=UTF-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(feed.Items)))
	c.Status(http.StatusOK)

	if method == http.MethodHead {
		return
	}

	w := bufio.NewWriter(c.Writer)
	err = h.feeds.Write(ctx, w, feed)
	if err == nil {
		err = w.Flush()
	}
	if err == nil {
		return
	}

	if !c.Writer.Written() {
		slog.Error("Feed generation failed", "path", req.Path, "error", err)
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Header("X-Feed-Items", "")
		c.Status(http.StatusInternalServerError)
		return
	}

	slog.Error("Feed generation failed after response started, aborting", "path", req.Path, "error", err)
	c.Abort()
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
		"books":     h.books.GetBookCount(),
	}

	if h.pageRepo != nil {
		if pageCount, err := h.pageRepo.GetPageCount(c.Request.Context()); err == nil {
			health["indexed_pages"] = pageCount
		} else {
			slog.Warn("Failed to count indexed pages", "error", err)
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListBooks(c *gin.Context) {
	books := h.books.GetBooks()

	result := make([]map[string]interface{}, 0, len(books))

	for _, book := range books {
		bookInfo := map[string]interface{}{
			"name":        book.Name,
			"title":       book.Title,
			"path_prefix": book.PathPrefix,
			"content_dir": book.ContentDir,
			"copyright":   book.Copyright.String(),
			"params":      len(book.Params),
		}

		if channel, err := rss.ParseChannelConfig(book); err == nil {
			bookInfo["max_items"] = channel.MaxItems
		} else {
			bookInfo["config_error"] = err.Error()
		}

		result = append(result, bookInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"books": result,
		"total": len(result),
	})
}

func (h *Handler) APISyncBook(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing book name parameter"})
		return
	}

	if h.books.GetBookByName(name) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	if h.scheduler == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Capture index disabled",
			"message": "Pages are read from disk on every request, there is nothing to sync",
		})
		return
	}

	if err := h.scheduler.SyncBook(name); err != nil {
		slog.Error("Error enqueueing sync task", "book", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Book sync enqueued",
		"book":    name,
	})
}
