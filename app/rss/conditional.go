package rss

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// LastModified returns the publish date of the newest item in the request's
// feed. Any failure is logged and reported as unknown so that freshness
// checks never break serving; the caller then regenerates the feed.
func (s *Service) LastModified(ctx context.Context, req *Request) (lastModified time.Time, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Freshness check panicked", "path", req.Path, "panic", r)
			lastModified, ok = time.Time{}, false
		}
	}()

	feed, err := s.Prepare(ctx, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			slog.Debug("Freshness check for unknown feed", "path", req.Path)
		} else {
			slog.Warn("Freshness check failed", "path", req.Path, "error", err)
		}
		return time.Time{}, false
	}

	if len(feed.Items) == 0 {
		return time.Time{}, false
	}
	return feed.Items[0].PubDate, true
}
