package rss

import "errors"

var (
	// ErrNotFound means the request does not address a feed.
	ErrNotFound = errors.New("feed not found")

	// ErrConfig means the book's channel parameters are invalid.
	ErrConfig = errors.New("invalid channel configuration")

	// ErrCaptureMismatch means a body capture disagrees with the meta capture it upgrades.
	ErrCaptureMismatch = errors.New("capture mismatch")
)
